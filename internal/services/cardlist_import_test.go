package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codyseavey/cardvault/internal/models"
)

const donrussRelease = `{
  "name": "1981 Donruss Baseball",
  "sets": [
    {
      "name": "Base Set",
      "cards": [
        {"uniqueId": "d81-1", "number": "1", "name": "Ozzie Smith"},
        {"uniqueId": "d81-2", "number": "2", "name": "Rollie Fingers", "attributes": ["RC"]},
        {"uniqueId": "d81-2b", "number": "2", "name": "Rollie Fingers", "parallels": ["Gold"]}
      ]
    },
    {
      "name": "Diamond Kings",
      "numberedTo": 100,
      "cards": [
        {"uniqueId": "d81-dk1", "number": "DK1", "name": "Pete Rose"}
      ]
    }
  ]
}`

const toppsRelease = `{
  "name": "1990 Topps Baseball",
  "sets": [
    {
      "name": "Base Set",
      "cards": [
        {"uniqueId": "t90-1", "number": "1", "name": "Nolan Ryan"}
      ]
    }
  ]
}`

func writeCardList(t *testing.T, root, sportDir, year, file, content string) string {
	t.Helper()
	dir := filepath.Join(root, sportDir, year)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write release: %v", err)
	}
	return path
}

func newTestImporter(t *testing.T) (*CardListImporter, func() int64) {
	t.Helper()
	db := newTestDB(t)
	importer, err := NewCardListImporter(db, "local")
	if err != nil {
		t.Fatalf("NewCardListImporter: %v", err)
	}
	return importer, func() int64 {
		var count int64
		db.Model(&models.Card{}).Where("deleted_at IS NULL").Count(&count)
		return count
	}
}

func TestImportRelease(t *testing.T) {
	importer, liveCount := newTestImporter(t)

	root := t.TempDir()
	path := writeCardList(t, root, "baseball", "1981", "donruss.json", donrussRelease)

	sum, err := importer.Run(ImportOptions{Release: path, Sport: "Baseball"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The duplicated card #2 collapses inside the file: 3 created, not 4.
	if sum.Created != 3 || sum.Updated != 0 {
		t.Errorf("created/updated = %d/%d, want 3/0", sum.Created, sum.Updated)
	}
	if got := liveCount(); got != 3 {
		t.Errorf("live cards = %d, want 3", got)
	}
}

func TestImportIdempotent(t *testing.T) {
	importer, liveCount := newTestImporter(t)

	root := t.TempDir()
	path := writeCardList(t, root, "baseball", "1981", "donruss.json", donrussRelease)
	opts := ImportOptions{Release: path, Sport: "Baseball"}

	first, err := importer.Run(opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := importer.Run(opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.Created != 0 {
		t.Errorf("second run created %d cards, want 0", second.Created)
	}
	if second.Updated != first.Created {
		t.Errorf("second run updated %d cards, want %d", second.Updated, first.Created)
	}
	if got := liveCount(); got != int64(first.Created) {
		t.Errorf("live cards = %d, want %d", got, first.Created)
	}
}

func TestImportSameReleaseTwiceInOneRun(t *testing.T) {
	importer, liveCount := newTestImporter(t)

	root := t.TempDir()
	writeCardList(t, root, "baseball", "1990", "topps.json", toppsRelease)
	writeCardList(t, root, "baseball", "1990-dup", "topps.json", toppsRelease)

	sum, err := importer.Run(ImportOptions{Root: root})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Files != 2 {
		t.Errorf("files = %d, want 2", sum.Files)
	}
	// The same card in two files is skipped by the run-level seen set,
	// not re-updated.
	if sum.Created != 1 || sum.Updated != 0 || sum.Skipped != 1 {
		t.Errorf("created/updated/skipped = %d/%d/%d, want 1/0/1", sum.Created, sum.Updated, sum.Skipped)
	}
	if got := liveCount(); got != 1 {
		t.Errorf("live cards = %d, want 1", got)
	}
}

func TestImportRootScanning(t *testing.T) {
	importer, _ := newTestImporter(t)

	root := t.TempDir()
	writeCardList(t, root, "baseball", "1990", "topps.json", toppsRelease)
	writeCardList(t, root, "hockey", "1990", "ud.json", `{"name":"1990-91 Upper Deck Hockey","sets":[{"name":"Base","cards":[{"uniqueId":"u1","number":"1","name":"Wayne Gretzky"}]}]}`)
	writeCardList(t, root, filepath.Join("baseball", "categories"), "1990", "insert.json", toppsRelease)
	writeCardList(t, root, "unrelated", "1990", "skip.json", toppsRelease)

	t.Run("skips categories and unknown dirs", func(t *testing.T) {
		sum, err := importer.Run(ImportOptions{Root: root, DryRun: true})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if sum.Files != 2 {
			t.Errorf("files = %d, want 2", sum.Files)
		}
	})

	t.Run("include-categories opts in", func(t *testing.T) {
		sum, err := importer.Run(ImportOptions{Root: root, IncludeCategories: true, DryRun: true})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if sum.Files != 3 {
			t.Errorf("files = %d, want 3", sum.Files)
		}
	})

	t.Run("sport filter", func(t *testing.T) {
		sum, err := importer.Run(ImportOptions{Root: root, Sport: "Hockey", DryRun: true})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if sum.Files != 1 {
			t.Errorf("files = %d, want 1", sum.Files)
		}
	})
}

func TestImportDryRunPersistsNothing(t *testing.T) {
	importer, liveCount := newTestImporter(t)

	root := t.TempDir()
	writeCardList(t, root, "baseball", "1981", "donruss.json", donrussRelease)

	sum, err := importer.Run(ImportOptions{Root: root, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Created == 0 {
		t.Error("dry run should still report parsed counts")
	}
	if got := liveCount(); got != 0 {
		t.Errorf("dry run persisted %d cards", got)
	}
}

func TestImportCorruptFileDuringScanIsSkipped(t *testing.T) {
	importer, liveCount := newTestImporter(t)

	root := t.TempDir()
	writeCardList(t, root, "baseball", "1990", "topps.json", toppsRelease)
	writeCardList(t, root, "baseball", "1991", "broken.json", "{not json")

	sum, err := importer.Run(ImportOptions{Root: root})
	if err != nil {
		t.Fatalf("a corrupt file during a scan must not abort the run: %v", err)
	}
	if sum.Errors != 1 {
		t.Errorf("errors = %d, want 1", sum.Errors)
	}
	if got := liveCount(); got != 1 {
		t.Errorf("live cards = %d, want 1", got)
	}
}

func TestImportExplicitFileErrorsAreFatal(t *testing.T) {
	importer, liveCount := newTestImporter(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := importer.Run(ImportOptions{Release: "/nonexistent/release.json", Sport: "Baseball"})
		if err == nil {
			t.Fatal("expected error for missing explicit file")
		}
	})

	t.Run("unparseable file", func(t *testing.T) {
		root := t.TempDir()
		path := writeCardList(t, root, "baseball", "1990", "broken.json", "{not json")
		_, err := importer.Run(ImportOptions{Release: path, Sport: "Baseball"})
		if err == nil {
			t.Fatal("expected error for unparseable explicit file")
		}
	})

	t.Run("missing sport", func(t *testing.T) {
		root := t.TempDir()
		path := writeCardList(t, root, "baseball", "1990", "topps.json", toppsRelease)
		if _, err := importer.Run(ImportOptions{Release: path}); err == nil {
			t.Fatal("expected error when sport is missing for --release")
		}
	})

	if got := liveCount(); got != 0 {
		t.Errorf("structural errors persisted %d cards", got)
	}
}

func TestImportNoSourcesConfigured(t *testing.T) {
	importer, _ := newTestImporter(t)
	if _, err := importer.Run(ImportOptions{}); err == nil {
		t.Fatal("expected error when no source option is set")
	}
}

func TestImportRecordShaping(t *testing.T) {
	importer, _ := newTestImporter(t)
	db := importer.db

	root := t.TempDir()
	path := writeCardList(t, root, "baseball", "1981", "donruss.json", donrussRelease)
	if _, err := importer.Run(ImportOptions{Release: path, Sport: "Baseball"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var card models.Card
	if err := db.Where("card_no = ?", "DK1").First(&card).Error; err != nil {
		t.Fatalf("load Diamond Kings card: %v", err)
	}

	if card.Brand != "Donruss" {
		t.Errorf("brand = %q, want Donruss (year and sport stripped)", card.Brand)
	}
	if card.SetName != "1981 Donruss Baseball" {
		t.Errorf("set_name = %q, want full release name", card.SetName)
	}
	if card.Subset != "Diamond Kings" {
		t.Errorf("subset = %q, want Diamond Kings", card.Subset)
	}
	if card.Year == nil || *card.Year != 1981 {
		t.Errorf("year = %v, want 1981 from the file path", card.Year)
	}
	if card.PrintRun == nil || *card.PrintRun != 100 {
		t.Errorf("print_run = %v, want 100 from numberedTo", card.PrintRun)
	}
	if card.Sport != models.SportBaseball {
		t.Errorf("sport = %q, want Baseball", card.Sport)
	}
	if card.ExternalSource != "junkwaxdata" || card.ExternalID != "d81-dk1" {
		t.Errorf("external ref = %q/%q", card.ExternalSource, card.ExternalID)
	}
}
