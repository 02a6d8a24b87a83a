package services

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/metrics"
	"github.com/codyseavey/cardvault/internal/models"
)

// sportDirs maps the recognized subdirectory names under a card-list root to
// their sport label.
var sportDirs = map[string]models.Sport{
	"baseball":   models.SportBaseball,
	"basketball": models.SportBasketball,
	"football":   models.SportFootball,
	"hockey":     models.SportHockey,
}

var pathYearRe = regexp.MustCompile(`(19|20)\d{2}`)

// releaseFile mirrors the third-party card-list JSON layout. Everything but
// name/number is pass-through payload.
type releaseFile struct {
	Name string       `json:"name"`
	Sets []releaseSet `json:"sets"`
}

type releaseSet struct {
	Name       string        `json:"name"`
	NumberedTo *int          `json:"numberedTo"`
	Cards      []releaseCard `json:"cards"`
}

type releaseCard struct {
	UniqueID   string          `json:"uniqueId"`
	Number     string          `json:"number"`
	Name       string          `json:"name"`
	Attributes json.RawMessage `json:"attributes"`
	Variations json.RawMessage `json:"variations"`
	Parallels  json.RawMessage `json:"parallels"`
}

type ImportOptions struct {
	// Exactly one of Root, Release, or Glob selects the sources. Release
	// and Glob require Sport.
	Root    string
	Release string
	Glob    string

	// Sport limits a Root scan to one sport subdirectory; "" or "All"
	// scans every recognized subdirectory.
	Sport string

	// IncludeCategories keeps paths containing a "categories" segment,
	// which a Root scan skips by default.
	IncludeCategories bool

	// CommitEvery flushes the run transaction after this many upserts.
	// Zero means the default of 500.
	CommitEvery int

	// DryRun parses and counts but persists nothing.
	DryRun  bool
	Verbose bool
}

const defaultCommitEvery = 500

type ImportSummary struct {
	Files   int `json:"files"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

type releaseSource struct {
	path  string
	sport models.Sport
}

// CardListImporter walks third-party card-list JSON files and feeds their
// records through the dedup upsert engine, committing in batches.
type CardListImporter struct {
	db     *gorm.DB
	engine *UpsertEngine
}

func NewCardListImporter(db *gorm.DB, tenant string) (*CardListImporter, error) {
	engine, err := NewUpsertEngine(tenant)
	if err != nil {
		return nil, err
	}
	return &CardListImporter{db: db, engine: engine}, nil
}

// Run executes one import. Structural problems (bad options, unreadable
// explicitly-named file) abort before any writes; a corrupt file met during
// a recursive scan is logged, counted, and skipped.
func (imp *CardListImporter) Run(opts ImportOptions) (ImportSummary, error) {
	var sum ImportSummary

	sources, explicit, err := imp.resolveSources(opts)
	if err != nil {
		return sum, err
	}
	sum.Files = len(sources)
	if opts.Verbose {
		log.Printf("Found %d release file(s).", len(sources))
	}

	commitEvery := opts.CommitEvery
	if commitEvery <= 0 {
		commitEvery = defaultCommitEvery
	}

	// The run cache is scoped to this run only.
	imp.engine.Reset()
	defer imp.engine.Reset()

	tx := imp.db.Begin()
	if tx.Error != nil {
		return sum, tx.Error
	}

	// Keys already upserted this run. A repeat (same card in two files, or
	// a parallel duplicate) is skipped instead of re-updating the row.
	runSeen := make(map[string]struct{})
	batch := 0

	for i, src := range sources {
		if opts.Verbose && (i+1)%25 == 0 {
			log.Printf("[%d/%d] %s :: %s", i+1, len(sources), src.sport, src.path)
		}

		records, err := parseReleaseFile(src.path, src.sport)
		if err != nil {
			if explicit {
				tx.Rollback()
				return sum, fmt.Errorf("read release %s: %w", src.path, err)
			}
			log.Printf("Warning: skipping %s: %v", src.path, err)
			sum.Errors++
			continue
		}

		for _, rec := range records {
			key := rec.Key()
			if _, dup := runSeen[key]; dup {
				sum.Skipped++
				continue
			}
			runSeen[key] = struct{}{}

			status, err := imp.engine.Upsert(tx, rec)
			if err != nil {
				// No retries: a persistence failure kills the batch;
				// re-running the import is safe by key uniqueness.
				tx.Rollback()
				return sum, fmt.Errorf("upsert %q: %w", key, err)
			}
			if status == UpsertCreated {
				sum.Created++
			} else {
				sum.Updated++
			}

			batch++
			if !opts.DryRun && batch >= commitEvery {
				if err := tx.Commit().Error; err != nil {
					return sum, err
				}
				tx = imp.db.Begin()
				if tx.Error != nil {
					return sum, tx.Error
				}
				batch = 0
			}
		}
	}

	if opts.DryRun {
		tx.Rollback()
	} else if err := tx.Commit().Error; err != nil {
		return sum, err
	}

	if !opts.DryRun {
		metrics.ImportCardsCreated.Add(float64(sum.Created))
		metrics.ImportCardsUpdated.Add(float64(sum.Updated))
		metrics.ImportRunsTotal.Inc()
	}
	return sum, nil
}

func (imp *CardListImporter) resolveSources(opts ImportOptions) ([]releaseSource, bool, error) {
	switch {
	case opts.Root != "":
		only := opts.Sport
		if strings.EqualFold(only, "All") {
			only = ""
		}
		sources, err := discoverReleaseFiles(opts.Root, only, opts.IncludeCategories)
		return sources, false, err

	case opts.Release != "":
		sport, err := requireSport(opts.Sport)
		if err != nil {
			return nil, false, err
		}
		return []releaseSource{{path: opts.Release, sport: sport}}, true, nil

	case opts.Glob != "":
		sport, err := requireSport(opts.Sport)
		if err != nil {
			return nil, false, err
		}
		paths, err := filepath.Glob(opts.Glob)
		if err != nil {
			return nil, false, fmt.Errorf("bad glob %q: %w", opts.Glob, err)
		}
		sources := make([]releaseSource, 0, len(paths))
		for _, p := range paths {
			sources = append(sources, releaseSource{path: p, sport: sport})
		}
		return sources, false, nil

	default:
		return nil, false, fmt.Errorf("provide Root, or Release+Sport, or Glob+Sport")
	}
}

func requireSport(sport string) (models.Sport, error) {
	for _, s := range sportDirs {
		if strings.EqualFold(string(s), sport) {
			return s, nil
		}
	}
	return "", fmt.Errorf("sport is required and must be one of Baseball, Basketball, Football, Hockey (got %q)", sport)
}

// discoverReleaseFiles walks the sport subdirectories under root collecting
// .json files. Paths containing a "categories" segment are skipped unless
// opted in.
func discoverReleaseFiles(root, onlySport string, includeCategories bool) ([]releaseSource, error) {
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("card-list root %s: %w", root, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("card-list root %s is not a directory", root)
	}

	var sources []releaseSource
	for dir, sport := range sportDirs {
		if onlySport != "" && !strings.EqualFold(string(sport), onlySport) {
			continue
		}
		sportDir := filepath.Join(root, dir)
		if info, err := os.Stat(sportDir); err != nil || !info.IsDir() {
			continue
		}
		err := filepath.WalkDir(sportDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			norm := strings.ToLower(filepath.ToSlash(path))
			if d.IsDir() {
				if !includeCategories && strings.Contains(norm+"/", "/categories/") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(norm, ".json") {
				sources = append(sources, releaseSource{path: path, sport: sport})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return sources, nil
}

// parseReleaseFile parses one release JSON into card records, dropping exact
// canonical-key repeats within the file (parallel and attribute duplicates
// are often embedded redundantly).
func parseReleaseFile(path string, sport models.Sport) ([]CardRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rel releaseFile
	if err := json.NewDecoder(f).Decode(&rel); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	brand := NormalizeTitle(rel.Name)
	year := yearFromPath(path)

	seen := make(map[string]struct{})
	var records []CardRecord
	for _, set := range rel.Sets {
		for _, card := range set.Cards {
			rec := CardRecord{
				Sport:          sport,
				Year:           year,
				Brand:          brand,
				SetName:        rel.Name,
				Subset:         strings.TrimSpace(set.Name),
				CardNo:         strings.TrimSpace(card.Number),
				Player:         strings.TrimSpace(card.Name),
				PrintRun:       set.NumberedTo,
				ExternalSource: "junkwaxdata",
				ExternalID:     strings.TrimSpace(card.UniqueID),
				AttributesJSON: rawJSONString(card.Attributes),
				VariationsJSON: rawJSONString(card.Variations),
				ParallelsJSON:  rawJSONString(card.Parallels),
			}

			key := rec.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			records = append(records, rec)
		}
	}
	return records, nil
}

// yearFromPath pulls the first plausible year out of a file path like
// "baseball/1990/donruss.json".
func yearFromPath(path string) *int {
	m := pathYearRe.FindString(filepath.ToSlash(path))
	if m == "" {
		return nil
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &y
}

// rawJSONString keeps a pass-through payload as its JSON text, or empty when
// the source had nothing.
func rawJSONString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null", "[]", "{}":
		return ""
	}
	return s
}
