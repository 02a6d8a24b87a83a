// import-cardlists loads third-party card-list JSON files into the catalog,
// deduplicating by canonical key so re-runs are safe.
//
// Usage:
//
//	import-cardlists --root=<dir> [--sport=Baseball] [--include-categories]
//	import-cardlists --release=<file> --sport=<sport>
//	import-cardlists --glob='<pattern>' --sport=<sport>
//
// Common flags: --commit-every=N (default 500), --dry-run, --verbose.
package main

import (
	"fmt"
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/codyseavey/cardvault/internal/config"
	"github.com/codyseavey/cardvault/internal/database"
	"github.com/codyseavey/cardvault/internal/services"
)

func main() {
	root := flag.String("root", "", "Path to card-list root (contains baseball/, basketball/, ...)")
	includeCategories := flag.Bool("include-categories", false, "Include 'categories' paths while scanning --root")
	sport := flag.String("sport", "", "Limit to one sport (Baseball, Basketball, Football, Hockey, or All)")
	release := flag.String("release", "", "Path to a single release JSON")
	globPattern := flag.String("glob", "", "Glob matching many release JSONs")
	commitEvery := flag.Int("commit-every", 500, "Commit after this many upserts")
	dryRun := flag.Bool("dry-run", false, "Parse and count without persisting anything")
	verbose := flag.Bool("verbose", false, "Log progress while scanning")
	flag.Parse()

	if *root == "" && *release == "" && *globPattern == "" {
		fmt.Fprintln(os.Stderr, "Provide --root OR (--release + --sport) OR (--glob + --sport)")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	importer, err := services.NewCardListImporter(db, cfg.Tenant)
	if err != nil {
		log.Fatalf("Failed to initialize importer: %v", err)
	}

	summary, err := importer.Run(services.ImportOptions{
		Root:              *root,
		Release:           *release,
		Glob:              *globPattern,
		Sport:             *sport,
		IncludeCategories: *includeCategories,
		CommitEvery:       *commitEvery,
		DryRun:            *dryRun,
		Verbose:           *verbose,
	})
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	if *dryRun {
		fmt.Println("Dry run: nothing persisted.")
	}
	fmt.Printf("Done. releases=%d  created=%d  updated=%d  skipped=%d  errors=%d\n",
		summary.Files, summary.Created, summary.Updated, summary.Skipped, summary.Errors)
}
