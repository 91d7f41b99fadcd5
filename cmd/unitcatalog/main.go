// Command unitcatalog manages the unit catalog: seeding the SI defaults,
// listing and resolving units, and writing catalog archives to blob storage.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"unitcore/internal/archive"
	"unitcore/internal/blob"
	"unitcore/internal/core"
)

var exitFunc = os.Exit

// main runs the command-line interface using the program arguments and exits
// the process with the status code returned by cli.
func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("unitcatalog", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		seed        = fs.Bool("seed", false, "seed the SI default units into the catalog")
		list        = fs.Bool("list", false, "list catalog units as JSON")
		resolve     = fs.String("resolve", "", "resolve a unit by symbol, name or alternative name")
		doArchive   = fs.Bool("archive", false, "write a catalog archive to blob storage")
		restoreKey  = fs.String("restore", "", "restore the archive stored at the given key")
		quietLogger = fs.Bool("quiet", false, "disable structured logging")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if !*seed && !*list && *resolve == "" && !*doArchive && *restoreKey == "" {
		fs.Usage()
		return 2
	}

	opts := []core.Option{}
	if !*quietLogger {
		logger, err := core.NewProductionLogger()
		if err != nil {
			fmt.Fprintf(stderr, "init logger: %v\n", err)
			return 1
		}
		defer func() { _ = logger.Sync() }()
		opts = append(opts, core.WithLogger(logger))
	}

	ctx := context.Background()
	store, err := core.OpenPersistentStore(core.StorageConfigFromEnv())
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	svc := core.NewService(store, opts...)

	if *seed {
		count, err := svc.SeedCatalog(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "seed catalog: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "seeded %d units\n", count)
	}

	if *resolve != "" {
		unit, err := svc.ResolveUnit(ctx, *resolve)
		if err != nil {
			fmt.Fprintf(stderr, "resolve: %v\n", err)
			return 1
		}
		if err := printJSON(stdout, unit); err != nil {
			return 1
		}
	}

	if *list {
		units, err := svc.ListUnits(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "list: %v\n", err)
			return 1
		}
		if err := printJSON(stdout, units); err != nil {
			return 1
		}
	}

	if *doArchive || *restoreKey != "" {
		blobs, err := blob.Open(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "open blob store: %v\n", err)
			return 1
		}
		archiver := archive.New(store, blobs)
		if *doArchive {
			info, err := archiver.Archive(ctx)
			if err != nil {
				fmt.Fprintf(stderr, "archive: %v\n", err)
				return 1
			}
			fmt.Fprintf(stdout, "archived %s\n", info.Key)
		}
		if *restoreKey != "" {
			restored, err := archiver.Restore(ctx, *restoreKey)
			if err != nil {
				fmt.Fprintf(stderr, "restore: %v\n", err)
				return 1
			}
			fmt.Fprintf(stdout, "restored %d units\n", restored)
		}
	}

	return 0
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
