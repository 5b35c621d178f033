// Package main provides the datasheets command, which opens a datasheet
// library, re-derives crusade data, and prints or rewrites records.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/datasheet/internal/config"
	"github.com/cory-johannsen/datasheet/internal/game/unit"
	"github.com/cory-johannsen/datasheet/internal/observability"
	"github.com/cory-johannsen/datasheet/internal/storage/library"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and DATASHEET_* environment")
	root := flag.String("root", "", "library root directory; overrides library.root")
	refresh := flag.Bool("refresh", false, "re-derive and rewrite every record")
	list := flag.Bool("list", false, "list folders and records")
	show := flag.String("show", "", "print the datasheet stored as <folder>/<file>")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *root != "" {
		cfg.Library.Root = *root
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	lib, err := library.Open(cfg.Library, logger)
	if err != nil {
		logger.Fatal("opening library", zap.Error(err))
	}

	if *refresh {
		n, err := lib.Refresh()
		if err != nil {
			logger.Fatal("refreshing library", zap.Error(err), zap.Int("written", n))
		}
	}

	if *list {
		for _, folder := range lib.Folders() {
			recs, err := lib.Records(folder)
			if err != nil {
				logger.Fatal("listing folder", zap.String("folder", folder), zap.Error(err))
			}
			fmt.Printf("%s/\n", folder)
			for _, r := range recs {
				fmt.Printf("  %s\t%s\n", r.Filename, r.Unit.Name)
			}
		}
	}

	if *show != "" {
		folder, file, ok := strings.Cut(*show, "/")
		if !ok {
			fmt.Fprintln(os.Stderr, "usage: datasheets -show <folder>/<file>")
			os.Exit(1)
		}
		rec, err := lib.Find(folder, file)
		if err != nil {
			logger.Fatal("finding record", zap.String("record", *show), zap.Error(err))
		}
		if err := unit.NewSheet(&rec.Unit).WriteText(os.Stdout); err != nil {
			logger.Fatal("writing datasheet", zap.Error(err))
		}
	}

	logger.Debug("done", zap.Duration("elapsed", time.Since(start)))
}
