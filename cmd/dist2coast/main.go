// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package main implements the dist2coast command line tool and HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/wneessen/dist2coast/internal/config"
	"github.com/wneessen/dist2coast/internal/i18n"
	"github.com/wneessen/dist2coast/internal/logger"
	"github.com/wneessen/dist2coast/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const stdio = "-"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.New(slog.LevelError)

	confPath := flag.String("config", "", "path to the config file")
	input := flag.String("input", "", "address file with id,lat,lon lines (- for stdin)")
	output := flag.String("output", "", "output file (default: <input>_d2c.csv, - for stdout)")
	serve := flag.Bool("serve", false, "serve the HTTP API")
	importDB := flag.Bool("import-db", false, "import the reference grid file into the database")
	export := flag.String("export", "", "export the filtered reference grid as CSV to the given file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dist2coast %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	conf, err := loadConfig(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	log = logger.New(conf.LogLevel)
	printer, err := i18n.New(conf.Locale)
	if err != nil {
		log.Error("failed to initialize localizer", logger.Err(err))
		os.Exit(1)
	}

	serv, err := service.New(conf, log, printer, version)
	if err != nil {
		log.Error("failed to initialize dist2coast service", logger.Err(err))
		os.Exit(1)
	}

	switch {
	case *export != "":
		err = exportGrid(ctx, serv, *export)
	case *importDB:
		var count int64
		count, err = serv.ImportGrid(ctx)
		if err == nil {
			log.Info("imported reference grid into database", slog.Int64("points", count))
		}
	case *serve:
		if err = serv.Open(ctx); err != nil {
			break
		}
		log.Info("starting dist2coast service", slog.String("version", version),
			slog.String("commit", commit), slog.String("date", date))
		err = serv.Run(ctx)
		log.Info("shutting down dist2coast service")
	case *input != "":
		err = process(ctx, log, serv, *input, *output)
	default:
		flag.Usage()
		os.Exit(2)
	}
	serv.Close()
	if err != nil {
		log.Error("dist2coast failed", logger.Err(err))
		os.Exit(1)
	}
}

// loadConfig reads the config file given on the command line, the one in the default
// location or, if neither exists, the environment only.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		return config.NewFromFile(path, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "dist2coast", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}

// outputPath returns the default output file for input: the input file name without its
// extension and with a "_d2c.csv" suffix, next to the input file.
func outputPath(input string) string {
	if input == stdio {
		return stdio
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(input), base+"_d2c.csv")
}

func process(ctx context.Context, log *logger.Logger, serv *service.Service, input, output string) error {
	if err := serv.Open(ctx); err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if input != stdio {
		file, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer func() {
			_ = file.Close()
		}()
		in = file
	}

	if output == "" {
		output = outputPath(input)
	}
	out, closeOut, err := create(output)
	if err != nil {
		return err
	}

	stats, err := serv.Process(ctx, in, out)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.Info("processed address file", slog.String("input", input), slog.String("output", output),
		slog.Int("records", stats.Records), slog.Int("estimated", stats.Estimated),
		slog.Int("passthrough", stats.Passthrough), slog.Int("failed", stats.Failed))
	return nil
}

func exportGrid(ctx context.Context, serv *service.Service, output string) error {
	out, closeOut, err := create(output)
	if err != nil {
		return err
	}
	if err = serv.ExportGrid(ctx, out); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

// create opens the output file, or stdout for "-".
func create(path string) (io.Writer, func() error, error) {
	if path == stdio {
		return os.Stdout, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, file.Close, nil
}
