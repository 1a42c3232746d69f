package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/arjunmahishi/ppscope/config"
	"github.com/arjunmahishi/ppscope/output"
	"github.com/arjunmahishi/ppscope/ppscope"
)

func main() {
	app := &cli.Command{
		Name:  "ppscope",
		Usage: "inspect //#if preprocessor blocks in multi-version sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to " + config.FileName + " (default: search upwards from the target)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "persist parsed comments under this directory",
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			contextCommand(),
			foldsCommand(),
			blocksCommand(),
			targetsCommand(),
			evalCommand(),
			versionCommand(),
			toggleCommand(),
			toggleLinesCommand(),
			syntaxCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		output.WriteError(os.Stderr, err)
		os.Exit(1)
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "report malformed and mismatched directives",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Value: ".",
				Usage: "root path to scan",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "single file to check",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "only scan this language (" + languageList() + ")",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "json",
				Usage: "json or pretty",
			},
			&cli.StringFlag{
				Name:  "color",
				Value: "auto",
				Usage: "colorize pretty output (auto|on|off)",
			},
			&cli.BoolFlag{
				Name:  "no-inspections",
				Usage: "only report directive errors",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "exit non-zero when any error is found",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "minimize output",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Value:   runtime.NumCPU(),
				Usage:   "number of parallel workers",
			},
			&cli.Int64Flag{
				Name:  "max-bytes",
				Value: 2 * 1024 * 1024,
				Usage: "skip files larger than this",
			},
		},
		Action: runCheck,
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	target := cmd.String("file")
	if target == "" {
		target = cmd.String("path")
	}
	cfg, err := loadConfig(cmd, target)
	if err != nil {
		return err
	}
	if cmd.Bool("no-inspections") {
		cfg.Settings.NonIndentedNestedIfs = false
		cfg.Settings.CommentsNotMatchingIfIndents = false
	}
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	reports, err := ppscope.Check(ctx, ppscope.CheckOptions{
		Path:     cmd.String("path"),
		File:     cmd.String("file"),
		Language: cmd.String("language"),
		Settings: cfg.Settings,
		Jobs:     cmd.Int("jobs"),
		MaxBytes: cmd.Int64("max-bytes"),
		Cache:    cache,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	switch cmd.String("format") {
	case "json":
		err = output.New(output.Config{Compact: cmd.Bool("compact")}).Write(reports)
	case "pretty":
		colored, cerr := output.ColorEnabled(cmd.String("color"), os.Stdout)
		if cerr != nil {
			return cerr
		}
		err = output.Pretty(os.Stdout, reports, colored)
	default:
		return fmt.Errorf("invalid format %q (want json or pretty)", cmd.String("format"))
	}
	if err != nil {
		return err
	}

	if cmd.Bool("strict") {
		if n := countErrors(reports); n > 0 {
			return fmt.Errorf("found %d directive errors", n)
		}
	}
	return nil
}

func countErrors(reports []ppscope.FileReport) int {
	n := 0
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			if d.Severity == ppscope.SevError {
				n++
			}
		}
	}
	return n
}

// loadConfig reads --config, or the config governing target.
func loadConfig(cmd *cli.Command, target string) (config.Config, error) {
	if path := cmd.String("config"); path != "" {
		return config.LoadFile(path)
	}
	dir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		dir = filepath.Dir(target)
	}
	return config.Load(dir)
}

func openCache(cmd *cli.Command) (*ppscope.Cache, error) {
	if dir := cmd.String("cache-dir"); dir != "" {
		return ppscope.OpenDiskCache(dir)
	}
	return ppscope.NewCache(), nil
}

func newLogger(cmd *cli.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// fileOptions builds the shared per-file options of a command.
func fileOptions(cmd *cli.Command) (ppscope.FileOptions, error) {
	file := cmd.String("file")
	if file == "" {
		return ppscope.FileOptions{}, errors.New("--file is required")
	}
	cache, err := openCache(cmd)
	if err != nil {
		return ppscope.FileOptions{}, err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return ppscope.FileOptions{}, err
	}
	return ppscope.FileOptions{
		File:     file,
		Language: cmd.String("language"),
		Cache:    cache,
		Logger:   logger,
	}, nil
}

func languageList() string {
	return strings.Join(ppscope.List(), ", ")
}

func writeJSON(cmd *cli.Command, v any) error {
	return output.New(output.Config{Compact: cmd.Bool("compact")}).Write(v)
}
