package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/arjunmahishi/ppscope/output"
	"github.com/arjunmahishi/ppscope/ppscope"
)

func fileFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "file to analyze (required)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "language",
			Aliases: []string{"l"},
			Usage:   "force a language (" + languageList() + ")",
		},
		&cli.BoolFlag{
			Name:  "compact",
			Usage: "minimize output",
		},
	}
	return append(flags, extra...)
}

func locationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "line",
			Usage: "1-based line of the position",
		},
		&cli.IntFlag{
			Name:  "column",
			Value: 1,
			Usage: "1-based column of the position",
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "byte offset of the position (used when --line is not set)",
		},
	}
}

func location(cmd *cli.Command) ppscope.Location {
	return ppscope.Location{
		Offset: cmd.Int("offset"),
		Line:   cmd.Int("line"),
		Column: cmd.Int("column"),
	}
}

func versionsFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "version to test, repeatable (default: versions from the config)",
	}
}

func contextCommand() *cli.Command {
	return &cli.Command{
		Name:  "context",
		Usage: "show the conditions governing a position",
		Flags: fileFlags(append(locationFlags(),
			versionsFlag(),
			&cli.BoolFlag{
				Name:  "unknown-inactive",
				Usage: "treat conditions that cannot be evaluated as inactive",
			},
		)...),
		Action: runContext,
	}
}

func runContext(_ context.Context, cmd *cli.Command) error {
	fo, err := fileOptions(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, fo.File)
	if err != nil {
		return err
	}
	versions := cmd.StringSlice("version")
	if len(versions) == 0 {
		versions = cfg.Versions
	}

	result, err := ppscope.Context(ppscope.ContextOptions{
		FileOptions:       fo,
		At:                location(cmd),
		Versions:          versions,
		UnknownIsInactive: cmd.Bool("unknown-inactive"),
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd, result)
}

func foldsCommand() *cli.Command {
	return &cli.Command{
		Name:  "folds",
		Usage: "list fold regions, one per branch",
		Flags: fileFlags(
			&cli.StringFlag{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "version being edited (default: main_version from the config)",
			},
			&cli.BoolFlag{
				Name:  "fold-all",
				Usage: "collapse every block by default",
			},
			&cli.BoolFlag{
				Name:  "fold-inactive",
				Value: true,
				Usage: "collapse branches inactive for --version",
			},
		),
		Action: runFolds,
	}
}

func runFolds(_ context.Context, cmd *cli.Command) error {
	fo, err := fileOptions(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, fo.File)
	if err != nil {
		return err
	}
	settings := cfg.Settings
	if cmd.IsSet("fold-all") {
		settings.FoldAllBlocksByDefault = cmd.Bool("fold-all")
	}
	if cmd.IsSet("fold-inactive") {
		settings.FoldInactiveBlocksByDefault = cmd.Bool("fold-inactive")
	}
	version := cmd.String("version")
	if version == "" {
		version = cfg.MainVersion
	}

	regions, err := ppscope.Folds(ppscope.FoldOptions{
		FileOptions: fo,
		Settings:    settings,
		Version:     version,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd, regions)
}

func blocksCommand() *cli.Command {
	return &cli.Command{
		Name:  "blocks",
		Usage: "show directives and how they pair into blocks",
		Flags: fileFlags(
			&cli.StringFlag{
				Name:  "format",
				Value: "json",
				Usage: "json or table",
			},
		),
		Action: runBlocks,
	}
}

func runBlocks(_ context.Context, cmd *cli.Command) error {
	fo, err := fileOptions(cmd)
	if err != nil {
		return err
	}
	result, err := ppscope.Blocks(ppscope.BlocksOptions{FileOptions: fo})
	if err != nil {
		return err
	}
	switch cmd.String("format") {
	case "json":
		return writeJSON(cmd, result)
	case "table":
		output.BlocksTable(os.Stdout, result)
		return nil
	}
	return fmt.Errorf("invalid format %q (want json or table)", cmd.String("format"))
}

func targetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "targets",
		Usage: "list versions and whether a position is active for each",
		Flags: fileFlags(append(locationFlags(),
			versionsFlag(),
			&cli.BoolFlag{
				Name:  "hide-unmatched",
				Usage: "drop versions the position is inactive for",
			},
			&cli.BoolFlag{
				Name:  "unknown-inactive",
				Usage: "treat conditions that cannot be evaluated as inactive",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "json",
				Usage: "json or table",
			},
		)...),
		Action: runTargets,
	}
}

func runTargets(_ context.Context, cmd *cli.Command) error {
	fo, err := fileOptions(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, fo.File)
	if err != nil {
		return err
	}
	versions := cmd.StringSlice("version")
	if len(versions) == 0 {
		versions = cfg.Versions
	}
	if len(versions) == 0 {
		return errors.New("no versions given (use --version or set versions in the config)")
	}
	settings := cfg.Settings
	if cmd.IsSet("hide-unmatched") {
		settings.HideUnmatchedVersions = cmd.Bool("hide-unmatched")
	}

	result, err := ppscope.Targets(ppscope.TargetsOptions{
		FileOptions:       fo,
		At:                location(cmd),
		Versions:          versions,
		Settings:          settings,
		UnknownIsInactive: cmd.Bool("unknown-inactive"),
	})
	if err != nil {
		return err
	}
	switch cmd.String("format") {
	case "json":
		return writeJSON(cmd, result)
	case "table":
		output.TargetsTable(os.Stdout, result.Targets)
		return nil
	}
	return fmt.Errorf("invalid format %q (want json or table)", cmd.String("format"))
}

func evalCommand() *cli.Command {
	return &cli.Command{
		Name:  "eval",
		Usage: "evaluate a condition against a version",
		Description: "Conditions chain terms with && and ||, applied left to right.\n\n" +
			"Examples:\n" +
			"  ppscope eval -c 'MC >= 1.20' -v 1.21.2-fabric\n" +
			"  ppscope eval -c 'forge || MC < 11600' -v 1.12.2-forge",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "condition",
				Aliases:  []string{"c"},
				Usage:    "condition text, as written after #if",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "version",
				Aliases:  []string{"v"},
				Usage:    "version to evaluate against, e.g. 1.21.2-fabric",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "minimize output",
			},
		},
		Action: runEval,
	}
}

type evalResult struct {
	Condition string           `json:"condition"`
	Version   ppscope.Version  `json:"version"`
	Result    ppscope.Tristate `json:"result"`
}

func runEval(_ context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	condition := cmd.String("condition")
	r, err := ppscope.Eval(condition, cmd.String("version"), logger)
	if err != nil {
		return err
	}
	return writeJSON(cmd, evalResult{
		Condition: condition,
		Version:   ppscope.MustParseVersion(cmd.String("version")),
		Result:    r,
	})
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "parse version strings into comparable keys",
		ArgsUsage: "<version>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "minimize output",
			},
		},
		Action: runVersion,
	}
}

type versionResult struct {
	Input   string          `json:"input"`
	Valid   bool            `json:"valid"`
	Version ppscope.Version `json:"version"`
	Key     string          `json:"key"`
}

func runVersion(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("at least one version is required")
	}
	results := make([]versionResult, 0, len(args))
	for _, arg := range args {
		v, ok := ppscope.ParseVersion(arg)
		if !ok {
			v = ppscope.NullVersion
		}
		results = append(results, versionResult{Input: arg, Valid: ok, Version: v, Key: v.SearchKey()})
	}
	return writeJSON(cmd, results)
}
