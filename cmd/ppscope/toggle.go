package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/arjunmahishi/ppscope/ppscope"
)

func writeFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "write",
		Aliases: []string{"w"},
		Usage:   "write the result back to the file instead of stdout",
	}
}

func toggleCommand() *cli.Command {
	return &cli.Command{
		Name:  "toggle",
		Usage: "comment out or restore the branch at a position with $$ markers",
		Flags: fileFlags(append(locationFlags(), writeFlag())...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			fo, err := fileOptions(cmd)
			if err != nil {
				return err
			}
			text, err := ppscope.ToggleBlock(ppscope.ToggleOptions{
				FileOptions: fo,
				At:          location(cmd),
			})
			if err != nil {
				return err
			}
			return emit(cmd, fo.File, text)
		},
	}
}

func toggleLinesCommand() *cli.Command {
	return &cli.Command{
		Name:  "toggle-lines",
		Usage: "toggle $$ markers on a line range",
		Flags: fileFlags(
			&cli.IntFlag{
				Name:     "start",
				Usage:    "first line, 1-based",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "end",
				Usage: "last line, inclusive (default: --start)",
			},
			writeFlag(),
		),
		Action: func(_ context.Context, cmd *cli.Command) error {
			fo, err := fileOptions(cmd)
			if err != nil {
				return err
			}
			end := cmd.Int("end")
			if end == 0 {
				end = cmd.Int("start")
			}
			text, err := ppscope.ToggleLines(ppscope.ToggleLinesOptions{
				FileOptions: fo,
				StartLine:   cmd.Int("start"),
				EndLine:     end,
			})
			if err != nil {
				return err
			}
			return emit(cmd, fo.File, text)
		},
	}
}

// emit prints the toggled text or, with --write, replaces the file.
func emit(cmd *cli.Command, file, text string) error {
	if !cmd.Bool("write") {
		_, err := fmt.Fprint(os.Stdout, text)
		return err
	}
	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, []byte(text), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
