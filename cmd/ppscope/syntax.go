package main

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/urfave/cli/v3"
)

//go:embed syntax.txt
var syntaxText string

func syntaxCommand() *cli.Command {
	return &cli.Command{
		Name:  "syntax",
		Usage: "show the directive and condition syntax",
		Description: "Print a reference of the supported directives and condition terms.\n" +
			"Output is designed to be grep-friendly.\n\n" +
			"Examples:\n" +
			"  ppscope syntax              # show everything\n" +
			"  ppscope syntax | grep MC    # version comparisons only",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Print(syntaxText)
			return nil
		},
	}
}
