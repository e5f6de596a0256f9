// Package cmd implements the modflat command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/rubiojr/modflat/compiler"
	"github.com/rubiojr/modflat/diag"
	"github.com/rubiojr/modflat/printer"
)

// Execute runs the modflat CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:                   "modflat",
		Usage:                  "Flatten goog.module files into global-namespace scripts",
		Version:                version,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			{
				Name:      "rewrite",
				Usage:     "Rewrite the given scripts and print the result",
				ArgsUsage: "<file.js> [file.js...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "no-color",
						Aliases: []string{"C"},
						Usage:   "Disable ANSI color output",
					},
				},
				Action: rewriteAction,
			},
			{
				Name:      "check",
				Usage:     "Report module problems without printing rewritten output",
				ArgsUsage: "<file.js> [file.js...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "no-color",
						Aliases: []string{"C"},
						Usage:   "Disable ANSI color output",
					},
				},
				Action: checkAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rewriteAction(ctx context.Context, cmd *cli.Command) error {
	comp, err := compileArgs(cmd)
	if err != nil {
		return err
	}
	reportDiagnostics(comp.Diags, useColor(cmd))
	if comp.Diags.HasHaltingErrors() {
		os.Exit(1)
	}
	fmt.Print(printer.Print(comp.Root()))
	return nil
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	comp, err := compileArgs(cmd)
	if err != nil {
		return err
	}
	reportDiagnostics(comp.Diags, useColor(cmd))
	if comp.Diags.HasHaltingErrors() {
		os.Exit(1)
	}
	return nil
}

func compileArgs(cmd *cli.Command) (*compiler.Compiler, error) {
	if cmd.NArg() == 0 {
		return nil, fmt.Errorf("no input files")
	}
	var sources []compiler.Source
	for _, name := range cmd.Args().Slice() {
		contents, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		sources = append(sources, compiler.Source{Name: name, Contents: string(contents)})
	}
	comp := compiler.New()
	if _, err := comp.Compile(sources); err != nil {
		return nil, err
	}
	return comp, nil
}

func useColor(cmd *cli.Command) bool {
	if cmd.Bool("no-color") {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func reportDiagnostics(reporter *diag.Reporter, color bool) {
	for _, d := range reporter.Diagnostics() {
		if d.Type.Severity == diag.Off {
			continue
		}
		severity := d.Type.Severity.String()
		if color {
			if d.Type.Severity == diag.Error {
				severity = "\x1b[31m" + severity + "\x1b[0m"
			} else {
				severity = "\x1b[33m" + severity + "\x1b[0m"
			}
		}
		fmt.Fprintf(os.Stderr, "%s:%d: %s: %s [%s]\n", d.File, d.Pos, severity, d.Message(), d.Type.Key)
	}
}
