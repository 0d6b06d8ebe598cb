package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/m-mizutani/prospector/pkg/analyst"
	"github.com/m-mizutani/prospector/pkg/report/term"
	"github.com/m-mizutani/prospector/pkg/usecase/intel"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func analyzeCommand() *cli.Command {
	var (
		cfg       config
		text      string
		inputFile string
		example   int64
		raw       bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "text",
			Aliases:     []string{"t"},
			Usage:       "Text to analyze",
			Destination: &text,
		},
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a file containing the text to analyze",
			Destination: &inputFile,
		},
		&cli.IntFlag{
			Name:        "example",
			Aliases:     []string{"e"},
			Usage:       "Analyze the N-th built-in example (see `examples`)",
			Destination: &example,
		},
		&cli.BoolFlag{
			Name:        "raw",
			Usage:       "Print the analysis without formatting",
			Destination: &raw,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)
	flags = append(flags, reportFlags(&cfg)...)

	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze field signals and store the report in history",
		ArgsUsage: "[text]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx, c)
			if err != nil {
				return err
			}

			stdout := c.Root().Writer
			stderr := c.Root().ErrWriter

			if text == "" {
				text = c.Args().First()
			}
			if example > 0 {
				ex, err := analyst.ExampleAt(int(example))
				if err != nil {
					return err
				}
				text = ex.Text
			}

			input, err := readText(text, inputFile, c.Root().Reader, stdout)
			if err != nil {
				return err
			}

			uc, closer, err := cfg.newUseCase(ctx, false)
			if err != nil {
				printFailure(stderr, err)
				return err
			}
			defer closer()

			return runAnalyze(ctx, uc, &cfg, input, raw, stdout, stderr)
		},
	}
}

func runAnalyze(ctx context.Context, uc *intel.UseCase, cfg *config, input string, raw bool, stdout, stderr io.Writer) error {
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	logging.From(ctx).Debug("analyzing", "provider", uc.Provider(), "length", len(input))

	sp := startSpinner(stderr, "Analyzing signals with "+uc.Provider()+"...")
	entry, err := uc.Analyze(ctx, input)
	sp.Stop()

	if err != nil {
		printFailure(stderr, err)
		return err
	}

	if raw {
		fmt.Fprintln(stdout, entry.Analysis)
	} else {
		fmt.Fprint(stdout, term.Render(uc.Report(entry)))
	}
	fmt.Fprintln(stdout, term.DimStyle.Render("Entry: "+entry.ID.String()))
	return nil
}

func printFailure(w io.Writer, err error) {
	msg := analyst.UserMessage(err)
	if errors.Is(err, intel.ErrEmptyInput) {
		msg = "Please provide text to analyze."
	}
	fmt.Fprintln(w, term.ErrorStyle.Render(msg))
}
