package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/model"
	"github.com/m-mizutani/prospector/pkg/report"
	"github.com/m-mizutani/prospector/pkg/report/term"
	"github.com/m-mizutani/prospector/pkg/usecase/history"
	"github.com/urfave/cli/v3"
)

const historySummaryLength = 60

var (
	historyIDStyle   = lipgloss.NewStyle().Foreground(term.ColorBlue).Bold(true)
	historyTimeStyle = lipgloss.NewStyle().Foreground(term.ColorGray)
)

func historyCommand() *cli.Command {
	var (
		cfg    config
		limit  int64
		asJSON bool
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of entries to show (0 for all)",
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print entries as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)

	return &cli.Command{
		Name:    "history",
		Aliases: []string{"ls"},
		Usage:   "List past analyses, newest first",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx, c)
			if err != nil {
				return err
			}

			store, closer, err := cfg.newHistory(ctx)
			if err != nil {
				return err
			}
			defer closer()

			entries := store.Entries()
			if limit > 0 && int(limit) < len(entries) {
				entries = entries[:limit]
			}

			w := c.Root().Writer
			if asJSON {
				return writeJSON(w, entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(w, term.DimStyle.Render("No analysis history."))
				return nil
			}

			for _, e := range entries {
				ts := e.Timestamp.Local()
				fmt.Fprintf(w, "%s  %s  %s\n",
					historyIDStyle.Render(shortID(e.ID)),
					historyTimeStyle.Render(ts.Format("1/2/2006 15:04")),
					e.Summary(historySummaryLength),
				)
			}
			return nil
		},
	}
}

func showCommand() *cli.Command {
	var (
		cfg    config
		raw    bool
		asJSON bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "raw",
			Usage:       "Print the analysis without formatting",
			Destination: &raw,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the entry as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)
	flags = append(flags, reportFlags(&cfg)...)

	return &cli.Command{
		Name:      "show",
		Usage:     "Show the report of a past analysis",
		ArgsUsage: "<entry-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx, c)
			if err != nil {
				return err
			}

			id := c.Args().First()
			if id == "" {
				return goerr.New("entry ID is required")
			}

			store, closer, err := cfg.newHistory(ctx)
			if err != nil {
				return err
			}
			defer closer()

			entry, err := store.Get(id)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			switch {
			case asJSON:
				return writeJSON(w, entry)
			case raw:
				fmt.Fprintln(w, entry.Analysis)
				return nil
			}

			seg, err := cfg.newSegmenter(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(w, term.Banner("Intelligence Report", entry.Timestamp.Local().Format("1/2/2006 15:04")))
			fmt.Fprintln(w)
			fmt.Fprint(w, term.Render(report.Render(seg.Segment(entry.Analysis))))
			return nil
		},
	}
}

func clearCommand() *cli.Command {
	var (
		cfg config
		yes bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "yes",
			Aliases:     []string{"y"},
			Usage:       "Clear without asking for confirmation",
			Destination: &yes,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)

	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all analysis history",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx, c)
			if err != nil {
				return err
			}

			store, closer, err := cfg.newHistory(ctx)
			if err != nil {
				return err
			}
			defer closer()

			w := c.Root().Writer
			confirm := confirmer(c.Root().Reader, w)
			if yes {
				confirm = history.Always
			}

			cleared, err := store.Clear(ctx, confirm)
			if err != nil {
				return err
			}
			if !cleared {
				fmt.Fprintln(w, term.DimStyle.Render("History kept."))
				return nil
			}
			fmt.Fprintln(w, "History cleared.")
			return nil
		},
	}
}

func shortID(id model.EntryID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode JSON")
	}
	return nil
}
