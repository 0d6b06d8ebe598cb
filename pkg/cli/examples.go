package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/prospector/pkg/analyst"
	"github.com/m-mizutani/prospector/pkg/report/term"
	"github.com/urfave/cli/v3"
)

func examplesCommand() *cli.Command {
	return &cli.Command{
		Name:  "examples",
		Usage: "List built-in example inputs for `analyze --example N`",
		Action: func(ctx context.Context, c *cli.Command) error {
			w := c.Root().Writer
			for i, ex := range analyst.Examples {
				fmt.Fprintf(w, "%s %s\n", historyIDStyle.Render(fmt.Sprintf("[%d]", i+1)), term.FieldLabelStyle.Render(ex.Label))
				fmt.Fprintf(w, "    %s\n", ex.Text)
			}
			return nil
		},
	}
}
