package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/prospector/pkg/server"
	"github.com/m-mizutani/prospector/pkg/service/mcp"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("PROSPECTOR_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)
	flags = append(flags, reportFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web interface",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx, c)
			if err != nil {
				return err
			}

			uc, closer, err := cfg.newUseCase(ctx, true)
			if err != nil {
				return err
			}
			defer closer()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(uc, server.WithAnalysisTimeout(cfg.timeout))
			return srv.Run(ctx, addr)
		},
	}
}

func mcpCommand() *cli.Command {
	var cfg config

	var flags []cli.Flag
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)
	flags = append(flags, reportFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve analysis tools over MCP on stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, err := cfg.setup(ctx, c)
			if err != nil {
				return err
			}

			uc, closer, err := cfg.newUseCase(ctx, true)
			if err != nil {
				return err
			}
			defer closer()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return mcp.Serve(ctx, uc, Version)
		},
	}
}
