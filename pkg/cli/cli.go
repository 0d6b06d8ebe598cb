package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Version is reported by the MCP server and --version
var Version = "dev"

const defaultEnvFile = ".env"

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	return run(ctx, argv, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) *Error {
	if err := loadEnvFile(argv); err != nil {
		logging.Default().Error("failed to load env file", "error", err)
		return &Error{Code: 1, Message: err.Error()}
	}

	cmd := &cli.Command{
		Name:      "prospector",
		Usage:     "Sales intelligence analyst for oil & gas field signals",
		Version:   Version,
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			analyzeCommand(),
			historyCommand(),
			showCommand(),
			clearCommand(),
			examplesCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

// globalFlags returns flags shared by every command with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("PROSPECTOR_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       logging.FormatConsole,
			Sources:     cli.EnvVars("PROSPECTOR_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "YAML configuration file",
			Sources:     cli.EnvVars("PROSPECTOR_CONFIG"),
			Destination: &cfg.configFile,
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Environment file loaded before flags are read (default: .env if present)",
		},
	}
}

// setup configures logging and applies the configuration file. Every
// command action calls it first.
func (cfg *config) setup(ctx context.Context, c *cli.Command) (context.Context, error) {
	logger := logging.New(cfg.logLevel, cfg.logFormat, c.Root().ErrWriter)
	logging.SetDefault(logger)
	ctx = logging.With(ctx, logger)

	if cfg.configFile != "" {
		fc, err := loadFileConfig(cfg.configFile)
		if err != nil {
			return ctx, err
		}
		if err := cfg.applyFile(c, fc); err != nil {
			return ctx, err
		}
		logger.Debug("configuration file loaded", "path", cfg.configFile)
	}

	return ctx, nil
}

// loadEnvFile loads the file named by --env-file, or .env when present.
// Existing environment variables are kept. It runs before flag parsing so
// that the file can feed flag environment sources.
func loadEnvFile(argv []string) error {
	path, explicit := envFileArg(argv)
	if !explicit {
		if v := os.Getenv("PROSPECTOR_ENV_FILE"); v != "" {
			path, explicit = v, true
		}
	}
	if path == "" {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}

func envFileArg(argv []string) (string, bool) {
	for i, arg := range argv {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			return v, true
		}
		if arg == "--env-file" && i+1 < len(argv) {
			return argv[i+1], true
		}
	}
	return "", false
}
