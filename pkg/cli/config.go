package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/adapter"
	"github.com/m-mizutani/prospector/pkg/analyst"
	"github.com/m-mizutani/prospector/pkg/policy"
	"github.com/m-mizutani/prospector/pkg/report"
	"github.com/m-mizutani/prospector/pkg/repository"
	"github.com/m-mizutani/prospector/pkg/usecase/history"
	"github.com/m-mizutani/prospector/pkg/usecase/intel"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

const (
	storageFile      = "file"
	storageSQLite    = "sqlite"
	storageFirestore = "firestore"
	storageGCS       = "gcs"
	storageMemory    = "memory"
)

// config holds configuration values
type config struct {
	logLevel   string
	logFormat  string
	configFile string

	// LLM
	provider        string
	model           string
	geminiAPIKey    string
	geminiProject   string
	geminiLocation  string
	openaiAPIKey    string
	anthropicAPIKey string
	ollamaServerURL string
	timeout         time.Duration

	// Storage
	storage     string
	dataDir     string
	sqlitePath  string
	project     string
	database    string
	collection  string
	bucket      string
	prefix      string
	credentials string

	// Report
	headerRule   string
	headerPolicy string
}

// fileConfig is the optional YAML configuration file. Secrets are read from
// flags and environment variables only.
type fileConfig struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	GeminiProject   string `yaml:"gemini_project"`
	GeminiLocation  string `yaml:"gemini_location"`
	OllamaServerURL string `yaml:"ollama_server_url"`
	Timeout         string `yaml:"timeout"`

	Storage    string `yaml:"storage"`
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	Project    string `yaml:"project"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Bucket     string `yaml:"bucket"`
	Prefix     string `yaml:"prefix"`

	HeaderRule   string `yaml:"header_rule"`
	HeaderPolicy string `yaml:"header_policy"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}
	return &fc, nil
}

// applyFile fills values that were not given by a flag or an environment
// variable.
func (cfg *config) applyFile(c *cli.Command, fc *fileConfig) error {
	if fc == nil {
		return nil
	}

	set := func(name string, dst *string, v string) {
		if v != "" && !c.IsSet(name) {
			*dst = v
		}
	}

	set("provider", &cfg.provider, fc.Provider)
	set("model", &cfg.model, fc.Model)
	set("gemini-project", &cfg.geminiProject, fc.GeminiProject)
	set("gemini-location", &cfg.geminiLocation, fc.GeminiLocation)
	set("ollama-server-url", &cfg.ollamaServerURL, fc.OllamaServerURL)
	set("storage", &cfg.storage, fc.Storage)
	set("data-dir", &cfg.dataDir, fc.DataDir)
	set("sqlite-path", &cfg.sqlitePath, fc.SQLitePath)
	set("project", &cfg.project, fc.Project)
	set("database", &cfg.database, fc.Database)
	set("collection", &cfg.collection, fc.Collection)
	set("bucket", &cfg.bucket, fc.Bucket)
	set("prefix", &cfg.prefix, fc.Prefix)
	set("header-rule", &cfg.headerRule, fc.HeaderRule)
	set("header-policy", &cfg.headerPolicy, fc.HeaderPolicy)

	if fc.Timeout != "" && !c.IsSet("timeout") {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return goerr.Wrap(err, "invalid timeout in config file", goerr.V("timeout", fc.Timeout))
		}
		cfg.timeout = d
	}
	return nil
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "provider",
			Usage:       "LLM provider (gemini, openai, claude, ollama)",
			Value:       analyst.ProviderGemini,
			Sources:     cli.EnvVars("PROSPECTOR_PROVIDER"),
			Destination: &cfg.provider,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "Model name (provider default if empty)",
			Sources:     cli.EnvVars("PROSPECTOR_MODEL"),
			Destination: &cfg.model,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GEMINI_API_KEY", "API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini on Vertex AI",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini on Vertex AI",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("OPENAI_API_KEY"),
			Destination: &cfg.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("ANTHROPIC_API_KEY"),
			Destination: &cfg.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "ollama-server-url",
			Usage:       "Ollama server URL",
			Value:       adapter.DefaultOllamaServerURL,
			Sources:     cli.EnvVars("OLLAMA_SERVER_URL"),
			Destination: &cfg.ollamaServerURL,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout of one analysis request",
			Value:       120 * time.Second,
			Sources:     cli.EnvVars("PROSPECTOR_TIMEOUT"),
			Destination: &cfg.timeout,
		},
	}
}

// storageFlags returns flags for history persistence with destination config
func storageFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage",
			Aliases:     []string{"s"},
			Usage:       "History storage backend (file, sqlite, firestore, gcs, memory)",
			Value:       storageFile,
			Sources:     cli.EnvVars("PROSPECTOR_STORAGE"),
			Destination: &cfg.storage,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory of the file storage",
			Value:       repository.DefaultDataDir(),
			Sources:     cli.EnvVars("PROSPECTOR_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Database file of the sqlite storage (default: <data-dir>/prospector.db)",
			Sources:     cli.EnvVars("PROSPECTOR_SQLITE_PATH"),
			Destination: &cfg.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for Firestore",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "collection",
			Usage:       "Firestore collection",
			Value:       repository.DefaultFirestoreCollection,
			Sources:     cli.EnvVars("PROSPECTOR_COLLECTION"),
			Destination: &cfg.collection,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket",
			Sources:     cli.EnvVars("PROSPECTOR_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "prefix",
			Usage:       "Cloud Storage object prefix",
			Sources:     cli.EnvVars("PROSPECTOR_PREFIX"),
			Destination: &cfg.prefix,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Usage:       "Google Cloud credentials file for Firestore and Cloud Storage",
			Sources:     cli.EnvVars("GOOGLE_APPLICATION_CREDENTIALS"),
			Destination: &cfg.credentials,
		},
	}
}

// reportFlags returns flags for report segmentation with destination config
func reportFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "header-rule",
			Usage:       "Header detection rule (contains, leading)",
			Value:       "contains",
			Sources:     cli.EnvVars("PROSPECTOR_HEADER_RULE"),
			Destination: &cfg.headerRule,
		},
		&cli.StringFlag{
			Name:        "header-policy",
			Usage:       "Rego policy file deciding header segments (overrides --header-rule)",
			Sources:     cli.EnvVars("PROSPECTOR_HEADER_POLICY"),
			Destination: &cfg.headerPolicy,
		},
	}
}

func (cfg *config) clientOptions() []option.ClientOption {
	if cfg.credentials == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.credentials)}
}

// newRepository creates a new repository instance. The returned function
// releases the backend.
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, func(), error) {
	nop := func() {}

	switch cfg.storage {
	case "", storageFile:
		repo, err := repository.NewFile(cfg.dataDir)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create file repository")
		}
		return repo, nop, nil

	case storageSQLite:
		path := cfg.sqlitePath
		if path == "" {
			if err := os.MkdirAll(cfg.dataDir, 0o700); err != nil {
				return nil, nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", cfg.dataDir))
			}
			path = filepath.Join(cfg.dataDir, "prospector.db")
		}
		repo, err := repository.NewSQLite(ctx, path)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create sqlite repository")
		}
		return repo, func() { repo.Close() }, nil

	case storageFirestore:
		if cfg.project == "" {
			return nil, nil, goerr.New("project is required for firestore storage")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database, cfg.collection, cfg.clientOptions()...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create firestore repository")
		}
		return repo, func() { repo.Close() }, nil

	case storageGCS:
		storage, err := cfg.newStorage(ctx)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewCloudStorage(storage, cfg.prefix), nop, nil

	case storageMemory:
		return repository.NewMemory(), nop, nil

	default:
		return nil, nil, goerr.New("unknown storage",
			goerr.V("storage", cfg.storage),
			goerr.V("available", []string{storageFile, storageSQLite, storageFirestore, storageGCS, storageMemory}))
	}
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket is required for gcs storage")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket, cfg.clientOptions()...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newAnalyzer creates the configured Analyzer
func (cfg *config) newAnalyzer(ctx context.Context) (analyst.Analyzer, error) {
	return analyst.New(ctx, analyst.Config{
		Provider:        cfg.provider,
		Model:           cfg.model,
		GeminiAPIKey:    cfg.geminiAPIKey,
		GeminiProjectID: cfg.geminiProject,
		GeminiLocation:  cfg.geminiLocation,
		OpenAIAPIKey:    cfg.openaiAPIKey,
		AnthropicAPIKey: cfg.anthropicAPIKey,
		OllamaServerURL: cfg.ollamaServerURL,
	})
}

// newSegmenter creates the report segmenter with the configured header rule
func (cfg *config) newSegmenter(ctx context.Context) (*report.Segmenter, error) {
	if cfg.headerPolicy != "" {
		h, err := policy.LoadHeader(ctx, cfg.headerPolicy)
		if err != nil {
			return nil, err
		}
		return report.NewSegmenter(report.WithHeaderFunc(h.IsHeader)), nil
	}

	fn, ok := report.HeaderFuncByName(cfg.headerRule)
	if !ok {
		return nil, goerr.New("unknown header rule", goerr.V("rule", cfg.headerRule))
	}
	return report.NewSegmenter(report.WithHeaderFunc(fn)), nil
}

// newHistory creates the history store and loads persisted entries
func (cfg *config) newHistory(ctx context.Context) (*history.Store, func(), error) {
	repo, closer, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	store := history.New(repo)
	store.Load(ctx)
	return store, closer, nil
}

// newUseCase wires the analyzer, history and segmenter. With lenient set, a
// missing credential does not fail here but on every analysis request.
func (cfg *config) newUseCase(ctx context.Context, lenient bool) (*intel.UseCase, func(), error) {
	analyzer, err := cfg.newAnalyzer(ctx)
	if err != nil {
		if !lenient || !errors.Is(err, analyst.ErrMissingCredential) {
			return nil, nil, err
		}
		logging.From(ctx).Warn("analysis is unavailable until credentials are configured", "error", err)
		analyzer = analyst.Unavailable(cfg.provider, err)
	}

	seg, err := cfg.newSegmenter(ctx)
	if err != nil {
		return nil, nil, err
	}

	store, closer, err := cfg.newHistory(ctx)
	if err != nil {
		return nil, nil, err
	}

	return intel.New(analyzer, store, intel.WithSegmenter(seg)), closer, nil
}
