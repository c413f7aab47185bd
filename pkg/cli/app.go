package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/cardiocheck/pkg/config"
	"github.com/mchmarny/cardiocheck/pkg/data"
	"github.com/mchmarny/cardiocheck/pkg/logging"
	"github.com/mchmarny/cardiocheck/pkg/model"
	"github.com/mchmarny/cardiocheck/pkg/predict"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "cardiocheck"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	configDirFlag = &urfave.StringFlag{
		Name:  "config",
		Usage: "Directory holding config.yaml and cached artifacts (default: $HOME/.cardiocheck)",
	}

	modelFlag = &urfave.StringFlag{
		Name:  "model",
		Usage: "Path or http(s) URL of the model artifact (overrides config)",
	}

	dbFilePathFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the Sqlite verdict tally file, enables the tally (overrides config)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(os.Stderr, config.DefaultLogLevel)

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Dir    string
	Config *config.Config
	Format string
	// DB is nil unless the verdict tally is enabled.
	DB *sql.DB
}

func getConfig(cmd *urfave.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Heart disease prediction from patient clinical measurements",
		Metadata:              map[string]any{},
		Flags: []urfave.Flag{
			debugFlag,
			configDirFlag,
			modelFlag,
			dbFilePathFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			serverCmd,
			predictCmd,
			batchCmd,
			tokenCmd,
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			dir := cmd.String(configDirFlag.Name)
			if dir == "" {
				dir = getHomeDir()
			}

			cfg, err := config.ReadOrCreate(dir)
			if err != nil {
				return ctx, fmt.Errorf("reading config: %w", err)
			}

			if m := cmd.String(modelFlag.Name); m != "" {
				cfg.Model = m
			}
			if p := cmd.String(dbFilePathFlag.Name); p != "" {
				cfg.DB = p
			}
			if cmd.Bool(debugFlag.Name) {
				cfg.LogLevel = "debug"
			}
			initLogging(cmd.Root().ErrWriter, cfg.LogLevel)

			format := formatJSON
			if f := strings.ToLower(cmd.String(formatFlag.Name)); f == formatYAML || f == "yml" {
				format = formatYAML
			}

			ac := &appConfig{
				Dir:    dir,
				Config: cfg,
				Format: format,
			}

			if cfg.DB != "" {
				if err := data.Init(cfg.DB); err != nil {
					return ctx, fmt.Errorf("initializing database: %w", err)
				}
				if ac.DB, err = data.GetDB(cfg.DB); err != nil {
					return ctx, fmt.Errorf("opening database: %w", err)
				}
			}

			cmd.Root().Metadata[appConfigKey] = ac
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *urfave.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

// loadPredictor resolves, loads and wraps the model artifact. It runs once per
// process; a failure here is fatal to the command.
func loadPredictor(ctx context.Context, cfg *appConfig) (*predict.Predictor, error) {
	path, err := model.Fetch(ctx, cfg.Config.Model, cfg.Dir)
	if err != nil {
		return nil, err
	}

	token, err := getModelToken(cfg.Dir)
	if err != nil {
		slog.Debug("no model token", "error", err)
	}

	c, err := model.Load(ctx, path, model.Options{Token: token})
	if err != nil {
		return nil, err
	}

	slog.Info("model loaded", "name", c.Name())
	return predict.New(c)
}

func initLogging(w io.Writer, level string) {
	if w == nil {
		w = os.Stderr
	}
	slog.SetDefault(logging.NewLogger(w, level, logging.FormatCLI))
}

func getHomeDir() string {
	dir, created, err := config.GetOrCreateHomeDir(appName)
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return filepath.Join(".", "."+appName)
	}
	if created {
		slog.Debug("created app dir", "path", dir)
	}
	return dir
}

func writer(cmd *urfave.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

// readFile decodes a JSON (by extension) or YAML file into v. Keys that do not
// map to a field of v are rejected.
func readFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		d := json.NewDecoder(bytes.NewReader(b))
		d.DisallowUnknownFields()
		if err := d.Decode(v); err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
		return nil
	}

	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	if err := d.Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
