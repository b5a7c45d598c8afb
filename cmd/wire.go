package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bnema/assetforge-cli/internal/adapters/api"
	catalogview "github.com/bnema/assetforge-cli/internal/adapters/render/catalog"
	tomlrepo "github.com/bnema/assetforge-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/assetforge-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/assetforge-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/assetforge-cli/internal/adapters/secrets/pass"
	"github.com/bnema/assetforge-cli/internal/application"
	"github.com/bnema/assetforge-cli/internal/config"
	"github.com/bnema/assetforge-cli/internal/ports"
	"github.com/bnema/assetforge-cli/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type app struct {
	cfg       config.Config
	logger    *slog.Logger
	session   *application.SessionManager
	catalog   *application.CatalogSync
	mutations *application.MutationCoordinator
	confirmer *promptConfirmer
	registry  *prometheus.Registry
	renderer  func(application.CatalogSnapshot, catalogview.RenderOptions) (string, error)
	now       func() time.Time
}

// lazyApp wires the application on first use so that flags are parsed first and
// commands that need no backend never read the configuration.
type lazyApp struct {
	opts *rootOptions
	once sync.Once
	app  *app
	err  error
}

func (l *lazyApp) get(cmd *cobra.Command) (*app, error) {
	l.once.Do(func() {
		l.app, l.err = wireApp(cmd, l.opts)
	})
	return l.app, l.err
}

func (l *lazyApp) close() {
	if l.app != nil {
		l.app.catalog.Close()
	}
}

func wireApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(config.LoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	secretStore, err := newSecretStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}

	profiles, err := tomlrepo.NewRepository(cfg.SessionFile())
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	client, err := api.NewClient(api.Config{
		BaseURL:        cfg.APIURL,
		Tokens:         api.SecretTokenSource{Store: secretStore, Key: application.SessionTokenKey},
		Logger:         logger,
		UserAgent:      "af/" + version.Version,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := application.NewSyncMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("wire metrics: %w", err)
	}

	catalog := application.NewCatalogSync(application.CatalogSyncConfig{
		Gateway:  client,
		Notifier: logNotifier{logger: logger},
		Metrics:  metrics,
		Logger:   logger,
		Debounce: cfg.Debounce,
	})
	confirmer := &promptConfirmer{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}

	return &app{
		cfg:       cfg,
		logger:    logger,
		session:   application.NewSessionManager(client, secretStore, profiles, logger),
		catalog:   catalog,
		mutations: application.NewMutationCoordinator(client, catalog, confirmer, metrics, logger),
		confirmer: confirmer,
		registry:  registry,
		renderer:  catalogview.Render,
		now:       time.Now,
	}, nil
}

func newSecretStore(cfg config.Config) (ports.SecretStore, error) {
	switch cfg.SecretBackend {
	case config.SecretBackendPass:
		return passstore.NewStore(), nil
	case config.SecretBackendFile:
		return filestore.NewStore(cfg.SecretsDir()), nil
	default:
		store, err := chainstore.NewPassFirstWithFileFallback(cfg.SecretsDir())
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// logNotifier routes catalog notifications to the structured log.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(note ports.Notification) {
	level := slog.LevelInfo
	switch note.Severity {
	case ports.SeverityWarning:
		level = slog.LevelWarn
	case ports.SeverityError:
		level = slog.LevelError
	}
	n.logger.Log(context.Background(), level, note.Message, "error", note.Err)
}

// promptConfirmer asks on the terminal. assumeYes answers every prompt without reading input.
type promptConfirmer struct {
	in        io.Reader
	out       io.Writer
	assumeYes bool

	reader *bufio.Reader
}

func (c *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if c.reader == nil {
		c.reader = bufio.NewReader(c.in)
	}

	if _, err := fmt.Fprintf(c.out, "%s [y/N]: ", prompt); err != nil {
		return false, err
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
