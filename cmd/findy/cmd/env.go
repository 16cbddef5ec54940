package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/findyjobs/findy/internal/config"
	"github.com/findyjobs/findy/internal/metrics"
	"github.com/findyjobs/findy/internal/session"
	"github.com/findyjobs/findy/pkg/client"
)

// errNotSignedIn is returned by commands that need an identity.
var errNotSignedIn = errors.New("not signed in: run findy login")

// env is everything a command needs, built from the loaded config.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	session  *session.Store
	client   *client.Client
	closers  []io.Closer
}

type envKey struct{}

// envFrom returns the env attached to ctx by openEnv, or nil.
func envFrom(ctx context.Context) *env {
	if ctx == nil {
		return nil
	}
	e, _ := ctx.Value(envKey{}).(*env)
	return e
}

// openEnv loads config and wires logging, metrics, the session and the API
// client, then attaches the env to cmd's context for the post-run hooks.
// When tui is set, logs go to the configured log file instead of stderr so
// they do not tear the screen.
func openEnv(cmd *cobra.Command, tui bool) (*env, error) {
	cfg, err := config.LoadConfig(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	e := &env{cfg: cfg}

	var out io.Writer = os.Stderr
	if tui {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		out = f
		e.closers = append(e.closers, f)
	}
	level := parseLogLevel(cfg.LogLevel)
	e.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	e.logger.Debug("log level configured", "level", cfg.LogLevel, "effective", level.String())
	if used := v.ConfigFileUsed(); used != "" {
		e.logger.Debug("loaded config", "file", used)
	}

	e.registry = prometheus.NewRegistry()
	e.metrics = metrics.New(e.registry)

	e.session, err = session.Open(tokenStore(cfg), e.logger)
	if err != nil {
		e.close()
		return nil, err
	}

	httpClient := &http.Client{Transport: e.metrics.InstrumentTransport(http.DefaultTransport)}
	e.client = client.New(cfg.APIURL, "",
		client.WithHTTPClient(httpClient),
		client.WithTimeout(cfg.Timeout()),
		client.WithTokenSource(e.session),
		client.WithLogger(e.logger),
	)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, envKey{}, e))
	return e, nil
}

// tokenStore prefers FINDY_TOKEN, kept in memory only, over the token file.
func tokenStore(cfg *config.Config) session.TokenStore {
	if tok := strings.TrimSpace(os.Getenv("FINDY_TOKEN")); tok != "" {
		return session.NewMemoryTokenStore(tok)
	}
	return session.NewFileTokenStore(cfg.TokenFile)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// identity returns the signed-in identity or errNotSignedIn.
func (e *env) identity() (*session.Identity, error) {
	id := e.session.CurrentIdentity()
	if id == nil {
		return nil, errNotSignedIn
	}
	return id, nil
}

func (e *env) close() {
	for _, c := range e.closers {
		_ = c.Close()
	}
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
