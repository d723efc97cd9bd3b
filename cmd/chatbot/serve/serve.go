package servecmder

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbot/api"
	"github.com/papercomputeco/chatbot/pkg/chat"
	"github.com/papercomputeco/chatbot/pkg/config"
	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/logger"
	"github.com/papercomputeco/chatbot/pkg/storage"
	"github.com/papercomputeco/chatbot/pkg/storage/inmemory"
	"github.com/papercomputeco/chatbot/pkg/storage/sqlite"
)

const serveLongDesc string = `Run the chatbot HTTP server.

Settings come from built-in defaults, then the optional TOML file given
with --config, then environment variables (GEMINI_API_KEY, GEMINI_API_URL,
CHATBOT_LISTEN, CHATBOT_SQLITE_PATH), then flags.

Without a SQLite path, turns are kept in memory and lost on exit.

Examples:
  chatbot serve
  chatbot serve --listen :9090 --sqlite ~/.chatbot/chatbot.db
  chatbot serve --config /etc/chatbot.toml --debug`

const serveShortDesc string = "Run the chatbot server"

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	configPath string
	listen     string
	sqlitePath string
	debug      bool
	logFormat  string

	// listener, when set, is served instead of listening on the configured address.
	listener net.Listener
}

func NewServeCmd() *cobra.Command {
	return newServeCmd(&serveCommander{})
}

func newServeCmd(cmder *serveCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", config.DefaultListenAddr, "Address to listen on")
	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite database (default: in-memory)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&cmder.logFormat, "log-format", "console", "Log format: console or json")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogFormat, cfg.Debug)
	defer log.Sync()

	completer, err := llm.NewGeminiClient(llm.ClientConfig{
		APIURL:  cfg.Gemini.APIURL,
		APIKey:  cfg.Gemini.APIKey,
		Timeout: cfg.Gemini.Timeout.Duration,
	}, log)
	if err != nil {
		return fmt.Errorf("could not create Gemini client: %w", err)
	}
	if completer.APIKeyConfigured() {
		log.Info("Gemini API key configured")
	} else {
		log.Warn("Gemini API key is not configured, completions will fail until " + config.EnvAPIKey + " is set")
	}

	driver, err := openDriver(ctx, cfg.Storage.SQLitePath, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	srv := api.NewServer(api.Config{
		ListenAddr:         cfg.ListenAddr,
		MaxMessageLength:   cfg.Limits.MaxMessageLength,
		MaxSessionIDLength: cfg.Limits.MaxSessionIDLength,
		DefaultRecentLimit: cfg.Limits.DefaultRecentLimit,
		AllowOrigins:       cfg.CORS.AllowOrigins,
	}, chat.NewService(completer, driver, log), log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if c.listener != nil {
			errCh <- srv.RunWithListener(c.listener)
			return
		}
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("chatbot server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down chatbot server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shut down cleanly: %w", err)
	}
	return <-errCh
}

// loadConfig applies explicitly set flags on top of the loaded configuration.
func (c *serveCommander) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr = c.listen
	}
	if flags.Changed("sqlite") {
		cfg.Storage.SQLitePath = c.sqlitePath
	}
	if flags.Changed("debug") {
		cfg.Debug = c.debug
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = c.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openDriver(ctx context.Context, sqlitePath string, log *zap.Logger) (storage.Driver, error) {
	if sqlitePath == "" {
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	}

	driver, err := sqlite.NewDriver(ctx, sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("could not open SQLite database %s: %w", sqlitePath, err)
	}
	log.Info("using SQLite storage", zap.String("path", sqlitePath))
	return driver, nil
}
