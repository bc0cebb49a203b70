// Command dashauth drives a dashAuth Engine from the terminal against a real
// or embedded auth backend.
//
//	dashauth [flags] signin <email> <password>
//	dashauth [flags] otp-request <email>
//	dashauth [flags] otp-verify <email> <code> [name]
//	dashauth [flags] whoami
//	dashauth [flags] logout
//	dashauth [flags] gate <path>
//
// Sessions persist in Redis (REDIS_ADDR), Postgres (DATABASE_URL) or an
// embedded miniredis that lives for one invocation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	dashAuth "github.com/MrEthical07/dashAuth"
	"github.com/MrEthical07/dashAuth/audit/kafkasink"
)

var errUsage = errors.New("usage")

type options struct {
	configPath   string
	baseURL      string
	redisAddr    string
	databaseURL  string
	namespace    string
	demo         bool
	remember     bool
	newUser      bool
	verbose      bool
	kafkaBrokers string
	kafkaTopic   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config file; defaults plus DASHAUTH_* env when empty")
	flag.StringVar(&opts.baseURL, "base-url", "", "auth backend base URL (overrides config)")
	flag.StringVar(&opts.redisAddr, "redis-addr", "", "redis address; if empty, persistence.redis_addr or REDIS_ADDR, then miniredis")
	flag.StringVar(&opts.databaseURL, "database-url", "", "postgres DSN; if empty, persistence.database_url or DATABASE_URL")
	flag.StringVar(&opts.namespace, "namespace", "", "session namespace; if empty, persistence.namespace")
	flag.BoolVar(&opts.demo, "demo", false, "serve an embedded demo backend with demo@example.com / demo123")
	flag.BoolVar(&opts.remember, "remember", false, "remember me on signin")
	flag.BoolVar(&opts.newUser, "new-user", false, "otp-verify creates an account; the name argument is required")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.StringVar(&opts.kafkaBrokers, "kafka-brokers", "", "comma-separated brokers for audit events")
	flag.StringVar(&opts.kafkaTopic, "kafka-topic", "dashauth.audit", "audit topic")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: dashauth [flags] signin|otp-request|otp-verify|whoami|logout|gate ...")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, opts, flag.Args(), logger)
	switch {
	case errors.Is(err, errUsage):
		flag.Usage()
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "dashauth: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, args []string, logger *slog.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	if len(args)-1 < cmd.minArgs {
		return fmt.Errorf("%w: %s needs %d argument(s)", errUsage, args[0], cmd.minArgs)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if opts.demo {
		url, shutdown, err := startDemoBackend(logger)
		if err != nil {
			return err
		}
		defer shutdown()
		cfg.API.BaseURL = url
	}

	store, closeStore, err := openStore(ctx, resolveStore(opts, cfg.Persistence), logger)
	if err != nil {
		return err
	}
	defer closeStore()

	b := dashAuth.New().WithConfig(cfg).WithStore(store.Store).WithLogger(logger)
	if client := store.redisClient(); client != nil {
		b = b.WithRedis(client)
	}
	var sink *kafkasink.Sink
	if opts.kafkaBrokers != "" {
		sink, err = kafkasink.Dial(kafkasink.Config{
			Brokers:  strings.Split(opts.kafkaBrokers, ","),
			Topic:    opts.kafkaTopic,
			ClientID: "dashauth-cli",
		}, logger)
		if err != nil {
			return fmt.Errorf("kafka audit sink: %w", err)
		}
		b = b.WithAuditSink(sink)
	}

	engine, err := b.Build()
	if err != nil {
		return err
	}
	defer func() {
		engine.Close()
		if sink != nil {
			if err := sink.Close(context.Background()); err != nil {
				logger.Warn("flushing audit events failed", "error", err)
			}
		}
	}()

	if _, err := engine.Hydrate(ctx); err != nil {
		logger.Warn("hydration failed", "error", err)
	}
	return cmd.run(ctx, engine, opts, args[1:])
}

func loadConfig(opts options) (dashAuth.Config, error) {
	var (
		cfg dashAuth.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = dashAuth.LoadConfigFile(opts.configPath)
		if err != nil {
			return dashAuth.Config{}, err
		}
	} else {
		cfg = dashAuth.LoadConfigFromEnv()
	}
	if opts.baseURL != "" {
		cfg.API.BaseURL = opts.baseURL
	}
	if opts.kafkaBrokers != "" {
		cfg.Audit.Enabled = true
	}
	return cfg, nil
}
