package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vitalvas/webapi/internal/config"
	"github.com/vitalvas/webapi/internal/host"
	"github.com/vitalvas/webapi/internal/logger"
	"github.com/vitalvas/webapi/internal/startup"
	"github.com/vitalvas/webapi/muxhandlers"
)

func main() {
	configFile := flag.String("config", "", "path to the YAML configuration file")
	envFile := flag.String("env-file", "", "path to a .env file")
	tokenSubject := flag.String("issue-token", "", "print a bearer token for this subject and exit")
	tokenScopes := flag.String("scopes", "", "comma separated scopes for -issue-token")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *tokenSubject != "" {
		var scopes []string
		if *tokenScopes != "" {
			scopes = strings.Split(*tokenScopes, ",")
		}

		token, err := startup.IssueToken(cfg, *tokenSubject, scopes...)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	log := logger.New(&cfg.Logging, cfg.App.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("exiting")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	app := startup.New(cfg, log)

	services := startup.NewServices()
	if err := app.ConfigureServices(services); err != nil {
		return fmt.Errorf("configure services: %w", err)
	}

	pipeline := startup.NewPipeline(services)
	app.Configure(pipeline, startup.Environment(cfg.App.Environment))

	handler, err := pipeline.Build()
	if err != nil {
		return fmt.Errorf("configure pipeline: %w", err)
	}

	var opts []host.Option
	if forwarded, ok := startup.TryResolve[muxhandlers.ForwardedHeadersConfig](services); ok {
		opts = append(opts, host.WithForwardedHeaders(forwarded))
	}

	h, err := host.New(cfg.HTTP, handler, log, opts...)
	if err != nil {
		return err
	}

	log.Info("starting", logger.Fields(
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"stages", pipeline.Stages(),
	))

	return h.Run(ctx)
}
