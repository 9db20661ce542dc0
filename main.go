package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"gopkg.in/yaml.v3"

	"agency-intake/internal/agencyapi"
	"agency-intake/internal/config"
	"agency-intake/internal/handler"
	"agency-intake/internal/metrics"
	"agency-intake/internal/model"
	"agency-intake/internal/refdata"
	"agency-intake/internal/schema"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "agency-intake",
		Short:        "Insurance agency intake wizard engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./intake.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the intake session service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configFile)
		},
	})
	root.AddCommand(newSchemaCommand())
	return root
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "schema <kind>",
		Short:     "Print the steps, fields and defaults of an intake kind as YAML",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSchema(cmd.OutOrStdout(), args[0])
		},
	}
}

func kindNames() []string {
	var out []string
	for _, k := range model.Kinds() {
		out = append(out, string(k))
	}
	return out
}

func printSchema(w io.Writer, name string) error {
	kind, ok := model.ParseKind(name)
	if !ok {
		return fmt.Errorf("unknown kind %q, want one of %v", name, kindNames())
	}
	sch, err := schema.Lookup(kind)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sch); err != nil {
		return err
	}
	return enc.Close()
}

func serve(ctx context.Context, configFile string) error {
	cfg, err := config.Load(config.New(configFile))
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}
	cache, err := refdata.NewCache(cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		return err
	}
	api, err := agencyapi.New(agencyapi.Options{BaseURL: cfg.APIBaseURL, Logger: logger})
	if err != nil {
		return err
	}

	svc := handler.New(handler.Deps{
		Submitter:        api,
		References:       api,
		ReferenceCache:   cache,
		SubmitTimeout:    cfg.SubmitTimeout,
		ReferenceTimeout: cfg.ReferenceTimeout,
		SessionIdleTTL:   cfg.SessionIdleTTL,
		MaxSessions:      cfg.SessionMax,
		Metrics:          m,
		Gatherer:         reg,
		Logger:           logger,
	})
	defer svc.Close()

	srv := &fasthttp.Server{Handler: svc.Handle, Name: "agency-intake"}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("agency intake starting", "addr", cfg.Addr(), "api", cfg.APIBaseURL)
	if err := srv.ListenAndServe(cfg.Addr()); err != nil {
		logger.Error("server failed", "error", err)
		return err
	}
	return nil
}
