// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-radar/internal/api"
	"github.com/pdiddy/paper-radar/internal/logging"
	"github.com/pdiddy/paper-radar/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the feed, watchlist and enrichment HTTP API",
	Long: `Serve starts the HTTP API on server.addr and exposes Prometheus metrics on
/metrics. It stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics()
	if err := m.Register(reg); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	assembler, err := newAssembler(st, m)
	if err != nil {
		return err
	}

	srv := api.New(api.Deps{
		Store:    st,
		Feed:     assembler,
		Enricher: newOrchestrator(st, configuredFlags(), cfg.Enrich.Concurrency, m),
		Scoring:  cfg.Scoring,
		Gatherer: reg,
		Logger:   logging.Component("api"),
	}, cfg.Server)
	return srv.ListenAndServe(cmd.Context())
}
