// Package main is the entry point for the reconciliation invocation
// handler (spec.md §6 Trigger 2): manual single-record sync or a bulk
// sweep across every configured scaling group.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nprokhorov/sgdns-discovery/internal/bootstrap"
	"github.com/nprokhorov/sgdns-discovery/internal/config"
	"github.com/nprokhorov/sgdns-discovery/internal/reconcile"
	"github.com/nprokhorov/sgdns-discovery/internal/telemetry/metrics"
	"github.com/nprokhorov/sgdns-discovery/internal/transport"
	"github.com/nprokhorov/sgdns-discovery/pkg/logger"
)

const (
	serviceName    = "sgdns-discovery-reconciler"
	serviceVersion = "1.0.0"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()
	if *showVersion {
		fmt.Printf("%s version %s\n", serviceName, serviceVersion)
		os.Exit(0)
	}

	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load environment configuration", "error", err)
		os.Exit(1)
	}

	log := logger.NewLogger(logger.Config{Level: env.LogLevel, Format: "json", Identifier: env.LogIdentifier})
	slog.SetDefault(log)

	graph, err := bootstrap.Build(env, log)
	if err != nil {
		log.Error("failed to build component graph", "error", err)
		os.Exit(1)
	}

	newWorker := func() *reconcile.Worker {
		return reconcile.NewWorker(graph.Membership, graph.Resolver, graph.DNSRegistry, graph.Prober, graph.Checker, graph.Applier, graph.Locker, log, graph.Metrics)
	}
	coordinator := reconcile.New(graph.ConfigStore, newWorker, env.ReconciliationMaxConcurrency, log, graph.Metrics)

	handler := newHandler(coordinator, env.ReconciliationWhatIf, log)

	go runBulkScheduler(coordinator, env, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	router := mux.NewRouter()
	router.Handle("/invoke", handler).Methods(http.MethodPost)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }).Methods(http.MethodGet)
	registerMetricsHandler(router, graph)

	log.Info("starting reconciler", "service", serviceName, "version", serviceVersion, "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// runBulkScheduler drives the self-healing bulk sweep of SPEC_FULL.md
// §10.3: Trigger 2 still arrives over HTTP, but a live process should
// not depend on an external cron to catch drift between invocations.
func runBulkScheduler(coordinator *reconcile.Coordinator, env config.EnvConfig, log *slog.Logger) {
	interval := time.Duration(env.ReconciliationBulkIntervalSeconds) * time.Second
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		result, err := coordinator.Bulk(ctx, env.ReconciliationWhatIf)
		cancel()
		if err != nil {
			log.Error("scheduled bulk sweep failed", "error", err)
			continue
		}
		log.Info("scheduled bulk sweep complete", "groups", len(result.Outcomes), "over_conservative", result.OverConservative)
	}
}

type invokeHandler struct {
	coordinator   *reconcile.Coordinator
	whatIfDefault bool
	logger        *slog.Logger
}

func newHandler(coordinator *reconcile.Coordinator, whatIfDefault bool, logger *slog.Logger) http.Handler {
	return &invokeHandler{coordinator: coordinator, whatIfDefault: whatIfDefault, logger: logger}
}

func (h *invokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeResponse(w, transport.Response{StatusCode: 500, Body: "failed to read request body"})
		return
	}

	invocation, resp := transport.DecodeReconciliationInvocation(raw, h.whatIfDefault)
	if resp != nil {
		writeResponse(w, *resp)
		return
	}

	if invocation.Manual {
		outcome, err := h.coordinator.Manual(r.Context(), invocation.Selector, invocation.WhatIf)
		if err != nil {
			var notConfigured *reconcile.ErrRecordNotConfigured
			if isNotConfigured(err, &notConfigured) {
				writeResponse(w, transport.Response{StatusCode: 400, Body: err.Error()})
				return
			}
			h.logger.Error("manual reconciliation failed", "error", err)
			writeResponse(w, transport.Response{StatusCode: 500, Body: err.Error()})
			return
		}
		writeResponse(w, transport.Response{StatusCode: 200, Body: "ok", Handled: outcome.Err == nil})
		return
	}

	result, err := h.coordinator.Bulk(r.Context(), invocation.WhatIf)
	if err != nil {
		h.logger.Error("bulk reconciliation failed", "error", err)
		writeResponse(w, transport.Response{StatusCode: 500, Body: err.Error()})
		return
	}
	writeResponse(w, transport.Response{StatusCode: 200, Body: "ok", Handled: allSucceeded(result)})
}

func allSucceeded(result reconcile.BulkResult) bool {
	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			return false
		}
	}
	return true
}

func isNotConfigured(err error, target **reconcile.ErrRecordNotConfigured) bool {
	nc, ok := err.(*reconcile.ErrRecordNotConfigured)
	if ok {
		*target = nc
	}
	return ok
}

func registerMetricsHandler(router *mux.Router, graph *bootstrap.Graph) {
	prom, ok := graph.Metrics.(*metrics.PrometheusSink)
	if !ok {
		return
	}
	router.Handle("/metrics", promhttp.HandlerFor(prom.Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

func writeResponse(w http.ResponseWriter, resp transport.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": resp.StatusCode,
		"body":       resp.Body,
		"handled":    resp.Handled,
	})
}
