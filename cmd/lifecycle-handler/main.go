// Package main is the entry point for the lifecycle event handler
// (spec.md §6 Trigger 1). It owns the only HTTP boundary the core
// crosses: decode the envelope, call into internal/lifecycle, and
// translate the Outcome into the {statusCode, body, handled} shape.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nprokhorov/sgdns-discovery/internal/bootstrap"
	"github.com/nprokhorov/sgdns-discovery/internal/config"
	"github.com/nprokhorov/sgdns-discovery/internal/lifecycle"
	"github.com/nprokhorov/sgdns-discovery/internal/telemetry/metrics"
	"github.com/nprokhorov/sgdns-discovery/internal/transport"
	"github.com/nprokhorov/sgdns-discovery/pkg/logger"
)

const (
	serviceName    = "sgdns-discovery-lifecycle-handler"
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

	coordinator := lifecycle.New(
		graph.ConfigStore, graph.Resolver, graph.Prober, graph.Checker,
		graph.Locker, graph.Planner, graph.Applier, graph.Acker, log, graph.Metrics,
	)

	handler := newHandler(coordinator, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	router := mux.NewRouter()
	router.Handle("/invoke", handler).Methods(http.MethodPost)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }).Methods(http.MethodGet)
	registerMetricsHandler(router, graph)

	log.Info("starting lifecycle handler", "service", serviceName, "version", serviceVersion, "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type invokeHandler struct {
	coordinator *lifecycle.Coordinator
	logger      *slog.Logger
}

func newHandler(coordinator *lifecycle.Coordinator, logger *slog.Logger) http.Handler {
	return &invokeHandler{coordinator: coordinator, logger: logger}
}

func (h *invokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeResponse(w, transport.Response{StatusCode: 500, Body: "failed to read request body"})
		return
	}

	event, resp := transport.DecodeLifecycleEvent(raw)
	if resp != nil {
		if resp.StatusCode == http.StatusOK {
			h.logger.Debug("test notification received", "envelope", string(raw))
		}
		writeResponse(w, *resp)
		return
	}

	outcome, err := h.coordinator.Handle(r.Context(), event)
	if err != nil {
		h.logger.Error("lifecycle handling failed", "error", err, "sg_name", event.SgName)
		writeResponse(w, transport.Response{StatusCode: 500, Body: err.Error()})
		return
	}

	writeResponse(w, transport.Response{StatusCode: 200, Body: "ok", Handled: outcome.Handled})
}

// registerMetricsHandler exposes /metrics when monitoring_metrics_enabled
// selected the prometheus sink (spec.md §6).
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
