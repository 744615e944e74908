package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	c "lautenbacher.net/godimmer/config"
	"lautenbacher.net/godimmer/dimmer"
	"lautenbacher.net/godimmer/util"
)

// webServer serves /api/config and /api/status. It outlives reloads; the
// status source is swapped for every new controller.
type webServer struct {
	srv    *http.Server
	status atomic.Pointer[util.AtomicEvent[dimmer.Status]]
}

func newWebServer(addr, cfile string) *webServer {
	w := &webServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", c.ConfigHandler(cfile))
	mux.HandleFunc("/api/status", w.handleStatus)
	w.srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return w
}

func (w *webServer) start() {
	go func() {
		slog.Info("Starting web server", "address", w.srv.Addr)
		if err := w.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web server failed", "error", err)
		}
	}()
}

func (w *webServer) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.srv.Shutdown(ctx); err != nil {
		slog.Error("Web server shutdown", "error", err)
	}
}

func (w *webServer) setStatus(ev *util.AtomicEvent[dimmer.Status]) {
	w.status.Store(ev)
}

func (w *webServer) handleStatus(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ev := w.status.Load()
	if ev == nil {
		http.Error(rw, "Dimmer not running", http.StatusServiceUnavailable)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(ev.Value()); err != nil {
		slog.Error("Failed to encode status", "error", err)
	}
}
