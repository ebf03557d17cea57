// Package dashboard serves the read-only JSON API over the analysis store.
package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Azeflow10/solana-ml-scanner/pkg/db"
	"github.com/Azeflow10/solana-ml-scanner/pkg/orchestrator"
)

type Dashboard struct {
	store *db.Store
	orch  *orchestrator.Orchestrator
	port  int
}

func New(store *db.Store, orch *orchestrator.Orchestrator, port int) *Dashboard {
	return &Dashboard{store: store, orch: orch, port: port}
}

func (d *Dashboard) Run() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/stats", cors(d.handleStats))
	mux.HandleFunc("/api/alerts", cors(d.handleAlerts))
	mux.HandleFunc("/api/analyses/recent", cors(d.handleRecentAnalyses))
	mux.HandleFunc("/api/health", cors(d.handleHealth))

	mux.HandleFunc("/", d.serveFrontend)

	addr := fmt.Sprintf(":%d", d.port)
	log.Info().Str("addr", addr).Msg("🌐 dashboard started")
	return http.ListenAndServe(addr, mux)
}

func cors(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := d.store.GetStats()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	type statsView struct {
		*db.Stats
		AlertsRemainingToday int `json:"alerts_remaining_today"`
		AlertsSentTotal      int `json:"alerts_sent_total"`
	}
	view := statsView{Stats: stats}
	if d.orch != nil {
		view.AlertsRemainingToday = d.orch.AlertsRemainingToday()
		view.AlertsSentTotal = d.orch.AlertsSentTotal()
	}
	writeJSON(w, view)
}

func (d *Dashboard) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := d.store.GetRecentAlerts(limitParam(r, 50))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, alerts)
}

func (d *Dashboard) handleRecentAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := d.store.GetRecentAnalyses(limitParam(r, 25))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, analyses)
}

func (d *Dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func limitParam(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return fallback
}
