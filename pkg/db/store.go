// Package db persists analyses and sent alerts to sqlite. The store is
// best-effort from the orchestrator's point of view: a write failure is
// logged, never fatal, because scanning must outlive a full disk.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	address         TEXT NOT NULL,
	symbol          TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT '',
	score_combined  REAL NOT NULL,
	score_rules     REAL NOT NULL,
	score_ml        REAL NOT NULL,
	category        TEXT NOT NULL,
	risk_level      TEXT NOT NULL,
	liquidity_usd   REAL NOT NULL DEFAULT 0,
	age_seconds     INTEGER NOT NULL DEFAULT 0,
	complete        INTEGER NOT NULL DEFAULT 0,
	duration_ms     REAL NOT NULL DEFAULT 0,
	result_json     TEXT NOT NULL,
	analyzed_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_address ON analyses(address);
CREATE INDEX IF NOT EXISTS idx_analyses_analyzed_at ON analyses(analyzed_at);

CREATE TABLE IF NOT EXISTS alerts (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	address         TEXT NOT NULL,
	symbol          TEXT NOT NULL DEFAULT '',
	score_combined  REAL NOT NULL,
	category        TEXT NOT NULL,
	risk_level      TEXT NOT NULL,
	sent_at         TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_sent_at ON alerts(sent_at);
`

type Store struct {
	db *sql.DB
}

// Open creates the parent directory, opens the database and applies the
// schema. Busy timeout keeps the dashboard's reads from tripping over writes.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveAnalysis records one full analysis; the complete result is kept as JSON
// alongside the queryable scalar columns.
func (s *Store) SaveAnalysis(r *model.AnalysisResult) error {
	if r.Scoring == nil {
		return fmt.Errorf("analysis for %s has no scoring", r.Token.Address)
	}

	blob, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	complete := 0
	if r.IsComplete() {
		complete = 1
	}

	_, err = s.db.Exec(`INSERT INTO analyses
		(address, symbol, source, score_combined, score_rules, score_ml,
		 category, risk_level, liquidity_usd, age_seconds, complete,
		 duration_ms, result_json, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Token.Address, r.Token.Symbol, r.Token.Source,
		r.Scoring.ScoreCombined, r.Scoring.ScoreRules, r.Scoring.ScoreML,
		string(r.Scoring.Category), string(r.Scoring.RiskLevel),
		r.Token.LiquidityUSD, r.Token.AgeSeconds, complete,
		r.DurationMS, string(blob), r.AnalyzedAt.UTC())
	return err
}

// SaveAlert records that an alert actually went out.
func (s *Store) SaveAlert(r *model.AnalysisResult, sentAt time.Time) error {
	_, err := s.db.Exec(`INSERT INTO alerts
		(address, symbol, score_combined, category, risk_level, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Token.Address, r.Token.Symbol,
		r.Scoring.ScoreCombined, string(r.Scoring.Category),
		string(r.Scoring.RiskLevel), sentAt.UTC())
	return err
}

// Stats is the aggregate view backing the dashboard and the daily summary.
// The *Today fields cover one UTC day window: the current day for GetStats,
// the requested day for GetStatsForDay.
type Stats struct {
	TotalAnalyses   int            `json:"total_analyses"`
	TotalAlerts     int            `json:"total_alerts"`
	AnalysesToday   int            `json:"analyses_today"`
	AlertsToday     int            `json:"alerts_today"`
	AvgScoreToday   float64        `json:"avg_score_today"`
	BestScoreToday  float64        `json:"best_score_today"`
	ByCategoryToday map[string]int `json:"by_category_today"`
}

// GetStats aggregates lifetime totals plus the current UTC day so far.
func (s *Store) GetStats() (*Stats, error) {
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	return s.statsWindow(dayStart, dayStart.Add(24*time.Hour))
}

// GetStatsForDay aggregates one full UTC day, [00:00, next 00:00). The daily
// summary uses it so the digest for a finished day never reads the new day's
// rows.
func (s *Store) GetStatsForDay(day time.Time) (*Stats, error) {
	start := day.UTC().Truncate(24 * time.Hour)
	return s.statsWindow(start, start.Add(24*time.Hour))
}

func (s *Store) statsWindow(start, end time.Time) (*Stats, error) {
	st := &Stats{ByCategoryToday: make(map[string]int)}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&st.TotalAnalyses); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&st.TotalAlerts); err != nil {
		return nil, err
	}
	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(AVG(score_combined), 0), COALESCE(MAX(score_combined), 0)
		FROM analyses WHERE analyzed_at >= ? AND analyzed_at < ?`, start, end).
		Scan(&st.AnalysesToday, &st.AvgScoreToday, &st.BestScoreToday)
	if err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM alerts WHERE sent_at >= ? AND sent_at < ?`, start, end).Scan(&st.AlertsToday); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT category, COUNT(*) FROM analyses
		WHERE analyzed_at >= ? AND analyzed_at < ? GROUP BY category`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		st.ByCategoryToday[cat] = n
	}
	return st, rows.Err()
}

// AlertRecord is one sent alert as stored.
type AlertRecord struct {
	ID            int64     `json:"id"`
	Address       string    `json:"address"`
	Symbol        string    `json:"symbol"`
	ScoreCombined float64   `json:"score_combined"`
	Category      string    `json:"category"`
	RiskLevel     string    `json:"risk_level"`
	SentAt        time.Time `json:"sent_at"`
}

func (s *Store) GetRecentAlerts(limit int) ([]AlertRecord, error) {
	rows, err := s.db.Query(`SELECT id, address, symbol, score_combined, category, risk_level, sent_at
		FROM alerts ORDER BY sent_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AlertRecord
	for rows.Next() {
		var a AlertRecord
		if err := rows.Scan(&a.ID, &a.Address, &a.Symbol, &a.ScoreCombined, &a.Category, &a.RiskLevel, &a.SentAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetRecentAnalyses returns the stored JSON blobs, newest first.
func (s *Store) GetRecentAnalyses(limit int) ([]model.AnalysisResult, error) {
	rows, err := s.db.Query(`SELECT result_json FROM analyses ORDER BY analyzed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AnalysisResult
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var r model.AnalysisResult
		if err := json.Unmarshal([]byte(blob), &r); err != nil {
			continue // one corrupt row must not break the listing
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
