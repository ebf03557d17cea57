// Package orchestrator runs the pipeline: consume scanner output, fan out the
// analyzers, score, detect the pattern, persist, and decide whether the
// result deserves an alert.
package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Azeflow10/solana-ml-scanner/pkg/analyzer"
	"github.com/Azeflow10/solana-ml-scanner/pkg/config"
	"github.com/Azeflow10/solana-ml-scanner/pkg/db"
	"github.com/Azeflow10/solana-ml-scanner/pkg/ml"
	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
	"github.com/Azeflow10/solana-ml-scanner/pkg/notify"
	"github.com/Azeflow10/solana-ml-scanner/pkg/pattern"
	"github.com/Azeflow10/solana-ml-scanner/pkg/scanner"
	"github.com/Azeflow10/solana-ml-scanner/pkg/scoring"
)

type Orchestrator struct {
	cfg       *config.Config
	security  *analyzer.SecurityAnalyzer
	liquidity *analyzer.LiquidityAnalyzer
	holders   *analyzer.HolderAnalyzer
	engine    *scoring.Engine
	detector  *pattern.Detector
	predictor *ml.Predictor
	store     *db.Store
	notifier  *notify.Manager
	scanners  []scanner.Scanner

	mu          sync.Mutex
	alertDay    string // UTC date of the current counter window
	alertCount  int
	alertsTotal int // lifetime, never reset
}

func New(
	cfg *config.Config,
	security *analyzer.SecurityAnalyzer,
	liquidity *analyzer.LiquidityAnalyzer,
	holders *analyzer.HolderAnalyzer,
	engine *scoring.Engine,
	detector *pattern.Detector,
	predictor *ml.Predictor,
	store *db.Store,
	notifier *notify.Manager,
	scanners []scanner.Scanner,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		security:  security,
		liquidity: liquidity,
		holders:   holders,
		engine:    engine,
		detector:  detector,
		predictor: predictor,
		store:     store,
		notifier:  notifier,
		scanners:  scanners,
		alertDay:  utcDate(time.Now()),
	}
}

// Run starts every scanner plus the daily-summary cron and consumes tokens
// until ctx is done. A failing scanner takes the whole run down so the
// process supervisor restarts cleanly.
func (o *Orchestrator) Run(ctx context.Context) error {
	tokens := make(chan model.TokenData, 256)

	g, ctx := errgroup.WithContext(ctx)
	for _, sc := range o.scanners {
		sc := sc
		g.Go(func() error {
			log.Info().Str("scanner", sc.Name()).Msg("scanner starting")
			return sc.Run(ctx, tokens)
		})
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc("5 0 * * *", func() { o.sendDailySummary(ctx) }); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	g.Go(func() error {
		return o.consume(ctx, tokens)
	})

	return g.Wait()
}

func (o *Orchestrator) consume(ctx context.Context, tokens <-chan model.TokenData) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case token := <-tokens:
			result := o.ProcessToken(ctx, &token)
			if result == nil {
				// Cycle failure: back off before touching the next token so a
				// provider outage does not burn the queue.
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(o.cfg.ScanCooldown):
				}
			}
		}
	}
}

// ProcessToken runs the full pipeline for one token. Never returns an error:
// analyzers degrade internally and a panic anywhere in the pipeline is
// recovered here, so one broken token can never take the consume loop down. A
// nil return (panic, context dead) tells the caller to cool down.
func (o *Orchestrator) ProcessToken(ctx context.Context, token *model.TokenData) (result *model.AnalysisResult) {
	if ctx.Err() != nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("address", token.Address).
				Msg("token pipeline panicked")
			result = nil
		}
	}()
	start := time.Now()

	var (
		sec  *model.SecurityReport
		liq  *model.LiquidityReport
		hold *model.HolderReport
	)

	// Independent analyzers run concurrently, each under its own deadline.
	// They never error, so the group exists purely for the fan-out.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer recoverAnalyzer(token.Address, "security")
		actx, cancel := context.WithTimeout(gctx, o.cfg.AnalyzerTimeout)
		defer cancel()
		sec = o.security.Analyze(actx, token.Address)
		return nil
	})
	g.Go(func() error {
		defer recoverAnalyzer(token.Address, "liquidity")
		actx, cancel := context.WithTimeout(gctx, o.cfg.AnalyzerTimeout)
		defer cancel()
		liq = o.liquidity.Analyze(actx, token.Address, token)
		return nil
	})
	g.Go(func() error {
		defer recoverAnalyzer(token.Address, "holders")
		actx, cancel := context.WithTimeout(gctx, o.cfg.AnalyzerTimeout)
		defer cancel()
		hold = o.holders.Analyze(actx, token.Address, token)
		return nil
	})
	_ = g.Wait()

	var pred ml.Prediction
	if o.predictor.Enabled() {
		pred = o.predictor.Predict(ml.BuildFeatures(token, sec, liq, hold))
	}

	sc := o.engine.CalculateScore(token, sec, liq, hold, pred.Score, pred.Confidence)

	// The detector's structural read wins over the engine's score banding.
	pat := o.detector.DetectPattern(token, sec, liq, hold)
	sc.Category = pat
	sc.Pattern = pat
	sc.RiskLevel = o.detector.RiskLevel(pat, sec)

	result = &model.AnalysisResult{
		Token:      *token,
		Security:   sec,
		Liquidity:  liq,
		Holders:    hold,
		Scoring:    &sc,
		AnalyzedAt: time.Now().UTC(),
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
	}

	if o.store != nil {
		if err := o.store.SaveAnalysis(result); err != nil {
			log.Error().Err(err).Str("address", token.Address).Msg("persist failed")
		}
	}

	log.Info().Str("address", token.Address).Str("symbol", token.Symbol).
		Float64("score", sc.ScoreCombined).Str("pattern", string(pat)).
		Str("risk", string(sc.RiskLevel)).Float64("duration_ms", result.DurationMS).
		Msg("🔍 token analyzed")

	if o.shouldAlert(result) && o.notifier.SendAlert(ctx, result) {
		o.recordAlert()
		if o.store != nil {
			if err := o.store.SaveAlert(result, time.Now()); err != nil {
				log.Error().Err(err).Str("address", token.Address).Msg("alert persist failed")
			}
		}
	}

	return result
}

// shouldAlert is the admission gate: score floor, ML confidence floor when a
// prediction was used, category filter, daily cap.
func (o *Orchestrator) shouldAlert(r *model.AnalysisResult) bool {
	if !o.notifier.HasChannels() {
		return false
	}
	if !r.ShouldAlert(o.cfg.Alerts.MinScore) {
		return false
	}
	if r.Scoring.MLConfidence > 0 && r.Scoring.MLConfidence < o.cfg.Alerts.MinMLConfidence {
		return false
	}
	if !o.categoryAllowed(r.Scoring.Category) {
		return false
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetDailyLocked(time.Now())
	if o.alertCount >= o.cfg.Alerts.MaxPerDay {
		log.Debug().Str("address", r.Token.Address).Int("cap", o.cfg.Alerts.MaxPerDay).
			Msg("daily alert cap reached, suppressing")
		return false
	}
	return true
}

// categoryAllowed: an absent filter map allows everything; keys are matched
// case-insensitively against the canonical upper-case category names.
func (o *Orchestrator) categoryAllowed(cat model.Category) bool {
	if len(o.cfg.Alerts.Categories) == 0 {
		return true
	}
	allowed, ok := o.cfg.Alerts.Categories[strings.ToUpper(string(cat))]
	if !ok {
		return true // unlisted categories default to allowed
	}
	return allowed
}

func (o *Orchestrator) recordAlert() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetDailyLocked(time.Now())
	o.alertCount++
	o.alertsTotal++
}

// AlertsSentTotal counts every admitted alert since startup.
func (o *Orchestrator) AlertsSentTotal() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.alertsTotal
}

// resetDailyLocked zeroes the counter exactly once per UTC date advance.
// Callers hold o.mu.
func (o *Orchestrator) resetDailyLocked(now time.Time) {
	if day := utcDate(now); day != o.alertDay {
		log.Info().Str("date", day).Int("sent_yesterday", o.alertCount).
			Msg("daily alert counter reset")
		o.alertDay = day
		o.alertCount = 0
	}
}

// AlertsSentToday is exposed for the dashboard.
func (o *Orchestrator) AlertsSentToday() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetDailyLocked(time.Now())
	return o.alertCount
}

func (o *Orchestrator) AlertsRemainingToday() int {
	remaining := o.cfg.Alerts.MaxPerDay - o.AlertsSentToday()
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (o *Orchestrator) sendDailySummary(ctx context.Context) {
	if o.store == nil || !o.notifier.HasChannels() {
		return
	}
	// The 00:05 run reports on the day that just ended, so the stats window
	// must be yesterday's, not the five-minute-old current day.
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	st, err := o.store.GetStatsForDay(yesterday)
	if err != nil {
		log.Error().Err(err).Msg("daily summary stats query failed")
		return
	}
	o.notifier.SendDailySummary(ctx, st, yesterday)
}

// recoverAnalyzer confines an analyzer panic to its goroutine. Its report
// stays nil and scoring degrades the same way a failed fetch would.
func recoverAnalyzer(address, name string) {
	if rec := recover(); rec != nil {
		log.Error().Interface("panic", rec).Str("analyzer", name).Str("address", address).
			Msg("analyzer panicked")
	}
}

func utcDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
