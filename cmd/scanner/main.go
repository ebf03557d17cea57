package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Azeflow10/solana-ml-scanner/pkg/analyzer"
	"github.com/Azeflow10/solana-ml-scanner/pkg/config"
	"github.com/Azeflow10/solana-ml-scanner/pkg/dashboard"
	"github.com/Azeflow10/solana-ml-scanner/pkg/db"
	"github.com/Azeflow10/solana-ml-scanner/pkg/ml"
	"github.com/Azeflow10/solana-ml-scanner/pkg/notify"
	"github.com/Azeflow10/solana-ml-scanner/pkg/orchestrator"
	"github.com/Azeflow10/solana-ml-scanner/pkg/pattern"
	"github.com/Azeflow10/solana-ml-scanner/pkg/scanner"
	"github.com/Azeflow10/solana-ml-scanner/pkg/scoring"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	defer store.Close()

	client := &http.Client{Timeout: cfg.RequestTimeout}

	engine, err := scoring.NewEngine(cfg.Scoring)
	if err != nil {
		log.Fatal().Err(err).Msg("scoring weights invalid")
	}

	var channels []notify.Notifier
	if cfg.TelegramBotToken != "" {
		channels = append(channels, notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, client))
	}
	if cfg.DiscordWebhookURL != "" {
		channels = append(channels, notify.NewDiscordNotifier(cfg.DiscordWebhookURL, client))
	}
	notifier := notify.NewManager(channels...)

	scanners := []scanner.Scanner{
		scanner.NewPumpFunScanner(cfg.PumpPortalWS, cfg.DexScreenerAPI, client),
		scanner.NewDexScreenerScanner(cfg.DexScreenerAPI, client, cfg.ScanInterval),
		scanner.NewRaydiumScanner(client, cfg.ScanInterval*2),
	}

	orch := orchestrator.New(
		cfg,
		analyzer.NewSecurityAnalyzer(cfg),
		analyzer.NewLiquidityAnalyzer(cfg),
		analyzer.NewHolderAnalyzer(cfg),
		engine,
		pattern.NewDetector(),
		ml.NewPredictor(cfg.ML.Enabled),
		store,
		notifier,
		scanners,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigCh; log.Info().Msg("shutting down..."); cancel() }()

	errCh := make(chan error, 2)
	go func() { errCh <- orch.Run(ctx) }()

	dash := dashboard.New(store, orch, cfg.DashboardPort)
	go func() { errCh <- dash.Run() }()

	printBanner(cfg, len(channels))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("fatal error")
		}
	}
	log.Info().Msg("goodbye 👋")
}

func printBanner(cfg *config.Config, channelCount int) {
	cyan := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	fmt.Println("\n" + strings.Repeat("═", 60))
	cyan.Println("  🎯 SOLANA ML SCANNER - RUNNING")
	fmt.Println(strings.Repeat("═", 60))
	fmt.Printf("  Sources:     pump.fun (ws), dexscreener, raydium\n")
	fmt.Printf("  Min score:   %.0f  Daily cap: %d alerts\n", cfg.Alerts.MinScore, cfg.Alerts.MaxPerDay)
	mlStatus := "❌ disabled"
	if cfg.ML.Enabled {
		mlStatus = "✅ heuristic model"
	}
	fmt.Printf("  ML scoring:  %s\n", mlStatus)
	alertStatus := "❌ none configured (set TELEGRAM_BOT_TOKEN / DISCORD_WEBHOOK_URL)"
	if channelCount > 0 {
		alertStatus = fmt.Sprintf("✅ %d channel(s)", channelCount)
	}
	fmt.Printf("  Alerts:      %s\n", alertStatus)
	fmt.Printf("  Dashboard:   http://localhost:%d\n", cfg.DashboardPort)
	dim.Printf("  DB: %s\n", cfg.DBPath)
	fmt.Println(strings.Repeat("═", 60) + "\n")
}
