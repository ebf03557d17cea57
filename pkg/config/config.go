package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config combines environment variables (secrets, endpoints) with config.yaml
// (weights, thresholds, alert gating). Env wins for credentials; yaml wins for
// tunables so a deployment can reweigh scoring without touching the env.
type Config struct {
	// Telegram
	TelegramBotToken string
	TelegramChatID   string

	// Discord (optional)
	DiscordWebhookURL string

	// Data sources
	HeliusAPIKey   string
	RugCheckAPI    string
	DexScreenerAPI string
	PumpPortalWS   string

	// Intervals
	ScanInterval     time.Duration
	ScanCooldown     time.Duration // sleep after a failed scan cycle
	AnalyzerTimeout  time.Duration // per-analyzer call bound
	AnalyzerCacheTTL time.Duration

	// Analyzer retry policy
	MaxRetries     int
	RequestTimeout time.Duration

	// DB
	DBPath string

	// Dashboard
	DashboardPort int

	Scoring Scoring
	Alerts  Alerts
	ML      ML
}

// Scoring holds the rule-component weights and the rule/ML fusion weights.
type Scoring struct {
	SecurityWeight  float64 `yaml:"security_weight"`
	LiquidityWeight float64 `yaml:"liquidity_weight"`
	HolderWeight    float64 `yaml:"holder_weight"`
	MomentumWeight  float64 `yaml:"momentum_weight"`
	SocialWeight    float64 `yaml:"social_weight"`
	AgeWeight       float64 `yaml:"age_weight"`

	RuleWeight float64 `yaml:"rule_weight"`
	MLWeight   float64 `yaml:"ml_weight"`
}

// Alerts holds the orchestrator's admission gating knobs.
type Alerts struct {
	MinScore        float64         `yaml:"min_score"`
	MaxPerDay       int             `yaml:"max_per_day"`
	MinMLConfidence float64         `yaml:"min_ml_confidence"`
	Categories      map[string]bool `yaml:"categories"` // empty map = allow all
}

type ML struct {
	Enabled bool `yaml:"enabled"`
}

// yamlConfig mirrors the config.yaml layout of the original deployment.
type yamlConfig struct {
	Scoring Scoring `yaml:"scoring"`
	Alerts  Alerts  `yaml:"alerts"`
	ML      ML      `yaml:"machine_learning"`
}

// Load reads .env (if present), the environment and config.yaml.
func Load() (*Config, error) {
	return LoadPath(envOr("CONFIG_PATH", "config.yaml"))
}

func LoadPath(yamlPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:    os.Getenv("TELEGRAM_CHAT_ID"),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),

		HeliusAPIKey:   os.Getenv("HELIUS_API_KEY"),
		RugCheckAPI:    envOr("RUGCHECK_API", "https://api.rugcheck.xyz/v1"),
		DexScreenerAPI: envOr("DEXSCREENER_API", "https://api.dexscreener.com"),
		PumpPortalWS:   envOr("PUMPPORTAL_WS", "wss://pumpportal.fun/api/data"),

		ScanInterval:     time.Duration(envInt("SCAN_INTERVAL", 30)) * time.Second,
		ScanCooldown:     time.Duration(envInt("SCAN_COOLDOWN", 60)) * time.Second,
		AnalyzerTimeout:  time.Duration(envInt("ANALYZER_TIMEOUT", 15)) * time.Second,
		AnalyzerCacheTTL: time.Duration(envInt("ANALYZER_CACHE_TTL", 30)) * time.Second,

		MaxRetries:     envInt("ANALYZER_MAX_RETRIES", 3),
		RequestTimeout: time.Duration(envInt("REQUEST_TIMEOUT", 10)) * time.Second,

		DBPath:        envOr("DB_PATH", "data/scanner.db"),
		DashboardPort: envInt("DASHBOARD_PORT", 8080),

		Scoring: DefaultScoring(),
		Alerts:  DefaultAlerts(),
		ML:      ML{Enabled: true},
	}
	cfg.Alerts.MinScore = envFloat("ALERT_MIN_SCORE", cfg.Alerts.MinScore)
	cfg.Alerts.MaxPerDay = envInt("ALERT_MAX_PER_DAY", cfg.Alerts.MaxPerDay)

	if err := cfg.applyYAML(yamlPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // yaml is optional; defaults stand
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	yc := yamlConfig{Scoring: c.Scoring, Alerts: c.Alerts, ML: c.ML}
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	c.Scoring = yc.Scoring
	c.Alerts = yc.Alerts
	c.Alerts.Categories = normalizeCategories(yc.Alerts.Categories)
	c.ML = yc.ML
	return nil
}

// DefaultScoring returns the reference weights. The six rule weights sum to
// exactly 1.0; Validate enforces that invariant after any reweigh.
func DefaultScoring() Scoring {
	return Scoring{
		SecurityWeight:  0.30,
		LiquidityWeight: 0.20,
		HolderWeight:    0.15,
		MomentumWeight:  0.20,
		SocialWeight:    0.10,
		AgeWeight:       0.05,
		RuleWeight:      0.60,
		MLWeight:        0.40,
	}
}

func DefaultAlerts() Alerts {
	return Alerts{
		MinScore:        70.0,
		MaxPerDay:       15,
		MinMLConfidence: 0.50,
	}
}

// ComponentWeightSum is checked by Validate and again by the scoring engine.
func (s Scoring) ComponentWeightSum() float64 {
	return s.SecurityWeight + s.LiquidityWeight + s.HolderWeight +
		s.MomentumWeight + s.SocialWeight + s.AgeWeight
}

func (c *Config) Validate() error {
	if c.TelegramBotToken != "" && c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN set but TELEGRAM_CHAT_ID missing")
	}
	if sum := c.Scoring.ComponentWeightSum(); sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("scoring component weights sum to %.4f, want 1.0", sum)
	}
	if c.Alerts.MaxPerDay <= 0 {
		return fmt.Errorf("alerts.max_per_day must be positive")
	}
	if c.Alerts.MinScore < 0 || c.Alerts.MinScore > 100 {
		return fmt.Errorf("alerts.min_score must be within [0,100]")
	}
	return nil
}

func normalizeCategories(in map[string]bool) map[string]bool {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
