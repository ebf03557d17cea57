// Package model holds the value records passed between scanners, analyzers,
// the scoring engine and the notification layer. Everything here is plain
// data: produced once, read everywhere, never mutated after analysis except
// for the documented pattern-detector overwrite on ScoringResult.
package model

import "time"

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type Category string

const (
	CategoryFastSniper        Category = "FAST_SNIPER"
	CategorySmartSniper       Category = "SMART_SNIPER"
	CategoryMomentum          Category = "MOMENTUM"
	CategorySafe              Category = "SAFE"
	CategoryWhaleAccumulation Category = "WHALE_ACCUMULATION"
	CategoryUnknown           Category = "UNKNOWN"
)

// TokenData is a point-in-time snapshot of a candidate token as produced by a
// scanner. Address is the unique key; dedup of already-seen addresses happens
// scanner-side.
type TokenData struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`

	LiquidityUSD float64 `json:"liquidity_usd"`
	LiquiditySOL float64 `json:"liquidity_sol"`
	MarketCap    float64 `json:"market_cap"`
	PriceUSD     float64 `json:"price_usd"`
	Volume24h    float64 `json:"volume_24h"`

	Holders    int   `json:"holders"`
	AgeSeconds int64 `json:"age_seconds"`

	PriceChange5Min  float64 `json:"price_change_5min"`
	PriceChange1H    float64 `json:"price_change_1h"`
	VolumeChange2Min float64 `json:"volume_change_2min"`
	HolderGrowthRate float64 `json:"holder_growth_rate"` // holders per minute

	Source    string    `json:"source"` // pumpfun, raydium, dexscreener
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// SecurityReport is the result of the RugCheck-backed security analysis.
// OverallScore is on a 0-10 scale, clamped at both ends.
type SecurityReport struct {
	OverallScore           float64  `json:"overall_score"`
	MintAuthorityFrozen    bool     `json:"mint_authority_frozen"`
	FreezeAuthorityRevoked bool     `json:"freeze_authority_revoked"`
	Top10HoldersPercent    float64  `json:"top_10_holders_percent"`
	LPLocked               bool     `json:"lp_locked"`
	LPBurned               bool     `json:"lp_burned"`
	KnownRisks             []string `json:"known_risks,omitempty"`
	IsHoneypot             bool     `json:"is_honeypot"`
	CanSell                bool     `json:"can_sell"`

	// Degraded marks reports built from conservative defaults after an
	// upstream failure, as opposed to a report the provider actually served.
	Degraded bool `json:"degraded,omitempty"`
}

// LiquidityReport describes pool depth and withdrawal protection.
// LockedPercent and BurnedPercent are each 0-100 and do not have to sum to 100.
type LiquidityReport struct {
	TotalLiquidityUSD float64 `json:"total_liquidity_usd"`
	LiquiditySOL      float64 `json:"liquidity_sol"`
	LockedPercent     float64 `json:"lp_locked_percent"`
	BurnedPercent     float64 `json:"lp_burned_percent"`
	PriceImpact1KUSD  float64 `json:"price_impact_1k_usd"`
	PriceImpact5KUSD  float64 `json:"price_impact_5k_usd"`
	StabilityScore    float64 `json:"liquidity_stability_score"` // 0-100
	Degraded          bool    `json:"degraded,omitempty"`
}

// HolderReport describes holder distribution. Concentrations are percentages.
type HolderReport struct {
	TotalHolders       int     `json:"total_holders"`
	Top10Concentration float64 `json:"top_10_concentration"`
	Top20Concentration float64 `json:"top_20_concentration"`
	DevWalletPercent   float64 `json:"dev_wallet_percent"`
	GrowthRatePerMin   float64 `json:"growth_rate_per_min"`
	DistributionScore  float64 `json:"distribution_score"` // 0-100
	Degraded           bool    `json:"degraded,omitempty"`
}

// ScoringResult is produced once by the scoring engine and then mutated
// exactly once by the orchestrator, which overwrites Category, Pattern and
// RiskLevel with the pattern detector's answer. Scoring computes magnitude,
// pattern detection computes shape.
type ScoringResult struct {
	ScoreCombined float64 `json:"score_combined"` // 0-100
	ScoreRules    float64 `json:"score_rules"`    // 0-100
	ScoreML       float64 `json:"score_ml"`       // 0-100, zero when ML unused

	SecurityScore  float64 `json:"security_score"`
	LiquidityScore float64 `json:"liquidity_score"`
	HolderScore    float64 `json:"holder_score"`
	MomentumScore  float64 `json:"momentum_score"`
	SocialScore    float64 `json:"social_score"`
	AgeScore       float64 `json:"age_score"`

	RiskLevel RiskLevel `json:"risk_level"`
	Category  Category  `json:"category"`
	Pattern   Category  `json:"pattern"`

	MLConfidence float64 `json:"ml_confidence"` // 0-1, zero when ML unused
}

// AnalysisResult aggregates one token observation with its analyzer reports
// and scoring. Nil report pointers represent partial upstream failure.
type AnalysisResult struct {
	Token     TokenData        `json:"token"`
	Security  *SecurityReport  `json:"security,omitempty"`
	Liquidity *LiquidityReport `json:"liquidity,omitempty"`
	Holders   *HolderReport    `json:"holders,omitempty"`
	Scoring   *ScoringResult   `json:"scoring,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
	DurationMS float64   `json:"analysis_duration_ms"`
	Errors     []string  `json:"errors,omitempty"`
}

// IsComplete reports whether all three analyzers and scoring produced output.
func (r *AnalysisResult) IsComplete() bool {
	return r.Security != nil && r.Liquidity != nil && r.Holders != nil && r.Scoring != nil
}

// ShouldAlert is the raw score check; the orchestrator layers daily caps and
// category filters on top of it.
func (r *AnalysisResult) ShouldAlert(minScore float64) bool {
	if !r.IsComplete() || r.Scoring == nil {
		return false
	}
	return r.Scoring.ScoreCombined >= minScore
}
