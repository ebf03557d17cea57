// Package scoring fuses analyzer outputs and an optional ML prediction into a
// single 0-100 opportunity score with a category and risk level. The engine is
// a pure function of its inputs: absent reports degrade to neutral component
// scores, never to an error, so every token gets scored even under partial
// upstream failure.
package scoring

import (
	"fmt"

	"github.com/Azeflow10/solana-ml-scanner/pkg/config"
	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

// mlConfidenceFloor gates ML fusion: predictions below this confidence are
// discarded entirely and the result reports no ML contribution at all.
const mlConfidenceFloor = 0.50

type Engine struct {
	weights config.Scoring
}

// NewEngine validates that the six component weights sum to 1.0. A reweighed
// config that breaks the invariant is a deployment error, not something to
// silently renormalize.
func NewEngine(weights config.Scoring) (*Engine, error) {
	if sum := weights.ComponentWeightSum(); sum < 0.999 || sum > 1.001 {
		return nil, fmt.Errorf("component weights sum to %.4f, want 1.0", sum)
	}
	return &Engine{weights: weights}, nil
}

// CalculateScore produces the full scoring breakdown for one token. mlScore is
// on the 0-100 scale, mlConfidence on 0-1; pass zeros when ML is unused.
func (e *Engine) CalculateScore(
	token *model.TokenData,
	security *model.SecurityReport,
	liquidity *model.LiquidityReport,
	holders *model.HolderReport,
	mlScore, mlConfidence float64,
) model.ScoringResult {
	secScore := securityComponent(security)
	liqScore := liquidityComponent(token, liquidity)
	holdScore := holderComponent(holders)
	momScore := momentumComponent(token)
	socScore := socialComponent(token)
	ageScore := ageComponent(token.AgeSeconds)

	w := e.weights
	ruleScore := clamp(100*(w.SecurityWeight*secScore+
		w.LiquidityWeight*liqScore+
		w.HolderWeight*holdScore+
		w.MomentumWeight*momScore+
		w.SocialWeight*socScore+
		w.AgeWeight*ageScore), 0, 100)

	// ML fusion gate: a score the model is not confident in contributes
	// nothing and is reported as exactly zero.
	combined := ruleScore
	if mlScore > 0 && mlConfidence >= mlConfidenceFloor {
		combined = clamp(w.RuleWeight*ruleScore+w.MLWeight*mlScore, 0, 100)
	} else {
		mlScore, mlConfidence = 0, 0
	}

	category := e.categorize(token, security, combined)
	risk := riskLevel(category, security, secScore)

	return model.ScoringResult{
		ScoreCombined:  combined,
		ScoreRules:     ruleScore,
		ScoreML:        mlScore,
		SecurityScore:  secScore * 100,
		LiquidityScore: liqScore * 100,
		HolderScore:    holdScore * 100,
		MomentumScore:  momScore * 100,
		SocialScore:    socScore * 100,
		AgeScore:       ageScore * 100,
		RiskLevel:      risk,
		Category:       category,
		Pattern:        category,
		MLConfidence:   mlConfidence,
	}
}

// securityComponent: 0.5 neutral when the report is absent; a confirmed
// honeypot forces exactly 0 regardless of everything else.
func securityComponent(r *model.SecurityReport) float64 {
	if r == nil {
		return 0.5
	}
	if r.IsHoneypot {
		return 0
	}

	score := r.OverallScore / 10

	if r.MintAuthorityFrozen {
		score += 0.1
	} else {
		score -= 0.2
	}
	if r.FreezeAuthorityRevoked {
		score += 0.1
	} else {
		score -= 0.2
	}
	if r.LPLocked || r.LPBurned {
		score += 0.15
	} else {
		score -= 0.3
	}
	if r.Top10HoldersPercent < 35 {
		score += 0.1
	} else if r.Top10HoldersPercent > 50 {
		score -= 0.2
	}

	return clamp(score, 0, 1)
}

// liquidityComponent prefers the analyzer's depth figure when it is deeper
// than the scan-time observation, then rewards the acceptance band.
func liquidityComponent(token *model.TokenData, r *model.LiquidityReport) float64 {
	liq := token.LiquidityUSD
	if r != nil && r.TotalLiquidityUSD > liq {
		liq = r.TotalLiquidityUSD
	}

	score := 0.0
	switch {
	case liq >= 10_000 && liq <= 300_000:
		score += 0.5
		if liq >= 30_000 && liq <= 150_000 {
			score += 0.2
		}
	case liq < 10_000:
		score += 0.2 // too thin
	default:
		score += 0.3 // excess but viable
	}

	if r != nil {
		score += (r.LockedPercent + r.BurnedPercent) / 100 * 0.3
	}

	return clamp(score, 0, 1)
}

func holderComponent(r *model.HolderReport) float64 {
	if r == nil {
		return 0.5
	}

	score := 0.0
	switch {
	case r.TotalHolders >= 200:
		score += 0.4
	case r.TotalHolders >= 100:
		score += 0.3
	case r.TotalHolders >= 50:
		score += 0.2
	case r.TotalHolders >= 15:
		score += 0.1
	}

	switch {
	case r.Top10Concentration < 25:
		score += 0.3
	case r.Top10Concentration < 35:
		score += 0.2
	case r.Top10Concentration < 50:
		score += 0.1
	}

	switch {
	case r.GrowthRatePerMin >= 20:
		score += 0.3
	case r.GrowthRatePerMin >= 10:
		score += 0.2
	case r.GrowthRatePerMin >= 5:
		score += 0.1
	}

	return clamp(score, 0, 1)
}

func momentumComponent(token *model.TokenData) float64 {
	score := 0.0

	switch {
	case token.VolumeChange2Min >= 300:
		score += 0.4
	case token.VolumeChange2Min >= 200:
		score += 0.3
	case token.VolumeChange2Min >= 100:
		score += 0.2
	case token.VolumeChange2Min >= 50:
		score += 0.1
	}

	switch {
	case token.PriceChange5Min >= 40:
		score += 0.3
	case token.PriceChange5Min >= 20:
		score += 0.2
	case token.PriceChange5Min >= 10:
		score += 0.1
	case token.PriceChange5Min < 0:
		score -= 0.2
	}

	switch {
	case token.PriceChange1H >= 100:
		score += 0.3
	case token.PriceChange1H >= 50:
		score += 0.2
	case token.PriceChange1H >= 25:
		score += 0.1
	}

	return clamp(score, 0, 1)
}

// socialComponent is a provisional proxy: 24h volume stands in for interest
// until real social-signal ingestion exists.
func socialComponent(token *model.TokenData) float64 {
	score := 0.5
	switch {
	case token.Volume24h >= 100_000:
		score += 0.3
	case token.Volume24h >= 50_000:
		score += 0.2
	case token.Volume24h >= 10_000:
		score += 0.1
	}
	return clamp(score, 0, 1)
}

// ageComponent is a pure step function favoring the first minutes after
// launch; no interpolation between steps.
func ageComponent(ageSeconds int64) float64 {
	switch {
	case ageSeconds <= 120:
		return 1.0
	case ageSeconds <= 300:
		return 0.9
	case ageSeconds <= 600:
		return 0.7
	case ageSeconds <= 1800:
		return 0.5
	case ageSeconds <= 3600:
		return 0.3
	default:
		return 0.1
	}
}

// categorize is first-match-wins over structural criteria, then falls through
// to plain score banding. The banding reuses category labels as score tiers
// without the structural checks; the pattern detector's independent pass is
// what ultimately reaches the user, so this stays as the stored breakdown.
func (e *Engine) categorize(token *model.TokenData, security *model.SecurityReport, combined float64) model.Category {
	lpSecured := security != nil && (security.LPLocked || security.LPBurned)

	switch {
	case security != nil && security.OverallScore >= 9.0 && combined >= 70 && lpSecured:
		return model.CategorySafe
	case token.AgeSeconds <= 120 && combined >= 70:
		return model.CategoryFastSniper
	case token.AgeSeconds > 120 && token.AgeSeconds <= 300 && combined >= 75 &&
		security != nil && security.OverallScore >= 8.5:
		return model.CategorySmartSniper
	case token.PriceChange5Min >= 40 && combined >= 70:
		return model.CategoryMomentum
	}

	switch {
	case combined >= 80:
		return model.CategoryFastSniper
	case combined >= 70:
		return model.CategorySmartSniper
	case combined >= 60:
		return model.CategoryMomentum
	default:
		return model.CategorySafe
	}
}

// riskLevel derives risk from the security component with category floors and
// overriding penalties.
func riskLevel(category model.Category, security *model.SecurityReport, secComponent float64) model.RiskLevel {
	if security != nil && security.IsHoneypot {
		return model.RiskHigh
	}
	if category == model.CategorySafe {
		return model.RiskLow
	}

	var risk model.RiskLevel
	switch {
	case secComponent >= 0.8:
		risk = model.RiskLow
	case secComponent >= 0.6:
		risk = model.RiskMedium
	default:
		risk = model.RiskHigh
	}

	// Fast snipes are never low risk: the structure is too young to trust.
	if category == model.CategoryFastSniper && risk == model.RiskLow {
		risk = model.RiskMedium
	}

	if security != nil {
		if risk == model.RiskLow && (!security.MintAuthorityFrozen || !security.FreezeAuthorityRevoked) {
			risk = model.RiskMedium
		}
		if security.Top10HoldersPercent > 50 && risk == model.RiskLow {
			risk = model.RiskMedium
		}
	}

	return risk
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
