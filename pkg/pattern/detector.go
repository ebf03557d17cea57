// Package pattern classifies a fully-analyzed token into a trading pattern by
// structural shape rather than score magnitude. Predicates are checked in a
// fixed priority order and the first match wins.
package pattern

import (
	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// DetectPattern returns the first matching pattern, or UNKNOWN when the token
// fits none. Nil reports simply fail the predicates that need them.
func (d *Detector) DetectPattern(
	token *model.TokenData,
	security *model.SecurityReport,
	liquidity *model.LiquidityReport,
	holders *model.HolderReport,
) model.Category {
	switch {
	case isFastSniper(token):
		return model.CategoryFastSniper
	case isSmartSniper(token, security):
		return model.CategorySmartSniper
	case isMomentum(token):
		return model.CategoryMomentum
	case isSafe(security, liquidity):
		return model.CategorySafe
	case isWhaleAccumulation(token, holders):
		return model.CategoryWhaleAccumulation
	default:
		return model.CategoryUnknown
	}
}

// RiskLevel maps a detected pattern to risk, letting the security score
// split the snipe patterns into medium and high.
func (d *Detector) RiskLevel(pattern model.Category, security *model.SecurityReport) model.RiskLevel {
	secScore := 0.0
	if security != nil {
		secScore = security.OverallScore
	}

	switch pattern {
	case model.CategorySafe:
		return model.RiskLow
	case model.CategoryFastSniper:
		if secScore >= 8 {
			return model.RiskMedium
		}
		return model.RiskHigh
	case model.CategorySmartSniper:
		return model.RiskMedium
	case model.CategoryMomentum:
		if secScore >= 8.5 {
			return model.RiskLow
		}
		return model.RiskMedium
	case model.CategoryWhaleAccumulation:
		if secScore >= 8 {
			return model.RiskMedium
		}
		return model.RiskHigh
	default:
		return model.RiskHigh
	}
}

// Very fresh launch with real but not excessive liquidity, plus either rapid
// holder inflow or a volume spike.
func isFastSniper(t *model.TokenData) bool {
	return t.AgeSeconds <= 120 &&
		t.LiquidityUSD >= 10_000 && t.LiquidityUSD <= 50_000 &&
		(t.HolderGrowthRate >= 15 || t.VolumeChange2Min >= 200)
}

// Slightly older launch that has already proven itself: deeper liquidity,
// strong security and LP protection.
func isSmartSniper(t *model.TokenData, sec *model.SecurityReport) bool {
	if sec == nil {
		return false
	}
	return t.AgeSeconds > 120 && t.AgeSeconds <= 300 &&
		t.LiquidityUSD >= 30_000 && t.LiquidityUSD <= 150_000 &&
		sec.OverallScore >= 8.5 &&
		(sec.LPLocked || sec.LPBurned)
}

// Established token on a sharp price move with continued activity.
func isMomentum(t *model.TokenData) bool {
	return t.AgeSeconds > 300 && t.AgeSeconds <= 1800 &&
		t.PriceChange5Min >= 40 &&
		(t.HolderGrowthRate >= 10 || t.VolumeChange2Min > 0)
}

// Maximal-protection profile: every withdrawal and mint vector closed, holder
// base dispersed.
func isSafe(sec *model.SecurityReport, liq *model.LiquidityReport) bool {
	if sec == nil || sec.OverallScore < 9.0 {
		return false
	}
	if liq != nil && liq.LockedPercent+liq.BurnedPercent < 100 {
		return false
	}
	return sec.MintAuthorityFrozen &&
		sec.FreezeAuthorityRevoked &&
		sec.Top10HoldersPercent < 25
}

// Volume surge with price follow-through and a top-10 concentration in the
// band that suggests deliberate position building rather than a rug setup.
func isWhaleAccumulation(t *model.TokenData, holders *model.HolderReport) bool {
	if holders == nil {
		return false
	}
	return t.VolumeChange2Min >= 300 &&
		t.PriceChange5Min >= 20 &&
		holders.Top10Concentration >= 20 && holders.Top10Concentration <= 40
}
