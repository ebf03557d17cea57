package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

func TestDetectPattern_FastSniper(t *testing.T) {
	d := NewDetector()
	token := &model.TokenData{
		AgeSeconds:       60,
		LiquidityUSD:     30_000,
		HolderGrowthRate: 20,
	}

	got := d.DetectPattern(token, nil, nil, nil)
	assert.Equal(t, model.CategoryFastSniper, got)
}

func TestDetectPattern_FastSniperViaVolumeSpike(t *testing.T) {
	d := NewDetector()
	token := &model.TokenData{
		AgeSeconds:       90,
		LiquidityUSD:     15_000,
		HolderGrowthRate: 2,
		VolumeChange2Min: 250,
	}

	assert.Equal(t, model.CategoryFastSniper, d.DetectPattern(token, nil, nil, nil))
}

func TestDetectPattern_SmartSniper(t *testing.T) {
	d := NewDetector()
	token := &model.TokenData{AgeSeconds: 200, LiquidityUSD: 80_000}
	sec := &model.SecurityReport{OverallScore: 9.0, LPLocked: true}

	assert.Equal(t, model.CategorySmartSniper, d.DetectPattern(token, sec, nil, nil))
}

func TestDetectPattern_SmartSniperNeedsLPProtection(t *testing.T) {
	d := NewDetector()
	token := &model.TokenData{AgeSeconds: 200, LiquidityUSD: 80_000}
	sec := &model.SecurityReport{OverallScore: 9.0} // no lock, no burn

	assert.Equal(t, model.CategoryUnknown, d.DetectPattern(token, sec, nil, nil))
}

func TestDetectPattern_Momentum(t *testing.T) {
	d := NewDetector()
	token := &model.TokenData{
		AgeSeconds:       900,
		PriceChange5Min:  55,
		HolderGrowthRate: 12,
	}

	assert.Equal(t, model.CategoryMomentum, d.DetectPattern(token, nil, nil, nil))
}

func TestDetectPattern_Safe(t *testing.T) {
	d := NewDetector()
	token := &model.TokenData{AgeSeconds: 3600, LiquidityUSD: 200_000}
	sec := &model.SecurityReport{
		OverallScore:           9.5,
		MintAuthorityFrozen:    true,
		FreezeAuthorityRevoked: true,
		Top10HoldersPercent:    15,
	}
	liq := &model.LiquidityReport{LockedPercent: 60, BurnedPercent: 40}

	assert.Equal(t, model.CategorySafe, d.DetectPattern(token, sec, liq, nil))
}

func TestDetectPattern_SafeRejectsPartialLPCover(t *testing.T) {
	d := NewDetector()
	token := &model.TokenData{AgeSeconds: 3600}
	sec := &model.SecurityReport{
		OverallScore:           9.5,
		MintAuthorityFrozen:    true,
		FreezeAuthorityRevoked: true,
		Top10HoldersPercent:    15,
	}
	liq := &model.LiquidityReport{LockedPercent: 50, BurnedPercent: 20}

	assert.Equal(t, model.CategoryUnknown, d.DetectPattern(token, sec, liq, nil))
}

func TestDetectPattern_WhaleAccumulation(t *testing.T) {
	d := NewDetector()
	token := &model.TokenData{
		AgeSeconds:       4000,
		VolumeChange2Min: 400,
		PriceChange5Min:  25,
	}
	holders := &model.HolderReport{Top10Concentration: 30}

	assert.Equal(t, model.CategoryWhaleAccumulation, d.DetectPattern(token, nil, nil, holders))
}

func TestDetectPattern_FastSniperWinsOverSafe(t *testing.T) {
	// A token matching both predicates takes the earlier one.
	d := NewDetector()
	token := &model.TokenData{
		AgeSeconds:       60,
		LiquidityUSD:     30_000,
		HolderGrowthRate: 20,
	}
	sec := &model.SecurityReport{
		OverallScore:           9.5,
		MintAuthorityFrozen:    true,
		FreezeAuthorityRevoked: true,
		Top10HoldersPercent:    15,
	}

	assert.Equal(t, model.CategoryFastSniper, d.DetectPattern(token, sec, nil, nil))
}

func TestDetectPattern_Unknown(t *testing.T) {
	d := NewDetector()
	assert.Equal(t, model.CategoryUnknown, d.DetectPattern(&model.TokenData{}, nil, nil, nil))
}

func TestRiskLevel_Mapping(t *testing.T) {
	d := NewDetector()
	strong := &model.SecurityReport{OverallScore: 9.0}
	weak := &model.SecurityReport{OverallScore: 6.0}

	cases := []struct {
		name    string
		pattern model.Category
		sec     *model.SecurityReport
		want    model.RiskLevel
	}{
		{"safe_is_low", model.CategorySafe, weak, model.RiskLow},
		{"fast_strong_sec", model.CategoryFastSniper, strong, model.RiskMedium},
		{"fast_weak_sec", model.CategoryFastSniper, weak, model.RiskHigh},
		{"fast_no_sec", model.CategoryFastSniper, nil, model.RiskHigh},
		{"smart_always_medium", model.CategorySmartSniper, weak, model.RiskMedium},
		{"momentum_strong_sec", model.CategoryMomentum, strong, model.RiskLow},
		{"momentum_weak_sec", model.CategoryMomentum, weak, model.RiskMedium},
		{"whale_strong_sec", model.CategoryWhaleAccumulation, strong, model.RiskMedium},
		{"whale_weak_sec", model.CategoryWhaleAccumulation, weak, model.RiskHigh},
		{"unknown_is_high", model.CategoryUnknown, strong, model.RiskHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, d.RiskLevel(tc.pattern, tc.sec))
		})
	}
}
