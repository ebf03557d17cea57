// Package ml provides the feature extraction and the placeholder prediction
// model. The feature vector layout is stable so recorded analyses remain
// usable as training data once a real model replaces the heuristic.
package ml

import (
	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

// Feature names, in vector order. Kept in one place so the ordering cannot
// drift between extraction and any future model export.
var FeatureNames = []string{
	"liquidity_usd",
	"market_cap",
	"holders",
	"age_seconds",
	"price_change_5min",
	"volume_24h",
	"rugcheck_score",
	"top_10_concentration",
	"liquidity_stability",
	"distribution_score",
}

// Prediction is the model output. Score is 0-100, Confidence 0-1. A zero
// value means "no usable prediction" and the scoring engine treats it as such.
type Prediction struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// BuildFeatures flattens a token and its reports into the fixed vector.
// Missing reports contribute zeros; the heuristic and any trained model must
// tolerate that.
func BuildFeatures(
	token *model.TokenData,
	security *model.SecurityReport,
	liquidity *model.LiquidityReport,
	holders *model.HolderReport,
) []float64 {
	f := make([]float64, len(FeatureNames))
	f[0] = token.LiquidityUSD
	f[1] = token.MarketCap
	f[2] = float64(token.Holders)
	f[3] = float64(token.AgeSeconds)
	f[4] = token.PriceChange5Min
	f[5] = token.Volume24h

	if security != nil {
		f[6] = security.OverallScore
		f[7] = security.Top10HoldersPercent
	}
	if liquidity != nil {
		f[8] = liquidity.StabilityScore
	}
	if holders != nil {
		f[9] = holders.DistributionScore
	}
	return f
}

// Predictor is the stand-in model: a transparent heuristic over the feature
// vector. It deliberately caps its own confidence so rule scoring always
// dominates the fusion.
type Predictor struct {
	enabled bool
}

func NewPredictor(enabled bool) *Predictor {
	return &Predictor{enabled: enabled}
}

func (p *Predictor) Enabled() bool { return p.enabled }

// Predict scores the feature vector. Disabled predictors return the zero
// Prediction, which downstream reads as "ML unused".
func (p *Predictor) Predict(features []float64) Prediction {
	if !p.enabled || len(features) != len(FeatureNames) {
		return Prediction{}
	}

	liq := features[0]
	age := features[3]
	p5 := features[4]
	rug := features[6]
	top10 := features[7]
	stability := features[8]
	distribution := features[9]

	score := 40.0
	known := 3 // features the heuristic could actually read

	switch {
	case liq >= 30_000 && liq <= 150_000:
		score += 12
	case liq >= 10_000:
		score += 6
	}

	switch {
	case age <= 300:
		score += 8
	case age <= 1800:
		score += 4
	}

	switch {
	case p5 >= 40:
		score += 10
	case p5 >= 10:
		score += 5
	case p5 < 0:
		score -= 8
	}

	if rug > 0 {
		known++
		score += (rug - 5) * 4 // centered on a neutral 5/10
	}
	if top10 > 0 {
		known++
		if top10 < 25 {
			score += 8
		} else if top10 > 50 {
			score -= 10
		}
	}
	if stability > 0 {
		known++
		score += (stability - 50) * 0.1
	}
	if distribution > 0 {
		known++
		score += (distribution - 50) * 0.1
	}

	// Confidence scales with how much of the vector was populated, and is
	// hard-capped: the heuristic never claims trained-model certainty.
	conf := 0.30 + 0.07*float64(known)
	if conf > 0.75 {
		conf = 0.75
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Prediction{Score: score, Confidence: conf}
}
