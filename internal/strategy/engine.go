package strategy

import "LevelSentinel/internal/model"

// Tiers maps a total score to a bias label, highest first.
var Tiers = []struct {
	MinScore float64
	Label    string
}{
	{1.2, "strong bullish"},
	{0.4, "bullish"},
	{-0.4, "neutral"},
	{-1.2, "bearish"},
}

// DefaultLabel is used for scores below the last tier.
const DefaultLabel = "strong bearish"

func mapTier(totalScore float64) string {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Label
		}
	}
	return DefaultLabel
}

// Evaluate scores the momentum around price. Unavailable indicators score zero.
func Evaluate(price float64, ind model.Indicators) model.Bias {
	factors := []model.FactorScore{
		scoreTrend(price, ind),
		scoreRSI(ind),
		scoreMACD(ind),
	}

	total := 0.0
	for _, f := range factors {
		total += f.Weighted
	}

	bias := model.Bias{
		Factors:    factors,
		TotalScore: total,
		Label:      mapTier(total),
	}

	switch {
	case ind.RSI14 >= 80:
		bias.WarningMsg = "RSI above 80, overbought"
	case ind.RSI14 > 0 && ind.RSI14 <= 20:
		bias.WarningMsg = "RSI below 20, oversold"
	}
	return bias
}
