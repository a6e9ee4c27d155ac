package strategy

import (
	"fmt"

	"LevelSentinel/internal/model"
)

// scoreTrend scores EMA alignment.
// Weight: 0.40
// Bull alignment: price > EMA20 > EMA50
// Bear alignment: price < EMA20 < EMA50
func scoreTrend(price float64, ind model.Indicators) model.FactorScore {
	if ind.EMA20 == 0 || ind.EMA50 == 0 {
		return model.FactorScore{Name: "Trend", Weight: 0.40, Commentary: "EMA unavailable"}
	}

	bullish := price > ind.EMA20 && ind.EMA20 > ind.EMA50
	bearish := price < ind.EMA20 && ind.EMA20 < ind.EMA50

	var score float64
	var commentary string
	switch {
	case bullish:
		score = 2.0
		commentary = "bull alignment"
	case bearish:
		score = -2.0
		commentary = "bear alignment"
	case ind.EMA20 > ind.EMA50:
		score = 0.5
		commentary = "EMA20 above EMA50"
	case ind.EMA20 < ind.EMA50:
		score = -0.5
		commentary = "EMA20 below EMA50"
	default:
		commentary = "flat"
	}

	return model.FactorScore{
		Name:       "Trend",
		RawScore:   score,
		Weight:     0.40,
		Weighted:   score * 0.40,
		Commentary: commentary,
	}
}

// scoreRSI scores the RSI(14) momentum zone.
// Weight: 0.35
func scoreRSI(ind model.Indicators) model.FactorScore {
	rsi := ind.RSI14
	if rsi == 0 {
		return model.FactorScore{Name: "RSI", Weight: 0.35, Commentary: "RSI unavailable"}
	}

	var score float64
	switch {
	case rsi >= 70:
		score = 2.0
	case rsi >= 60:
		score = 1.0
	case rsi >= 55:
		score = 0.5
	case rsi > 45:
		score = 0
	case rsi > 40:
		score = -0.5
	case rsi > 30:
		score = -1.0
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "RSI",
		RawScore:   score,
		Weight:     0.35,
		Weighted:   score * 0.35,
		Commentary: fmt.Sprintf("RSI=%.0f", rsi),
	}
}

// scoreMACD scores the MACD histogram sign and which side of zero the line sits.
// Weight: 0.25
func scoreMACD(ind model.Indicators) model.FactorScore {
	if !ind.HasMACD {
		return model.FactorScore{Name: "MACD", Weight: 0.25, Commentary: "MACD unavailable"}
	}

	hist := ind.MACD - ind.MACDSignal
	var score float64
	var commentary string
	switch {
	case hist > 0 && ind.MACD > 0:
		score = 2.0
		commentary = "rising above zero"
	case hist > 0:
		score = 1.0
		commentary = "rising below zero"
	case hist < 0 && ind.MACD < 0:
		score = -2.0
		commentary = "falling below zero"
	case hist < 0:
		score = -1.0
		commentary = "falling above zero"
	default:
		commentary = "flat"
	}

	return model.FactorScore{
		Name:       "MACD",
		RawScore:   score,
		Weight:     0.25,
		Weighted:   score * 0.25,
		Commentary: commentary,
	}
}
