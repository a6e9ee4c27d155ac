package model

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// Bias is the momentum context around a touch, from -2 (bearish) to +2 (bullish).
type Bias struct {
	Factors    []FactorScore
	TotalScore float64
	Label      string
	WarningMsg string
}
