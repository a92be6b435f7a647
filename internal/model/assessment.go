package model

// FactorScore is one dimension's contribution to the panel risk score.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// RiskTier maps a composite score range to a posture label.
type RiskTier struct {
	Label  string
	Action string
}

// RiskAssessment is the output of the panel scoring engine.
type RiskAssessment struct {
	Factors    []FactorScore
	TotalScore float64
	Tier       RiskTier
	RedCount   int
	Stale      int
	WarningMsg string
}
