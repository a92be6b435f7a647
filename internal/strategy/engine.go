package strategy

import "GeoSentinel/internal/model"

// Tiers maps the composite score to a posture, highest first.
var Tiers = []struct {
	MinScore float64
	Tier     model.RiskTier
}{
	{0.5, model.RiskTier{Label: "critical", Action: "issue flash brief, review ACH weights"}},
	{0.2, model.RiskTier{Label: "elevated", Action: "raise collection tempo on red indicators"}},
	{-0.2, model.RiskTier{Label: "watch", Action: "keep weekly cadence"}},
}

// DefaultTier applies to scores below every threshold.
var DefaultTier = model.RiskTier{Label: "calm", Action: "monthly review"}

func mapTier(totalScore float64) model.RiskTier {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Tier
		}
	}
	return DefaultTier
}

// Evaluate scores the panel: each record contributes its color score (green -1,
// yellow 0, red +1) times its weight, grouped by dimension. The total is the
// weighted mean and lies in [-1, 1].
func Evaluate(records []model.IndicatorRecord) *model.RiskAssessment {
	factors, total := scoreDimensions(records)

	a := &model.RiskAssessment{
		Factors:    factors,
		TotalScore: total,
		Tier:       mapTier(total),
	}
	for _, rec := range records {
		if rec.Color == model.StatusRed {
			a.RedCount++
		}
		if rec.Date == nil {
			a.Stale++
		}
	}
	if a.Stale > 0 && a.Stale == len(records) {
		a.WarningMsg = "no indicator has been updated yet; score reflects defaults only"
	} else if a.RedCount > 0 && a.RedCount*2 >= len(records) {
		a.WarningMsg = "half or more of the panel is red"
	}
	return a
}
