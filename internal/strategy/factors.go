package strategy

import (
	"fmt"

	"GeoSentinel/internal/model"
)

func colorScore(s model.Status) float64 {
	switch s {
	case model.StatusGreen:
		return -1
	case model.StatusRed:
		return 1
	default:
		return 0
	}
}

// scoreDimensions returns one factor per dimension present, in board order,
// and the weighted total.
func scoreDimensions(records []model.IndicatorRecord) ([]model.FactorScore, float64) {
	type acc struct {
		weighted, weight   float64
		red, yellow, green int
	}
	byDim := map[model.Dimension]*acc{}
	totalWeight := 0.0
	for _, rec := range records {
		w := float64(rec.Weight)
		if w <= 0 {
			continue
		}
		a, ok := byDim[rec.Dimension]
		if !ok {
			a = &acc{}
			byDim[rec.Dimension] = a
		}
		a.weighted += w * colorScore(rec.Color)
		a.weight += w
		totalWeight += w
		switch rec.Color {
		case model.StatusRed:
			a.red++
		case model.StatusGreen:
			a.green++
		default:
			a.yellow++
		}
	}
	if totalWeight == 0 {
		return nil, 0
	}

	dims := append([]model.Dimension{}, model.Dimensions...)
	for d := range byDim {
		if !d.Valid() {
			dims = append(dims, d)
		}
	}

	var factors []model.FactorScore
	total := 0.0
	for _, d := range dims {
		a, ok := byDim[d]
		if !ok {
			continue
		}
		raw := a.weighted / a.weight
		share := a.weight / totalWeight
		f := model.FactorScore{
			Name:       string(d),
			RawScore:   raw,
			Weight:     share,
			Weighted:   raw * share,
			Commentary: fmt.Sprintf("%d red / %d yellow / %d green", a.red, a.yellow, a.green),
		}
		total += f.Weighted
		factors = append(factors, f)
	}
	return factors, total
}
