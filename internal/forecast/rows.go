package forecast

import "fmt"

// Row is one forecast flattened for display.
type Row struct {
	Event       string
	DueDate     string
	Probability string
	Outcome     string
	Brier       string
	Rationale   string
}

// Rows returns one display row per event; unset outcome and score render as "-".
func (t *Tracker) Rows() []Row {
	rows := make([]Row, 0, len(t.events))
	for _, ev := range t.events {
		row := Row{
			Event:       ev.Event,
			DueDate:     ev.DueDate.String(),
			Probability: fmt.Sprintf("%.2f", ev.Probability),
			Outcome:     "-",
			Brier:       "-",
			Rationale:   ev.Rationale,
		}
		if ev.Outcome != nil {
			row.Outcome = fmt.Sprintf("%d", *ev.Outcome)
		}
		if ev.Brier != nil {
			row.Brier = fmt.Sprintf("%.3f", *ev.Brier)
		}
		rows = append(rows, row)
	}
	return rows
}
