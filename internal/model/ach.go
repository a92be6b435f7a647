package model

// ACHEntry accumulates evidence for and against one hypothesis.
type ACHEntry struct {
	Hypothesis     string     `json:"hypothesis"`
	Supports       []Evidence `json:"supports"`
	Refutes        []Evidence `json:"refutes"`
	NetAssessment  int        `json:"net_assessment"`
	Confidence     string     `json:"confidence"`
	KeyGaps        []string   `json:"key_gaps"`
	NextCollection []string   `json:"next_collection"`
}

// Recompute derives NetAssessment from the evidence counts.
func (e *ACHEntry) Recompute() {
	e.NetAssessment = len(e.Supports) - len(e.Refutes)
}

// ACHTable is the question under analysis and its competing hypotheses.
type ACHTable struct {
	Question string     `json:"question"`
	Entries  []ACHEntry `json:"entries"`
}

// BootstrapACH builds an empty table for the given hypotheses.
func BootstrapACH(question string, hypotheses []string) ACHTable {
	t := ACHTable{Question: question, Entries: make([]ACHEntry, 0, len(hypotheses))}
	for _, h := range hypotheses {
		t.Entries = append(t.Entries, ACHEntry{
			Hypothesis:     h,
			Supports:       []Evidence{},
			Refutes:        []Evidence{},
			Confidence:     QualityMedium,
			KeyGaps:        []string{},
			NextCollection: []string{},
		})
	}
	return t
}
