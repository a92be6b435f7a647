package collector

import "context"

// MockSearcher returns controllable fixed results for development and testing.
type MockSearcher struct {
	Results []Result
	Err     error
	Queries []string
}

func (m *MockSearcher) Name() string { return "mock" }

func (m *MockSearcher) Search(_ context.Context, query string) ([]Result, error) {
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results, nil
}
