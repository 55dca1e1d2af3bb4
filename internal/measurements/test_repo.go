package measurements

import (
	"context"
	"sort"
	"sync"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"
)

// TestRepo is an in-memory source with the same List semantics as the SQL repos.
type TestRepo struct {
	mutex  sync.Mutex
	nextID int64
	rows   []testRow

	// AddErr and ListErr, when set, are returned by the respective calls.
	AddErr  error
	ListErr error
}

type testRow struct {
	id       int64
	clientID string
	m        trends.Measurement
}

func NewTestRepo() *TestRepo {
	return &TestRepo{nextID: 1}
}

func (r *TestRepo) Add(_ context.Context, clientID string, m trends.Measurement) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.AddErr != nil {
		return -1, r.AddErr
	}

	id := r.nextID
	r.nextID++
	r.rows = append(r.rows, testRow{id: id, clientID: clientID, m: m})
	return id, nil
}

func (r *TestRepo) List(_ context.Context, params ListParams) ([]trends.Measurement, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.ListErr != nil {
		return nil, r.ListErr
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var (
		prior    *testRow
		selected []testRow
	)
	for i := range r.rows {
		row := r.rows[i]
		if row.clientID != params.ClientID || row.m.MetricKey != params.MetricKey {
			continue
		}
		ts := row.m.Timestamp
		switch {
		case ts.Before(params.From):
			if row.m.Value == nil {
				continue
			}
			if prior == nil || ts.After(prior.m.Timestamp) || (ts.Equal(prior.m.Timestamp) && row.id > prior.id) {
				prior = &row
			}
		case ts.Before(params.Until):
			selected = append(selected, row)
		}
	}
	if prior != nil {
		selected = append(selected, *prior)
	}

	sort.Slice(selected, func(i, j int) bool {
		ti, tj := selected[i].m.Timestamp, selected[j].m.Timestamp
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return selected[i].id < selected[j].id
	})

	ms := make([]trends.Measurement, 0, len(selected))
	for _, row := range selected {
		ms = append(ms, row.m)
	}
	return ms, nil
}

func (r *TestRepo) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.rows)
}
