// Package hosted is the record store backed by a PostgREST-compatible REST API.
package hosted

import (
	"context"
	"fmt"
	"net/http"

	"canvass/internal/domain"
	"canvass/internal/platform/hosted"
)

const table = "/rest/v1/voter_profiles"

type Store struct {
	client *hosted.Client
}

func New(client *hosted.Client) *Store {
	return &Store{client: client}
}

// Insert posts the record and returns the representation the server stored,
// including id and created_at.
func (s *Store) Insert(ctx context.Context, record domain.VoterRecord) (domain.VoterRecord, error) {
	var rows []domain.VoterRecord
	err := s.client.Do(ctx, hosted.Request{
		Method:  http.MethodPost,
		Path:    table,
		Body:    []domain.VoterRecord{record},
		Headers: map[string]string{"Prefer": "return=representation"},
	}, &rows)
	if err != nil {
		return domain.VoterRecord{}, fmt.Errorf("insert voter profile: %w", err)
	}
	if len(rows) == 0 {
		return record, nil
	}
	return rows[0], nil
}

// Probe issues a count query limited to one row.
func (s *Store) Probe(ctx context.Context) error {
	err := s.client.Do(ctx, hosted.Request{
		Method: http.MethodGet,
		Path:   table + "?select=count&limit=1",
	}, nil)
	if err != nil {
		return fmt.Errorf("probe voter_profiles: %w", err)
	}
	return nil
}
