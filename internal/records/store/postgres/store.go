// Package postgres is the self-hosted record store.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"canvass/internal/domain"
)

//go:embed schema.sql
var schema string

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates voter_profiles when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure voter_profiles schema: %w", err)
	}
	return nil
}

const insertRecord = `
INSERT INTO voter_profiles (
    id, id_number, full_name, age, ward, voting_district, voting_station,
    change_station, gender, marital_status, household_size, housing_type,
    priority, wants_notifications, verification_simulated, collected_by, collected_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING created_at`

func (s *Store) Insert(ctx context.Context, record domain.VoterRecord) (domain.VoterRecord, error) {
	record.ID = domain.RecordID(uuid.NewString())
	err := s.pool.QueryRow(ctx, insertRecord,
		string(record.ID),
		record.IDNumber,
		record.FullName,
		record.Age,
		record.Ward,
		record.VotingDistrict,
		record.VotingStation,
		record.ChangeStation,
		record.Gender,
		record.MaritalStatus,
		record.HouseholdSize,
		record.HousingType,
		record.Priority,
		record.WantsNotifications,
		record.VerificationSimulated,
		record.CollectedBy,
		record.CollectedAt,
	).Scan(&record.CreatedAt)
	if err != nil {
		return domain.VoterRecord{}, fmt.Errorf("insert voter profile: %w", err)
	}
	return record, nil
}

// Probe runs the cheapest read the table allows.
func (s *Store) Probe(ctx context.Context) error {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM (SELECT 1 FROM voter_profiles LIMIT 1) t`).Scan(&n); err != nil {
		return fmt.Errorf("probe voter_profiles: %w", err)
	}
	return nil
}
