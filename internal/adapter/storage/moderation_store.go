// internal/adapter/storage/moderation_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"souffle/internal/domain/souffle"
	"souffle/internal/moderation"
)

// ModerationStore archives moderation decisions and community reports in
// Postgres. The ephemeral collections live in Redis; this is the durable
// audit trail that outlives them.
type ModerationStore struct {
	db *pgxpool.Pool
}

// NewModerationStore creates a new moderation store
func NewModerationStore(db *pgxpool.Pool) *ModerationStore {
	return &ModerationStore{
		db: db,
	}
}

// RecordViolation stores a flagged or blocked moderation decision.
func (s *ModerationStore) RecordViolation(ctx context.Context, result moderation.Result, content string) error {
	query := `
		INSERT INTO moderation_violations (status, score, reasons, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.Exec(
		ctx,
		query,
		string(result.Status),
		result.Score,
		result.Reasons,
		content,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("error recording violation: %w", err)
	}

	return nil
}

// RecordReport archives a community-reported souffle before it is removed
// from the active collection.
func (s *ModerationStore) RecordReport(ctx context.Context, sf souffle.Souffle) error {
	query := `
		INSERT INTO souffle_reports (
			souffle_id, feeling, message, wish,
			latitude, longitude, souffle_created_at, reported_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.Exec(
		ctx,
		query,
		sf.ID,
		sf.Content.Feeling,
		sf.Content.Message,
		sf.Content.Wish,
		sf.Location.Latitude,
		sf.Location.Longitude,
		sf.CreatedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("error recording report: %w", err)
	}

	return nil
}

// Stats summarizes the archived moderation activity.
type Stats struct {
	Flagged int `json:"flagged"`
	Blocked int `json:"blocked"`
	Reports int `json:"reports"`
}

// GetStats returns counts of archived violations and reports since the
// given time.
func (s *ModerationStore) GetStats(ctx context.Context, since time.Time) (*Stats, error) {
	var stats Stats

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'flagged'),
			COUNT(*) FILTER (WHERE status = 'blocked')
		FROM moderation_violations
		WHERE created_at >= $1
	`
	if err := s.db.QueryRow(ctx, query, since).Scan(&stats.Flagged, &stats.Blocked); err != nil {
		return nil, fmt.Errorf("error querying violation stats: %w", err)
	}

	reportQuery := `SELECT COUNT(*) FROM souffle_reports WHERE reported_at >= $1`
	if err := s.db.QueryRow(ctx, reportQuery, since).Scan(&stats.Reports); err != nil {
		return nil, fmt.Errorf("error querying report stats: %w", err)
	}

	return &stats, nil
}
