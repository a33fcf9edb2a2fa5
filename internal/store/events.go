package store

import (
	"context"

	"checkout-service/internal/models"
)

// RecordEvent stores a checkout event once; replays are ignored.
// It reports whether a new row was written.
func (s *Store) RecordEvent(ctx context.Context, event *models.CheckoutEvent) (bool, error) {
	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO checkout_events (event_id, event_type, session_id, payload)
		VALUES (:event_id, :event_type, :session_id, :payload)
		ON CONFLICT (event_id) DO NOTHING`, event)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsEventProcessed checks if an event has been recorded
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM checkout_events WHERE event_id = $1)", eventID)
	return exists, err
}

// CountSessionEvents returns how many events were recorded for a session
func (s *Store) CountSessionEvents(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM checkout_events WHERE session_id = $1", sessionID)
	return n, err
}
