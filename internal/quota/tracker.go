// Package quota tracks usage of externally capped resources across process
// restarts. The counter is persisted so concurrent processes sharing the same
// database observe one consistent count, and check-then-increment is a single
// conditional UPDATE so the known race of a separate read-then-write can't
// occur.
package quota

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Schema creates the usage table. Applied via database.DB.Migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS api_usage (
    resource TEXT NOT NULL,
    period   TEXT NOT NULL,
    used     INTEGER NOT NULL DEFAULT 0,
    cap      INTEGER NOT NULL,
    PRIMARY KEY (resource, period)
);
`

// ErrExhausted is returned by TryAcquire when the period cap is reached.
// Callers treat this as a skip signal, not a failure.
var ErrExhausted = fmt.Errorf("quota exhausted for current period")

// Tracker is a persisted monthly usage counter for one external resource.
type Tracker struct {
	db       *sql.DB
	resource string
	cap      int64
	log      zerolog.Logger
	now      func() time.Time // injected for tests
}

// NewTracker creates a tracker for a resource with a monthly cap.
func NewTracker(db *sql.DB, resource string, cap int64, log zerolog.Logger) *Tracker {
	return &Tracker{
		db:       db,
		resource: resource,
		cap:      cap,
		log:      log.With().Str("component", "quota").Str("resource", resource).Logger(),
		now:      time.Now,
	}
}

// currentPeriod returns the tracked period key, e.g. "2026-08".
func (t *Tracker) currentPeriod() string {
	return t.now().UTC().Format("2006-01")
}

// ensurePeriod creates the row for the current period if it doesn't exist.
// Rows from prior periods are left in place as a usage history; the period
// key itself is the rollover.
func (t *Tracker) ensurePeriod() error {
	_, err := t.db.Exec(
		"INSERT OR IGNORE INTO api_usage (resource, period, used, cap) VALUES (?, ?, 0, ?)",
		t.resource, t.currentPeriod(), t.cap,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure quota period row: %w", err)
	}
	return nil
}

// TryAcquire atomically consumes one unit of quota for the current period.
// Returns ErrExhausted when the cap is reached; the conditional UPDATE is the
// check and the increment in one statement, so two processes can never both
// take the last unit.
func (t *Tracker) TryAcquire() error {
	if err := t.ensurePeriod(); err != nil {
		return err
	}

	result, err := t.db.Exec(
		"UPDATE api_usage SET used = used + 1 WHERE resource = ? AND period = ? AND used < cap",
		t.resource, t.currentPeriod(),
	)
	if err != nil {
		return fmt.Errorf("failed to acquire quota unit: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read quota update result: %w", err)
	}
	if affected == 0 {
		t.log.Warn().Int64("cap", t.cap).Str("period", t.currentPeriod()).Msg("Quota cap reached, call skipped")
		return ErrExhausted
	}

	return nil
}

// Release returns one unit, used when an acquired call was never issued
// (e.g. request construction failed before any network traffic).
func (t *Tracker) Release() error {
	_, err := t.db.Exec(
		"UPDATE api_usage SET used = used - 1 WHERE resource = ? AND period = ? AND used > 0",
		t.resource, t.currentPeriod(),
	)
	if err != nil {
		return fmt.Errorf("failed to release quota unit: %w", err)
	}
	return nil
}

// Usage returns (used, cap) for the current period.
func (t *Tracker) Usage() (int64, int64, error) {
	if err := t.ensurePeriod(); err != nil {
		return 0, 0, err
	}

	var used, cap int64
	err := t.db.QueryRow(
		"SELECT used, cap FROM api_usage WHERE resource = ? AND period = ?",
		t.resource, t.currentPeriod(),
	).Scan(&used, &cap)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read quota usage: %w", err)
	}

	return used, cap, nil
}

// Remaining returns how many units are left in the current period.
func (t *Tracker) Remaining() (int64, error) {
	used, cap, err := t.Usage()
	if err != nil {
		return 0, err
	}
	remaining := cap - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// RolloverCheckpoint makes sure the current period row exists. Scheduled
// hourly so the month boundary is crossed promptly even with no traffic.
func (t *Tracker) RolloverCheckpoint() {
	if err := t.ensurePeriod(); err != nil {
		t.log.Error().Err(err).Msg("Quota rollover checkpoint failed")
		return
	}

	used, cap, err := t.Usage()
	if err != nil {
		t.log.Error().Err(err).Msg("Failed to read quota after rollover checkpoint")
		return
	}

	t.log.Debug().
		Str("period", t.currentPeriod()).
		Int64("used", used).
		Int64("cap", cap).
		Msg("Quota period current")
}
