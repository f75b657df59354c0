package repository

import (
    "context"
    "database/sql"
    "time"
)

// AuditRepo archives confirmed reservations into MySQL.  The archive is a
// write-behind record fed by the seat.reserved queue consumer; it is
// never consulted by the lease protocol and losing it does not affect
// correctness of the live ledger.
type AuditRepo struct {
    db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the provided database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// EnsureSchema creates the reservation_audit table when it does not
// exist.  Idempotent; called once at consumer startup.
func (r *AuditRepo) EnsureSchema(ctx context.Context) error {
    const q = `CREATE TABLE IF NOT EXISTS reservation_audit (
        id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        event_id    VARCHAR(64)  NOT NULL,
        seat_number INT          NOT NULL,
        user_id     VARCHAR(64)  NOT NULL,
        reserved_at DATETIME     NOT NULL,
        created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
        KEY idx_event (event_id)
    )`
    _, err := r.db.ExecContext(ctx, q)
    return err
}

// Insert records one confirmed reservation.
func (r *AuditRepo) Insert(ctx context.Context, eventID string, seatNumber int, userID string, reservedAt time.Time) error {
    _, err := r.db.ExecContext(ctx,
        `INSERT INTO reservation_audit (event_id, seat_number, user_id, reserved_at) VALUES (?, ?, ?, ?)`,
        eventID, seatNumber, userID, reservedAt.UTC().Format("2006-01-02 15:04:05"),
    )
    return err
}

// CountByEvent reports how many reservations have been archived for an
// event.  Used by operational tooling, not by the lease protocol.
func (r *AuditRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM reservation_audit WHERE event_id = ?`, eventID,
    ).Scan(&n)
    return n, err
}
