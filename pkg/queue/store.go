// Package queue implements the durable command queue and the ban/group
// mirror that the game server reads.
package queue

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/queue/migrations"
	"github.com/PancyStudios/ModRelayGo/pkg/sqlitedb"
	"github.com/goccy/go-json"
)

const (
	// DefaultBatchSize is used by ListPending when no limit is given
	DefaultBatchSize = 50
	// MaxBatchSize caps a single poll
	MaxBatchSize = 500
)

// Stats summarizes the queue for health probes
type Stats struct {
	Pending  int64 `json:"pending"`
	Executed int64 `json:"executed"`
	Bans     int64 `json:"bans"`
	Groups   int64 `json:"blacklistedCrews"`
}

// Store is the SQLite-backed command queue
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the store's time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (or creates) the queue database at path
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sqlitedb.Open(path, migrations.FS)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database answers
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Enqueue appends a pending command and applies its mirror update in the same
// transaction. The payload must be present and not null.
func (s *Store) Enqueue(ctx context.Context, action models.Action, payload json.RawMessage) (int64, error) {
	const op = "queue.Enqueue"

	payload = bytes.TrimSpace(payload)
	if action == "" || len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return 0, errors.Validation(op, "Missing action or data")
	}
	if !json.Valid(payload) {
		return 0, errors.Validation(op, "data is not valid JSON")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Internal(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	id, err := insertCommand(ctx, tx, action, payload, now)
	if err != nil {
		return 0, errors.Internal(op, err)
	}

	if err := applyMirror(ctx, tx, action, payload, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Internal(op, err)
	}
	return id, nil
}

func insertCommand(ctx context.Context, tx *sql.Tx, action models.Action, payload []byte, now time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO commands (action, data, created_at, executed) VALUES (?, ?, ?, 0)`,
		string(action), string(payload), now.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert command: %w", err)
	}
	return res.LastInsertId()
}

// applyMirror keeps the bans and blacklisted_crews tables in step with the
// commands that change them.
func applyMirror(ctx context.Context, tx *sql.Tx, action models.Action, payload []byte, now time.Time) error {
	const op = "queue.Enqueue"

	if !action.UpdatesMirror() {
		return nil
	}

	var err error
	switch action {
	case models.ActionBan:
		var p models.BanPayload
		if jerr := json.Unmarshal(payload, &p); jerr != nil {
			return errors.Validation(op, "invalid ban data: %v", jerr)
		}
		if p.UserID == "" {
			return errors.Validation(op, "ban requires userId")
		}
		username := p.Username
		if username == "" {
			username = "Unknown"
		}
		bannedBy := p.BannedBy
		if bannedBy == "" {
			bannedBy = "System"
		}
		_, err = tx.ExecContext(ctx, `
INSERT OR REPLACE INTO bans (roblox_id, username, reason, proof, banned_by, banned_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.UserID.String(), username, p.Reason, p.Proof, bannedBy, now.UnixMilli(), nullableInt(p.ExpiresAt),
		)

	case models.ActionUnban:
		var p models.SubjectPayload
		if jerr := json.Unmarshal(payload, &p); jerr != nil {
			return errors.Validation(op, "invalid unban data: %v", jerr)
		}
		if p.UserID == "" {
			return errors.Validation(op, "unban requires userId")
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM bans WHERE roblox_id = ?`, p.UserID.String())

	case models.ActionUnbanWave:
		_, err = tx.ExecContext(ctx, `DELETE FROM bans`)

	case models.ActionBlacklistCrew:
		var p models.GroupPayload
		if jerr := json.Unmarshal(payload, &p); jerr != nil {
			return errors.Validation(op, "invalid group data: %v", jerr)
		}
		if p.GroupID == "" {
			return errors.Validation(op, "blacklistcrew requires groupId")
		}
		by := p.BlacklistedBy
		if by == "" {
			by = "System"
		}
		_, err = tx.ExecContext(ctx, `
INSERT OR REPLACE INTO blacklisted_crews (group_id, blacklisted_by, blacklisted_at)
VALUES (?, ?, ?)`,
			p.GroupID.String(), by, now.UnixMilli(),
		)

	case models.ActionRemoveCrewBlacklist:
		var p models.GroupPayload
		if jerr := json.Unmarshal(payload, &p); jerr != nil {
			return errors.Validation(op, "invalid group data: %v", jerr)
		}
		if p.GroupID == "" {
			return errors.Validation(op, "removecrewblacklist requires groupId")
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM blacklisted_crews WHERE group_id = ?`, p.GroupID.String())
	}

	if err != nil {
		return errors.Internal(op, fmt.Errorf("update mirror for %s: %w", action, err))
	}
	return nil
}

// ListPending returns pending commands oldest first
func (s *Store) ListPending(ctx context.Context, limit int) ([]models.Command, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}
	if limit > MaxBatchSize {
		limit = MaxBatchSize
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, action, data, created_at, executed
FROM commands
WHERE executed = 0
ORDER BY created_at ASC, id ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Internal("queue.ListPending", err)
	}
	defer rows.Close()

	commands := make([]models.Command, 0)
	for rows.Next() {
		var (
			cmd       models.Command
			action    string
			data      string
			createdAt int64
		)
		if err := rows.Scan(&cmd.ID, &action, &data, &createdAt, &cmd.Executed); err != nil {
			return nil, errors.Internal("queue.ListPending", err)
		}
		cmd.Action = models.Action(action)
		cmd.Payload = json.RawMessage(data)
		cmd.CreatedAt = time.UnixMilli(createdAt)
		commands = append(commands, cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("queue.ListPending", err)
	}
	return commands, nil
}

// MarkExecuted flags a command as executed. Unknown or already executed ids
// are not an error; changed reports whether this call flipped the flag.
func (s *Store) MarkExecuted(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE commands SET executed = 1 WHERE id = ? AND executed = 0`, id)
	if err != nil {
		return false, errors.Internal("queue.MarkExecuted", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Internal("queue.MarkExecuted", err)
	}
	return n > 0, nil
}

// PurgeExecutedOlderThan deletes executed commands created before now-age.
// Pending commands are never touched.
func (s *Store) PurgeExecutedOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := s.now().Add(-age).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM commands WHERE executed = 1 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, errors.Internal("queue.PurgeExecutedOlderThan", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Internal("queue.PurgeExecutedOlderThan", err)
	}
	return n, nil
}

// SweepExpiredBans removes every ban whose expiry has passed and enqueues an
// unban for each one, all in a single transaction.
func (s *Store) SweepExpiredBans(ctx context.Context) ([]models.Ban, error) {
	const op = "queue.SweepExpiredBans"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Internal(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	rows, err := tx.QueryContext(ctx, `
SELECT roblox_id, username, reason, proof, banned_by, banned_at, expires_at
FROM bans
WHERE expires_at IS NOT NULL AND expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return nil, errors.Internal(op, err)
	}
	expired, err := scanBans(rows)
	if err != nil {
		return nil, errors.Internal(op, err)
	}

	for _, ban := range expired {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bans WHERE roblox_id = ?`, ban.SubjectID); err != nil {
			return nil, errors.Internal(op, err)
		}
		payload, err := json.Marshal(models.SubjectPayload{UserID: models.SubjectID(ban.SubjectID)})
		if err != nil {
			return nil, errors.Internal(op, err)
		}
		if _, err := insertCommand(ctx, tx, models.ActionUnban, payload, now); err != nil {
			return nil, errors.Internal(op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Internal(op, err)
	}
	return expired, nil
}

// ListBans returns the mirror's bans
func (s *Store) ListBans(ctx context.Context) ([]models.Ban, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT roblox_id, username, reason, proof, banned_by, banned_at, expires_at
FROM bans
ORDER BY banned_at ASC`)
	if err != nil {
		return nil, errors.Internal("queue.ListBans", err)
	}
	bans, err := scanBans(rows)
	if err != nil {
		return nil, errors.Internal("queue.ListBans", err)
	}
	return bans, nil
}

// GetBan returns the ban of one subject or a NotFound error
func (s *Store) GetBan(ctx context.Context, subjectID string) (*models.Ban, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT roblox_id, username, reason, proof, banned_by, banned_at, expires_at
FROM bans
WHERE roblox_id = ?`, subjectID)
	if err != nil {
		return nil, errors.Internal("queue.GetBan", err)
	}
	bans, err := scanBans(rows)
	if err != nil {
		return nil, errors.Internal("queue.GetBan", err)
	}
	if len(bans) == 0 {
		return nil, errors.NotFound("queue.GetBan", "no active ban for %s", subjectID)
	}
	return &bans[0], nil
}

// ListBlacklistedGroups returns the mirror's blacklisted groups
func (s *Store) ListBlacklistedGroups(ctx context.Context) ([]models.BlacklistedGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT group_id, blacklisted_by, blacklisted_at
FROM blacklisted_crews
ORDER BY blacklisted_at ASC`)
	if err != nil {
		return nil, errors.Internal("queue.ListBlacklistedGroups", err)
	}
	defer rows.Close()

	groups := make([]models.BlacklistedGroup, 0)
	for rows.Next() {
		var (
			g  models.BlacklistedGroup
			by sql.NullString
			at sql.NullInt64
		)
		if err := rows.Scan(&g.GroupID, &by, &at); err != nil {
			return nil, errors.Internal("queue.ListBlacklistedGroups", err)
		}
		g.IssuedBy = by.String
		g.IssuedAt = time.UnixMilli(at.Int64)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("queue.ListBlacklistedGroups", err)
	}
	return groups, nil
}

// Stats counts queue and mirror rows
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
SELECT
    (SELECT COUNT(*) FROM commands WHERE executed = 0),
    (SELECT COUNT(*) FROM commands WHERE executed = 1),
    (SELECT COUNT(*) FROM bans),
    (SELECT COUNT(*) FROM blacklisted_crews)`).Scan(&st.Pending, &st.Executed, &st.Bans, &st.Groups)
	if err != nil {
		return Stats{}, errors.Internal("queue.Stats", err)
	}
	return st, nil
}

func scanBans(rows *sql.Rows) ([]models.Ban, error) {
	defer rows.Close()

	bans := make([]models.Ban, 0)
	for rows.Next() {
		var (
			b                                  models.Ban
			username, reason, proof, bannedBy sql.NullString
			bannedAt, expiresAt                sql.NullInt64
		)
		if err := rows.Scan(&b.SubjectID, &username, &reason, &proof, &bannedBy, &bannedAt, &expiresAt); err != nil {
			return nil, err
		}
		b.Username = username.String
		b.Reason = reason.String
		b.Proof = proof.String
		b.IssuedBy = bannedBy.String
		b.IssuedAt = time.UnixMilli(bannedAt.Int64)
		b.ExpiresAt = sqlitedb.TimeFromMillis(expiresAt)
		bans = append(bans, b)
	}
	return bans, rows.Err()
}

func nullableInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
