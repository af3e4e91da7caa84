package ledger

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/ledger/migrations"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/sqlitedb"
)

// SQLiteStore is the single-file ledger backend
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the ledger database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlitedb.Open(path, migrations.FS)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) exec(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Internal(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Internal(op, err)
	}
	return n, nil
}

func (s *SQLiteStore) insert(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Internal(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Internal(op, err)
	}
	return id, nil
}

// Staff

func (s *SQLiteStore) UpsertStaff(ctx context.Context, m models.StaffMember) error {
	_, err := s.exec(ctx, "ledger.UpsertStaff",
		`INSERT OR REPLACE INTO whitelist (discord_id, rank, added_by, added_at) VALUES (?, ?, ?, ?)`,
		m.DiscordID, string(m.Rank), m.AddedBy, m.AddedAt.UnixMilli())
	return err
}

func (s *SQLiteStore) EnsureStaff(ctx context.Context, m models.StaffMember) (bool, error) {
	n, err := s.exec(ctx, "ledger.EnsureStaff",
		`INSERT OR IGNORE INTO whitelist (discord_id, rank, added_by, added_at) VALUES (?, ?, ?, ?)`,
		m.DiscordID, string(m.Rank), m.AddedBy, m.AddedAt.UnixMilli())
	return n > 0, err
}

func (s *SQLiteStore) GetStaff(ctx context.Context, discordID string) (*models.StaffMember, error) {
	var (
		m       models.StaffMember
		rank    string
		addedBy sql.NullString
		addedAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT discord_id, rank, added_by, added_at FROM whitelist WHERE discord_id = ?`, discordID,
	).Scan(&m.DiscordID, &rank, &addedBy, &addedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Internal("ledger.GetStaff", err)
	}
	m.Rank = models.Rank(rank)
	m.AddedBy = addedBy.String
	m.AddedAt = time.UnixMilli(addedAt.Int64)
	return &m, nil
}

func (s *SQLiteStore) RemoveStaff(ctx context.Context, discordID string) (bool, error) {
	n, err := s.exec(ctx, "ledger.RemoveStaff", `DELETE FROM whitelist WHERE discord_id = ?`, discordID)
	return n > 0, err
}

func (s *SQLiteStore) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	const op = "ledger.ListStaff"
	rows, err := s.db.QueryContext(ctx, `SELECT discord_id, rank, added_by, added_at FROM whitelist ORDER BY added_at ASC`)
	if err != nil {
		return nil, errors.Internal(op, err)
	}
	defer rows.Close()

	out := make([]models.StaffMember, 0)
	for rows.Next() {
		var (
			m       models.StaffMember
			rank    string
			addedBy sql.NullString
			addedAt sql.NullInt64
		)
		if err := rows.Scan(&m.DiscordID, &rank, &addedBy, &addedAt); err != nil {
			return nil, errors.Internal(op, err)
		}
		m.Rank = models.Rank(rank)
		m.AddedBy = addedBy.String
		m.AddedAt = time.UnixMilli(addedAt.Int64)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err)
	}
	return out, nil
}

// Bans

const banColumns = `roblox_id, username, reason, proof, banned_by, banned_at, expires_at`

func (s *SQLiteStore) UpsertBan(ctx context.Context, b models.Ban) error {
	_, err := s.exec(ctx, "ledger.UpsertBan",
		`INSERT OR REPLACE INTO bans (`+banColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.SubjectID, b.Username, b.Reason, b.Proof, b.IssuedBy, b.IssuedAt.UnixMilli(), sqlitedb.NullableMillis(b.ExpiresAt))
	return err
}

func (s *SQLiteStore) GetBan(ctx context.Context, subjectID string) (*models.Ban, error) {
	bans, err := s.queryBans(ctx, "ledger.GetBan", `SELECT `+banColumns+` FROM bans WHERE roblox_id = ?`, subjectID)
	if err != nil || len(bans) == 0 {
		return nil, err
	}
	return &bans[0], nil
}

func (s *SQLiteStore) DeleteBan(ctx context.Context, subjectID string) (bool, error) {
	n, err := s.exec(ctx, "ledger.DeleteBan", `DELETE FROM bans WHERE roblox_id = ?`, subjectID)
	return n > 0, err
}

func (s *SQLiteStore) DeleteExpiredBan(ctx context.Context, subjectID string, now time.Time) (bool, error) {
	n, err := s.exec(ctx, "ledger.DeleteExpiredBan",
		`DELETE FROM bans WHERE roblox_id = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
		subjectID, now.UnixMilli())
	return n > 0, err
}

func (s *SQLiteStore) DeleteAllBans(ctx context.Context) (int64, error) {
	return s.exec(ctx, "ledger.DeleteAllBans", `DELETE FROM bans`)
}

func (s *SQLiteStore) ListBans(ctx context.Context) ([]models.Ban, error) {
	return s.queryBans(ctx, "ledger.ListBans", `SELECT `+banColumns+` FROM bans ORDER BY banned_at DESC`)
}

func (s *SQLiteStore) ListExpiredBans(ctx context.Context, now time.Time) ([]models.Ban, error) {
	return s.queryBans(ctx, "ledger.ListExpiredBans",
		`SELECT `+banColumns+` FROM bans WHERE expires_at IS NOT NULL AND expires_at <= ? ORDER BY expires_at ASC`,
		now.UnixMilli())
}

func (s *SQLiteStore) queryBans(ctx context.Context, op, query string, args ...interface{}) ([]models.Ban, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Internal(op, err)
	}
	defer rows.Close()

	out := make([]models.Ban, 0)
	for rows.Next() {
		var (
			b                                 models.Ban
			username, reason, proof, bannedBy sql.NullString
			bannedAt, expiresAt               sql.NullInt64
		)
		if err := rows.Scan(&b.SubjectID, &username, &reason, &proof, &bannedBy, &bannedAt, &expiresAt); err != nil {
			return nil, errors.Internal(op, err)
		}
		b.Username = username.String
		b.Reason = reason.String
		b.Proof = proof.String
		b.IssuedBy = bannedBy.String
		b.IssuedAt = time.UnixMilli(bannedAt.Int64)
		b.ExpiresAt = sqlitedb.TimeFromMillis(expiresAt)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err)
	}
	return out, nil
}

// Groups

func (s *SQLiteStore) UpsertGroup(ctx context.Context, g models.BlacklistedGroup) error {
	_, err := s.exec(ctx, "ledger.UpsertGroup",
		`INSERT OR REPLACE INTO blacklisted_crews (group_id, blacklisted_by, blacklisted_at) VALUES (?, ?, ?)`,
		g.GroupID, g.IssuedBy, g.IssuedAt.UnixMilli())
	return err
}

func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) (bool, error) {
	n, err := s.exec(ctx, "ledger.DeleteGroup", `DELETE FROM blacklisted_crews WHERE group_id = ?`, groupID)
	return n > 0, err
}

func (s *SQLiteStore) ListGroups(ctx context.Context) ([]models.BlacklistedGroup, error) {
	const op = "ledger.ListGroups"
	rows, err := s.db.QueryContext(ctx, `SELECT group_id, blacklisted_by, blacklisted_at FROM blacklisted_crews ORDER BY blacklisted_at DESC`)
	if err != nil {
		return nil, errors.Internal(op, err)
	}
	defer rows.Close()

	out := make([]models.BlacklistedGroup, 0)
	for rows.Next() {
		var (
			g  models.BlacklistedGroup
			by sql.NullString
			at sql.NullInt64
		)
		if err := rows.Scan(&g.GroupID, &by, &at); err != nil {
			return nil, errors.Internal(op, err)
		}
		g.IssuedBy = by.String
		g.IssuedAt = time.UnixMilli(at.Int64)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err)
	}
	return out, nil
}

// Warnings

func (s *SQLiteStore) AddWarning(ctx context.Context, w models.Warning) (int64, error) {
	return s.insert(ctx, "ledger.AddWarning",
		`INSERT INTO warnings (roblox_id, username, reason, proof, warned_by, warned_at) VALUES (?, ?, ?, ?, ?, ?)`,
		w.SubjectID, w.Username, w.Reason, w.Proof, w.IssuedBy, w.IssuedAt.UnixMilli())
}

func (s *SQLiteStore) CountWarnings(ctx context.Context, subjectID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM warnings WHERE roblox_id = ?`, subjectID).Scan(&n)
	if err != nil {
		return 0, errors.Internal("ledger.CountWarnings", err)
	}
	return n, nil
}

func (s *SQLiteStore) ListWarnings(ctx context.Context, subjectID string) ([]models.Warning, error) {
	const op = "ledger.ListWarnings"
	rows, err := s.db.QueryContext(ctx, `
SELECT id, roblox_id, username, reason, proof, warned_by, warned_at
FROM warnings
WHERE roblox_id = ?
ORDER BY warned_at DESC, id DESC`, subjectID)
	if err != nil {
		return nil, errors.Internal(op, err)
	}
	defer rows.Close()

	out := make([]models.Warning, 0)
	for rows.Next() {
		var (
			w                                 models.Warning
			username, reason, proof, warnedBy sql.NullString
			warnedAt                          int64
		)
		if err := rows.Scan(&w.ID, &w.SubjectID, &username, &reason, &proof, &warnedBy, &warnedAt); err != nil {
			return nil, errors.Internal(op, err)
		}
		w.Username = username.String
		w.Reason = reason.String
		w.Proof = proof.String
		w.IssuedBy = warnedBy.String
		w.IssuedAt = time.UnixMilli(warnedAt)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err)
	}
	return out, nil
}

func (s *SQLiteStore) ClearWarnings(ctx context.Context, subjectID string) (int64, error) {
	return s.exec(ctx, "ledger.ClearWarnings", `DELETE FROM warnings WHERE roblox_id = ?`, subjectID)
}

// Strikes

func (s *SQLiteStore) AddStrike(ctx context.Context, st models.Strike) (int64, error) {
	return s.insert(ctx, "ledger.AddStrike",
		`INSERT INTO strikes (discord_id, reason, proof, issued_by, issued_at) VALUES (?, ?, ?, ?, ?)`,
		st.StaffID, st.Reason, st.Proof, st.IssuedBy, st.IssuedAt.UnixMilli())
}

func (s *SQLiteStore) CountStrikes(ctx context.Context, staffID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM strikes WHERE discord_id = ?`, staffID).Scan(&n)
	if err != nil {
		return 0, errors.Internal("ledger.CountStrikes", err)
	}
	return n, nil
}

func (s *SQLiteStore) ListStrikes(ctx context.Context, staffID string) ([]models.Strike, error) {
	const op = "ledger.ListStrikes"
	rows, err := s.db.QueryContext(ctx, `
SELECT id, discord_id, reason, proof, issued_by, issued_at
FROM strikes
WHERE discord_id = ?
ORDER BY issued_at DESC, id DESC`, staffID)
	if err != nil {
		return nil, errors.Internal(op, err)
	}
	defer rows.Close()

	out := make([]models.Strike, 0)
	for rows.Next() {
		var (
			st                      models.Strike
			reason, proof, issuedBy sql.NullString
			issuedAt                int64
		)
		if err := rows.Scan(&st.ID, &st.StaffID, &reason, &proof, &issuedBy, &issuedAt); err != nil {
			return nil, errors.Internal(op, err)
		}
		st.Reason = reason.String
		st.Proof = proof.String
		st.IssuedBy = issuedBy.String
		st.IssuedAt = time.UnixMilli(issuedAt)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err)
	}
	return out, nil
}

func (s *SQLiteStore) DeleteStrike(ctx context.Context, id int64) (bool, error) {
	n, err := s.exec(ctx, "ledger.DeleteStrike", `DELETE FROM strikes WHERE id = ?`, id)
	return n > 0, err
}

// History

func (s *SQLiteStore) AddHistory(ctx context.Context, r models.PunishmentRecord) (int64, error) {
	return s.insert(ctx, "ledger.AddHistory",
		`INSERT INTO punishment_history (roblox_id, username, action, reason, proof, moderator, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SubjectID, r.Username, r.Action, r.Reason, r.Proof, r.Actor, r.Timestamp.UnixMilli())
}

const historyColumns = `id, roblox_id, username, action, reason, proof, moderator, timestamp`

func (s *SQLiteStore) HistoryBySubject(ctx context.Context, subjectID string) ([]models.PunishmentRecord, error) {
	return s.queryHistory(ctx, "ledger.HistoryBySubject",
		`SELECT `+historyColumns+` FROM punishment_history WHERE roblox_id = ? ORDER BY timestamp DESC, id DESC`, subjectID)
}

func (s *SQLiteStore) HistoryByActor(ctx context.Context, actor string, limit int) ([]models.PunishmentRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.queryHistory(ctx, "ledger.HistoryByActor",
		`SELECT `+historyColumns+` FROM punishment_history WHERE moderator = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, actor, limit)
}

func (s *SQLiteStore) queryHistory(ctx context.Context, op, query string, args ...interface{}) ([]models.PunishmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Internal(op, err)
	}
	defer rows.Close()

	out := make([]models.PunishmentRecord, 0)
	for rows.Next() {
		var (
			r                                             models.PunishmentRecord
			subject, username, action, reason, proof, mod sql.NullString
			ts                                            sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &subject, &username, &action, &reason, &proof, &mod, &ts); err != nil {
			return nil, errors.Internal(op, err)
		}
		r.SubjectID = subject.String
		r.Username = username.String
		r.Action = action.String
		r.Reason = reason.String
		r.Proof = proof.String
		r.Actor = mod.String
		r.Timestamp = time.UnixMilli(ts.Int64)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err)
	}
	return out, nil
}

// Settings

func (s *SQLiteStore) GetSetting(ctx context.Context, key, def string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, errors.Internal("ledger.GetSetting", err)
	}
	return value.String, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, "ledger.SetSetting", `INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (s *SQLiteStore) EnsureSetting(ctx context.Context, key, value string) (bool, error) {
	n, err := s.exec(ctx, "ledger.EnsureSetting", `INSERT OR IGNORE INTO config (key, value) VALUES (?, ?)`, key, value)
	return n > 0, err
}

var _ Store = (*SQLiteStore)(nil)
