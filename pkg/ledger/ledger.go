// Package ledger stores the producer's punishment state: the staff
// whitelist, the local ban and group mirrors, warnings, strikes, the audit
// trail and the runtime settings.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/database"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// DefaultHistoryLimit caps HistoryByActor when no limit is given
const DefaultHistoryLimit = 25

// Store is the ledger. Lists ordered "newest first" break timestamp ties by
// descending id.
type Store interface {
	// Staff whitelist
	UpsertStaff(ctx context.Context, m models.StaffMember) error
	GetStaff(ctx context.Context, discordID string) (*models.StaffMember, error)
	RemoveStaff(ctx context.Context, discordID string) (bool, error)
	ListStaff(ctx context.Context) ([]models.StaffMember, error)
	EnsureStaff(ctx context.Context, m models.StaffMember) (bool, error)

	// Ban mirror
	UpsertBan(ctx context.Context, b models.Ban) error
	GetBan(ctx context.Context, subjectID string) (*models.Ban, error)
	DeleteBan(ctx context.Context, subjectID string) (bool, error)
	DeleteAllBans(ctx context.Context) (int64, error)
	ListBans(ctx context.Context) ([]models.Ban, error)
	ListExpiredBans(ctx context.Context, now time.Time) ([]models.Ban, error)
	// DeleteExpiredBan removes the ban only while it is still expired at now.
	// A ban re-issued since it was listed is left alone.
	DeleteExpiredBan(ctx context.Context, subjectID string, now time.Time) (bool, error)

	// Group mirror
	UpsertGroup(ctx context.Context, g models.BlacklistedGroup) error
	DeleteGroup(ctx context.Context, groupID string) (bool, error)
	ListGroups(ctx context.Context) ([]models.BlacklistedGroup, error)

	// Warnings
	AddWarning(ctx context.Context, w models.Warning) (int64, error)
	CountWarnings(ctx context.Context, subjectID string) (int64, error)
	ListWarnings(ctx context.Context, subjectID string) ([]models.Warning, error)
	ClearWarnings(ctx context.Context, subjectID string) (int64, error)

	// Strikes
	AddStrike(ctx context.Context, s models.Strike) (int64, error)
	CountStrikes(ctx context.Context, staffID string) (int64, error)
	ListStrikes(ctx context.Context, staffID string) ([]models.Strike, error)
	DeleteStrike(ctx context.Context, id int64) (bool, error)

	// Audit trail
	AddHistory(ctx context.Context, r models.PunishmentRecord) (int64, error)
	HistoryBySubject(ctx context.Context, subjectID string) ([]models.PunishmentRecord, error)
	HistoryByActor(ctx context.Context, actor string, limit int) ([]models.PunishmentRecord, error)

	// Settings
	GetSetting(ctx context.Context, key, def string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	EnsureSetting(ctx context.Context, key, value string) (bool, error)

	Close() error
}

// Drivers
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config selects and configures a backend
type Config struct {
	Driver   string
	Path     string
	MongoURL string
	DBName   string
}

// Open opens the backend named by cfg.Driver
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite:
		store, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMongo, "":
		db, err := database.Init(cfg.MongoURL, cfg.DBName)
		if err != nil {
			// The database keeps reconnecting in the background.
			return NewMongo(db), err
		}
		return NewMongo(db), nil
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", cfg.Driver)
	}
}
