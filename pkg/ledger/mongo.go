package ledger

import (
	"context"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/database"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Collection names used by the mongo backend
const (
	CollWhitelist = "whitelist"
	CollBans      = "bans"
	CollGroups    = "blacklisted_crews"
	CollWarnings  = "warnings"
	CollStrikes   = "strikes"
	CollHistory   = "punishment_history"
	CollConfig    = "config"
)

// MongoStore is the MongoDB ledger backend. Whitelist reads go through the
// DataManager cache; everything else is read fresh.
type MongoStore struct {
	db       *database.Database
	staff    *database.DataManager[models.StaffMember]
	bans     *database.DataManager[models.Ban]
	groups   *database.DataManager[models.BlacklistedGroup]
	warnings *database.DataManager[models.Warning]
	strikes  *database.DataManager[models.Strike]
	history  *database.DataManager[models.PunishmentRecord]
	settings *database.DataManager[models.Setting]
}

// NewMongo builds the backend over a (possibly still connecting) database
func NewMongo(db *database.Database) *MongoStore {
	fresh := database.DefaultDataManagerOptions()
	cached := database.DefaultDataManagerOptions()
	cached.Cache = true
	queued := database.DefaultDataManagerOptions()
	queued.QueueOffline = true

	s := &MongoStore{
		db:       db,
		staff:    database.NewDataManager[models.StaffMember](CollWhitelist, db, cached),
		bans:     database.NewDataManager[models.Ban](CollBans, db, fresh),
		groups:   database.NewDataManager[models.BlacklistedGroup](CollGroups, db, fresh),
		warnings: database.NewDataManager[models.Warning](CollWarnings, db, fresh),
		strikes:  database.NewDataManager[models.Strike](CollStrikes, db, fresh),
		history:  database.NewDataManager[models.PunishmentRecord](CollHistory, db, fresh),
		settings: database.NewDataManager[models.Setting](CollConfig, db, queued),
	}
	s.staff.PrimeCache()
	return s
}

// Close disconnects from MongoDB
func (s *MongoStore) Close() error {
	return s.db.Disconnect()
}

func byID(id interface{}) bson.M {
	return bson.M{"_id": id}
}

func newestFirst(field string) bson.D {
	return bson.D{{Key: field, Value: -1}, {Key: "_id", Value: -1}}
}

// Staff

func (s *MongoStore) UpsertStaff(ctx context.Context, m models.StaffMember) error {
	_, err := s.staff.Set(ctx, byID(m.DiscordID), bson.M{
		"rank":     m.Rank,
		"added_by": m.AddedBy,
		"added_at": m.AddedAt,
	})
	return err
}

func (s *MongoStore) EnsureStaff(ctx context.Context, m models.StaffMember) (bool, error) {
	return s.staff.SetOnInsert(ctx, byID(m.DiscordID), bson.M{
		"rank":     m.Rank,
		"added_by": m.AddedBy,
		"added_at": m.AddedAt,
	})
}

func (s *MongoStore) GetStaff(ctx context.Context, discordID string) (*models.StaffMember, error) {
	return s.staff.Get(ctx, byID(discordID))
}

func (s *MongoStore) RemoveStaff(ctx context.Context, discordID string) (bool, error) {
	return s.staff.Delete(ctx, byID(discordID))
}

func (s *MongoStore) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	return s.staff.Find(ctx, bson.M{}, database.FindOptions{Sort: bson.D{{Key: "added_at", Value: 1}}})
}

// Bans

func (s *MongoStore) UpsertBan(ctx context.Context, b models.Ban) error {
	_, err := s.bans.Set(ctx, byID(b.SubjectID), bson.M{
		"username":   b.Username,
		"reason":     b.Reason,
		"proof":      b.Proof,
		"banned_by":  b.IssuedBy,
		"banned_at":  b.IssuedAt,
		"expires_at": b.ExpiresAt,
	})
	return err
}

func (s *MongoStore) GetBan(ctx context.Context, subjectID string) (*models.Ban, error) {
	return s.bans.Get(ctx, byID(subjectID))
}

func (s *MongoStore) DeleteBan(ctx context.Context, subjectID string) (bool, error) {
	return s.bans.Delete(ctx, byID(subjectID))
}

func (s *MongoStore) DeleteExpiredBan(ctx context.Context, subjectID string, now time.Time) (bool, error) {
	removed, err := s.bans.FindOneAndDelete(ctx,
		bson.M{"_id": subjectID, "expires_at": bson.M{"$ne": nil, "$lte": now}},
		nil,
	)
	return removed != nil, err
}

func (s *MongoStore) DeleteAllBans(ctx context.Context) (int64, error) {
	return s.bans.DeleteMany(ctx, bson.M{})
}

func (s *MongoStore) ListBans(ctx context.Context) ([]models.Ban, error) {
	return s.bans.Find(ctx, bson.M{}, database.FindOptions{Sort: bson.D{{Key: "banned_at", Value: -1}}})
}

func (s *MongoStore) ListExpiredBans(ctx context.Context, now time.Time) ([]models.Ban, error) {
	return s.bans.Find(ctx,
		bson.M{"expires_at": bson.M{"$ne": nil, "$lte": now}},
		database.FindOptions{Sort: bson.D{{Key: "expires_at", Value: 1}}},
	)
}

// Groups

func (s *MongoStore) UpsertGroup(ctx context.Context, g models.BlacklistedGroup) error {
	_, err := s.groups.Set(ctx, byID(g.GroupID), bson.M{
		"blacklisted_by": g.IssuedBy,
		"blacklisted_at": g.IssuedAt,
	})
	return err
}

func (s *MongoStore) DeleteGroup(ctx context.Context, groupID string) (bool, error) {
	return s.groups.Delete(ctx, byID(groupID))
}

func (s *MongoStore) ListGroups(ctx context.Context) ([]models.BlacklistedGroup, error) {
	return s.groups.Find(ctx, bson.M{}, database.FindOptions{Sort: bson.D{{Key: "blacklisted_at", Value: -1}}})
}

// Warnings

func (s *MongoStore) AddWarning(ctx context.Context, w models.Warning) (int64, error) {
	id, err := s.db.NextSequence(ctx, CollWarnings)
	if err != nil {
		return 0, err
	}
	w.ID = id
	if err := s.warnings.Insert(ctx, &w); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *MongoStore) CountWarnings(ctx context.Context, subjectID string) (int64, error) {
	return s.warnings.Count(ctx, bson.M{"roblox_id": subjectID})
}

func (s *MongoStore) ListWarnings(ctx context.Context, subjectID string) ([]models.Warning, error) {
	return s.warnings.Find(ctx, bson.M{"roblox_id": subjectID}, database.FindOptions{Sort: newestFirst("warned_at")})
}

func (s *MongoStore) ClearWarnings(ctx context.Context, subjectID string) (int64, error) {
	return s.warnings.DeleteMany(ctx, bson.M{"roblox_id": subjectID})
}

// Strikes

func (s *MongoStore) AddStrike(ctx context.Context, st models.Strike) (int64, error) {
	id, err := s.db.NextSequence(ctx, CollStrikes)
	if err != nil {
		return 0, err
	}
	st.ID = id
	if err := s.strikes.Insert(ctx, &st); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *MongoStore) CountStrikes(ctx context.Context, staffID string) (int64, error) {
	return s.strikes.Count(ctx, bson.M{"discord_id": staffID})
}

func (s *MongoStore) ListStrikes(ctx context.Context, staffID string) ([]models.Strike, error) {
	return s.strikes.Find(ctx, bson.M{"discord_id": staffID}, database.FindOptions{Sort: newestFirst("issued_at")})
}

func (s *MongoStore) DeleteStrike(ctx context.Context, id int64) (bool, error) {
	return s.strikes.Delete(ctx, byID(id))
}

// History

func (s *MongoStore) AddHistory(ctx context.Context, r models.PunishmentRecord) (int64, error) {
	id, err := s.db.NextSequence(ctx, CollHistory)
	if err != nil {
		return 0, err
	}
	r.ID = id
	if err := s.history.Insert(ctx, &r); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *MongoStore) HistoryBySubject(ctx context.Context, subjectID string) ([]models.PunishmentRecord, error) {
	return s.history.Find(ctx, bson.M{"roblox_id": subjectID}, database.FindOptions{Sort: newestFirst("timestamp")})
}

func (s *MongoStore) HistoryByActor(ctx context.Context, actor string, limit int) ([]models.PunishmentRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.history.Find(ctx, bson.M{"moderator": actor}, database.FindOptions{
		Sort:  newestFirst("timestamp"),
		Limit: int64(limit),
	})
}

// Settings

func (s *MongoStore) GetSetting(ctx context.Context, key, def string) (string, error) {
	setting, err := s.settings.Get(ctx, byID(key))
	if err != nil {
		return def, err
	}
	if setting == nil {
		return def, nil
	}
	return setting.Value, nil
}

func (s *MongoStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.settings.Set(ctx, byID(key), bson.M{"value": value})
	return err
}

func (s *MongoStore) EnsureSetting(ctx context.Context, key, value string) (bool, error) {
	return s.settings.SetOnInsert(ctx, byID(key), bson.M{"value": value})
}

var _ Store = (*MongoStore)(nil)
