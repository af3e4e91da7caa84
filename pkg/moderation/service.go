// Package moderation implements the producer side of the relay: every staff
// action updates the local ledger, is forwarded to the queue API and is
// recorded in the audit trail.
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/ledger"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// Relay forwards commands to the queue API
type Relay interface {
	Submit(ctx context.Context, action models.Action, payload interface{}) (int64, error)
}

// Player is a resolved game account
type Player struct {
	ID   string
	Name string
}

// Result describes what a mutation did. Relayed is false when the queue API
// could not be reached; the ledger change stands anyway.
type Result struct {
	CommandID int64
	Relayed   bool

	// Count is the warning or strike count after the action
	Count     int64
	Escalated bool

	// EscalationRelayed reports the relay outcome of the automatic ban
	EscalationRelayed bool

	ExpiresAt *time.Time
	Affected  int64
	Rank      models.Rank
}

// Options configures a Service
type Options struct {
	OwnerID      string
	RemovalOrder RemovalOrder
	// Defaults for the runtime settings, used until they are changed
	PlaceID    string
	UniverseID string
	Now        func() time.Time
}

// Service runs moderation actions
type Service struct {
	store ledger.Store
	relay Relay
	opts  Options
	authz *Authorizer
	now   func() time.Time
}

const logPrefix = "Moderation"

// NewService creates a Service over store and relay
func NewService(store ledger.Store, relay Relay, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store: store,
		relay: relay,
		opts:  opts,
		authz: NewAuthorizer(store, opts.OwnerID),
		now:   now,
	}
}

// Authorizer returns the capability checker bound to this service's ledger
func (s *Service) Authorizer() *Authorizer {
	return s.authz
}

// Bootstrap seeds the owner into the whitelist and stores the default game
// identifiers when none are set yet.
func (s *Service) Bootstrap(ctx context.Context) error {
	if _, err := SeedOwner(ctx, s.store, s.opts.OwnerID, s.now()); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	if s.opts.PlaceID != "" {
		if _, err := s.store.EnsureSetting(ctx, models.SettingPlaceID, s.opts.PlaceID); err != nil {
			return fmt.Errorf("seed place id: %w", err)
		}
	}
	if s.opts.UniverseID != "" {
		if _, err := s.store.EnsureSetting(ctx, models.SettingUniverseID, s.opts.UniverseID); err != nil {
			return fmt.Errorf("seed universe id: %w", err)
		}
	}
	return nil
}

// submit relays a command. Failures are logged and reported, never returned.
func (s *Service) submit(ctx context.Context, action models.Action, payload interface{}) (int64, bool) {
	if s.relay == nil {
		return 0, false
	}
	id, err := s.relay.Submit(ctx, action, payload)
	if err != nil {
		logger.Warn(fmt.Sprintf("Could not relay %s: %v", action, err), logPrefix)
		return 0, false
	}
	return id, true
}

func (s *Service) record(ctx context.Context, p Player, action, reason, proof, actor string) error {
	_, err := s.store.AddHistory(ctx, models.PunishmentRecord{
		SubjectID: p.ID,
		Username:  p.Name,
		Action:    action,
		Reason:    reason,
		Proof:     proof,
		Actor:     actor,
		Timestamp: s.now(),
	})
	return err
}

func requirePlayer(op string, p Player) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.Validation(op, "a player is required")
	}
	return nil
}

func requireText(op, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Validation(op, "%s is required", field)
	}
	return nil
}

// Ban permanently bans p
func (s *Service) Ban(ctx context.Context, actor string, p Player, reason, proof string) (Result, error) {
	return s.ban(ctx, "Ban", actor, p, reason, proof, nil, "Ban")
}

// TempBan bans p for the given duration ("3d 2h")
func (s *Service) TempBan(ctx context.Context, actor string, p Player, duration, reason, proof string) (Result, error) {
	d, err := ParseDuration(duration)
	if err != nil {
		return Result{}, err
	}
	expires := s.now().Add(d)
	return s.ban(ctx, "TempBan", actor, p, reason, proof, &expires, fmt.Sprintf("Tempban (%s)", duration))
}

func (s *Service) ban(ctx context.Context, op, actor string, p Player, reason, proof string, expires *time.Time, label string) (Result, error) {
	if err := requirePlayer(op, p); err != nil {
		return Result{}, err
	}
	if err := requireText(op, "reason", reason); err != nil {
		return Result{}, err
	}

	ban := models.Ban{
		SubjectID: p.ID,
		Username:  p.Name,
		Reason:    reason,
		Proof:     proof,
		IssuedBy:  actor,
		IssuedAt:  s.now(),
		ExpiresAt: expires,
	}
	if err := s.store.UpsertBan(ctx, ban); err != nil {
		return Result{}, err
	}

	id, ok := s.submit(ctx, models.ActionBan, banPayload(ban, reason))
	if err := s.record(ctx, p, label, reason, proof, actor); err != nil {
		return Result{}, err
	}
	return Result{CommandID: id, Relayed: ok, ExpiresAt: expires}, nil
}

func banPayload(b models.Ban, reason string) models.BanPayload {
	payload := models.BanPayload{
		UserID:   models.SubjectID(b.SubjectID),
		Username: b.Username,
		Reason:   reason,
		Proof:    b.Proof,
		BannedBy: b.IssuedBy,
	}
	if b.ExpiresAt != nil {
		ms := models.UnixMillis(*b.ExpiresAt)
		payload.ExpiresAt = &ms
	}
	return payload
}

// Unban lifts the ban on p. Unbanning a player that is not banned still
// relays the command.
func (s *Service) Unban(ctx context.Context, actor string, p Player, reason, proof string) (Result, error) {
	if err := requirePlayer("Unban", p); err != nil {
		return Result{}, err
	}
	existed, err := s.store.DeleteBan(ctx, p.ID)
	if err != nil {
		return Result{}, err
	}

	id, ok := s.submit(ctx, models.ActionUnban, models.SubjectPayload{UserID: models.SubjectID(p.ID)})
	if err := s.record(ctx, p, "Unban", reason, proof, actor); err != nil {
		return Result{}, err
	}
	res := Result{CommandID: id, Relayed: ok}
	if existed {
		res.Affected = 1
	}
	return res, nil
}

// UnbanWave lifts every ban
func (s *Service) UnbanWave(ctx context.Context, actor string) (Result, error) {
	n, err := s.store.DeleteAllBans(ctx)
	if err != nil {
		return Result{}, err
	}
	logger.Info(fmt.Sprintf("Unban wave by %s lifted %d bans", actor, n), logPrefix)

	id, ok := s.submit(ctx, models.ActionUnbanWave, models.EmptyPayload{})
	return Result{CommandID: id, Relayed: ok, Affected: n}, nil
}

// CheckBan returns the active ban on subjectID, nil when there is none
func (s *Service) CheckBan(ctx context.Context, subjectID string) (*models.Ban, error) {
	return s.store.GetBan(ctx, subjectID)
}

// ActiveBans lists the ban mirror
func (s *Service) ActiveBans(ctx context.Context) ([]models.Ban, error) {
	return s.store.ListBans(ctx)
}

// Kick removes p from the game server it is on
func (s *Service) Kick(ctx context.Context, actor string, p Player, reason, proof string) (Result, error) {
	if err := requirePlayer("Kick", p); err != nil {
		return Result{}, err
	}
	if err := requireText("Kick", "reason", reason); err != nil {
		return Result{}, err
	}

	id, ok := s.submit(ctx, models.ActionKick, models.KickPayload{UserID: models.SubjectID(p.ID), Reason: reason})
	if err := s.record(ctx, p, "Kick", reason, proof, actor); err != nil {
		return Result{}, err
	}
	return Result{CommandID: id, Relayed: ok}, nil
}

// Warn records a warning against p. At EscalationThreshold warnings or more
// p is also banned for three days.
func (s *Service) Warn(ctx context.Context, actor string, p Player, reason, proof string) (Result, error) {
	if err := requirePlayer("Warn", p); err != nil {
		return Result{}, err
	}
	if err := requireText("Warn", "reason", reason); err != nil {
		return Result{}, err
	}

	now := s.now()
	if _, err := s.store.AddWarning(ctx, models.Warning{
		SubjectID: p.ID,
		Username:  p.Name,
		Reason:    reason,
		Proof:     proof,
		IssuedBy:  actor,
		IssuedAt:  now,
	}); err != nil {
		return Result{}, err
	}

	id, ok := s.submit(ctx, models.ActionWarn, models.WarnPayload{UserID: models.SubjectID(p.ID), Reason: reason})

	count, err := s.store.CountWarnings(ctx, p.ID)
	if err != nil {
		return Result{}, err
	}
	if err := s.record(ctx, p, "Warn", reason, proof, actor); err != nil {
		return Result{}, err
	}

	res := Result{CommandID: id, Relayed: ok, Count: count}

	ban, escalate := WarningEscalation(p.ID, p.Name, count, now)
	if !escalate {
		return res, nil
	}
	if err := s.store.UpsertBan(ctx, ban); err != nil {
		return res, err
	}
	_, res.EscalationRelayed = s.submit(ctx, models.ActionBan, banPayload(ban, AutoBanRelayReason))
	if err := s.record(ctx, p, AutoBanHistory, AutoBanReason, AutoBanProof, SystemActor); err != nil {
		return res, err
	}
	res.Escalated = true
	res.ExpiresAt = ban.ExpiresAt
	logger.Info(fmt.Sprintf("Player %s auto-banned after %d warnings", p.ID, count), logPrefix)
	return res, nil
}

// Warnings lists the warnings of subjectID, newest first
func (s *Service) Warnings(ctx context.Context, subjectID string) ([]models.Warning, error) {
	return s.store.ListWarnings(ctx, subjectID)
}

// ClearWarnings deletes every warning of subjectID. Bans already issued by
// escalation are left alone.
func (s *Service) ClearWarnings(ctx context.Context, actor, subjectID string) (int64, error) {
	n, err := s.store.ClearWarnings(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	logger.Info(fmt.Sprintf("%s cleared %d warnings of %s", actor, n, subjectID), logPrefix)
	return n, nil
}

// History lists every punishment recorded against subjectID, newest first
func (s *Service) History(ctx context.Context, subjectID string) ([]models.PunishmentRecord, error) {
	return s.store.HistoryBySubject(ctx, subjectID)
}

// Mute silences p in chat for the given duration
func (s *Service) Mute(ctx context.Context, actor string, p Player, duration, reason, proof string) (Result, error) {
	if err := requirePlayer("Mute", p); err != nil {
		return Result{}, err
	}
	d, err := ParseDuration(duration)
	if err != nil {
		return Result{}, err
	}
	expires := s.now().Add(d)

	id, ok := s.submit(ctx, models.ActionMute, models.MutePayload{
		UserID:   models.SubjectID(p.ID),
		Duration: d.Milliseconds(),
		Reason:   reason,
	})
	if err := s.record(ctx, p, fmt.Sprintf("Mute (%s)", duration), reason, proof, actor); err != nil {
		return Result{}, err
	}
	return Result{CommandID: id, Relayed: ok, ExpiresAt: &expires}, nil
}

// Unmute lifts a mute
func (s *Service) Unmute(ctx context.Context, actor string, p Player, reason string) (Result, error) {
	if err := requirePlayer("Unmute", p); err != nil {
		return Result{}, err
	}
	id, ok := s.submit(ctx, models.ActionUnmute, models.SubjectPayload{UserID: models.SubjectID(p.ID)})
	if err := s.record(ctx, p, "Unmute", reason, "N/A", actor); err != nil {
		return Result{}, err
	}
	return Result{CommandID: id, Relayed: ok}, nil
}

// Message sends a private message to p in game
func (s *Service) Message(ctx context.Context, p Player, message string) (Result, error) {
	if err := requirePlayer("Message", p); err != nil {
		return Result{}, err
	}
	if err := requireText("Message", "message", message); err != nil {
		return Result{}, err
	}
	id, ok := s.submit(ctx, models.ActionMessage, models.MessagePayload{UserID: models.SubjectID(p.ID), Message: message})
	return Result{CommandID: id, Relayed: ok}, nil
}

// Announce broadcasts message to every server
func (s *Service) Announce(ctx context.Context, message string) (Result, error) {
	if err := requireText("Announce", "message", message); err != nil {
		return Result{}, err
	}
	id, ok := s.submit(ctx, models.ActionAnnounce, models.AnnouncePayload{Message: message})
	return Result{CommandID: id, Relayed: ok}, nil
}

// AddCash gives p amount of in-game cash
func (s *Service) AddCash(ctx context.Context, p Player, amount int64) (Result, error) {
	return s.cash(ctx, "AddCash", models.ActionAddCash, p, amount, 1)
}

// RemoveCash takes amount of in-game cash from p
func (s *Service) RemoveCash(ctx context.Context, p Player, amount int64) (Result, error) {
	return s.cash(ctx, "RemoveCash", models.ActionRemoveCash, p, amount, 1)
}

// SetCash overwrites p's balance
func (s *Service) SetCash(ctx context.Context, p Player, amount int64) (Result, error) {
	return s.cash(ctx, "SetCash", models.ActionSetCash, p, amount, 0)
}

func (s *Service) cash(ctx context.Context, op string, action models.Action, p Player, amount, min int64) (Result, error) {
	if err := requirePlayer(op, p); err != nil {
		return Result{}, err
	}
	if amount < min {
		return Result{}, errors.Validation(op, "amount must be at least %d", min)
	}
	id, ok := s.submit(ctx, action, models.CashPayload{UserID: models.SubjectID(p.ID), Amount: amount})
	return Result{CommandID: id, Relayed: ok}, nil
}

// RestartAllServers asks every game server to restart
func (s *Service) RestartAllServers(ctx context.Context) (Result, error) {
	id, ok := s.submit(ctx, models.ActionRestartAllServers, models.EmptyPayload{})
	return Result{CommandID: id, Relayed: ok}, nil
}

// BlacklistGroup bars every member of groupID from the game
func (s *Service) BlacklistGroup(ctx context.Context, actor, groupID string) (Result, error) {
	groupID = strings.TrimSpace(groupID)
	if err := requireText("BlacklistGroup", "group id", groupID); err != nil {
		return Result{}, err
	}
	if err := s.store.UpsertGroup(ctx, models.BlacklistedGroup{
		GroupID:  groupID,
		IssuedBy: actor,
		IssuedAt: s.now(),
	}); err != nil {
		return Result{}, err
	}
	id, ok := s.submit(ctx, models.ActionBlacklistCrew, models.GroupPayload{GroupID: models.SubjectID(groupID), BlacklistedBy: actor})
	return Result{CommandID: id, Relayed: ok}, nil
}

// RemoveGroupBlacklist lifts the blacklist on groupID
func (s *Service) RemoveGroupBlacklist(ctx context.Context, groupID string) (Result, error) {
	groupID = strings.TrimSpace(groupID)
	if err := requireText("RemoveGroupBlacklist", "group id", groupID); err != nil {
		return Result{}, err
	}
	existed, err := s.store.DeleteGroup(ctx, groupID)
	if err != nil {
		return Result{}, err
	}
	id, ok := s.submit(ctx, models.ActionRemoveCrewBlacklist, models.GroupPayload{GroupID: models.SubjectID(groupID)})
	res := Result{CommandID: id, Relayed: ok}
	if existed {
		res.Affected = 1
	}
	return res, nil
}

// BlacklistedGroups lists the group mirror
func (s *Service) BlacklistedGroups(ctx context.Context) ([]models.BlacklistedGroup, error) {
	return s.store.ListGroups(ctx)
}

// Whitelist adds or re-ranks a staff member
func (s *Service) Whitelist(ctx context.Context, actor, discordID string, rank models.Rank) error {
	if err := requireText("Whitelist", "user", discordID); err != nil {
		return err
	}
	r, ok := models.ParseRank(string(rank))
	if !ok {
		return errors.Validation("Whitelist", "unknown rank %q", rank)
	}
	return s.store.UpsertStaff(ctx, models.StaffMember{
		DiscordID: discordID,
		Rank:      r,
		AddedBy:   actor,
		AddedAt:   s.now(),
	})
}

// RemoveWhitelist revokes every capability of discordID
func (s *Service) RemoveWhitelist(ctx context.Context, discordID string) (bool, error) {
	return s.store.RemoveStaff(ctx, discordID)
}

// Staff lists the whitelist
func (s *Service) Staff(ctx context.Context) ([]models.StaffMember, error) {
	return s.store.ListStaff(ctx)
}

func (s *Service) requireStaff(ctx context.Context, op, discordID string) (*models.StaffMember, error) {
	m, err := s.store.GetStaff(ctx, discordID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NotFound(op, "This member is not a staff member.")
	}
	return m, nil
}

// Strike records a strike against a staff member. At EscalationThreshold
// strikes or more the member is removed from the whitelist.
func (s *Service) Strike(ctx context.Context, actor, staffID, reason, proof string) (Result, error) {
	if err := requireText("Strike", "reason", reason); err != nil {
		return Result{}, err
	}
	member, err := s.requireStaff(ctx, "Strike", staffID)
	if err != nil {
		return Result{}, err
	}

	if _, err := s.store.AddStrike(ctx, models.Strike{
		StaffID:  staffID,
		Reason:   reason,
		Proof:    proof,
		IssuedBy: actor,
		IssuedAt: s.now(),
	}); err != nil {
		return Result{}, err
	}
	count, err := s.store.CountStrikes(ctx, staffID)
	if err != nil {
		return Result{}, err
	}

	res := Result{Count: count, Rank: member.Rank}
	if StrikeEscalation(count) {
		if _, err := s.store.RemoveStaff(ctx, staffID); err != nil {
			return res, err
		}
		res.Escalated = true
		logger.Warn(fmt.Sprintf("Staff member %s removed after %d strikes", staffID, count), logPrefix)
	}
	return res, nil
}

// RemoveStrike deletes one strike of a staff member, chosen by the
// configured RemovalOrder. Affected holds the count before removal.
func (s *Service) RemoveStrike(ctx context.Context, staffID string) (Result, error) {
	member, err := s.requireStaff(ctx, "RemoveStrike", staffID)
	if err != nil {
		return Result{}, err
	}
	strikes, err := s.store.ListStrikes(ctx, staffID)
	if err != nil {
		return Result{}, err
	}
	target, ok := s.opts.RemovalOrder.Pick(strikes)
	if !ok {
		return Result{}, errors.NotFound("RemoveStrike", "no strikes to remove")
	}
	if _, err := s.store.DeleteStrike(ctx, target.ID); err != nil {
		return Result{}, err
	}
	count, err := s.store.CountStrikes(ctx, staffID)
	if err != nil {
		return Result{}, err
	}
	return Result{Count: count, Affected: int64(len(strikes)), Rank: member.Rank}, nil
}

// Strikes lists the strikes of a staff member, newest first
func (s *Service) Strikes(ctx context.Context, staffID string) ([]models.Strike, error) {
	return s.store.ListStrikes(ctx, staffID)
}

// StaffLogs lists the latest actions taken by a staff member
func (s *Service) StaffLogs(ctx context.Context, staffID string) ([]models.PunishmentRecord, error) {
	if _, err := s.requireStaff(ctx, "StaffLogs", staffID); err != nil {
		return nil, err
	}
	return s.store.HistoryByActor(ctx, staffID, ledger.DefaultHistoryLimit)
}

// PlaceID returns the current game place id
func (s *Service) PlaceID(ctx context.Context) (string, error) {
	return s.store.GetSetting(ctx, models.SettingPlaceID, s.opts.PlaceID)
}

// UniverseID returns the current game universe id
func (s *Service) UniverseID(ctx context.Context) (string, error) {
	return s.store.GetSetting(ctx, models.SettingUniverseID, s.opts.UniverseID)
}

// SetPlaceID changes the game place id
func (s *Service) SetPlaceID(ctx context.Context, id string) error {
	return s.setNumericSetting(ctx, "SetPlaceID", models.SettingPlaceID, id)
}

// SetUniverseID changes the game universe id used for stats
func (s *Service) SetUniverseID(ctx context.Context, id string) error {
	return s.setNumericSetting(ctx, "SetUniverseID", models.SettingUniverseID, id)
}

func (s *Service) setNumericSetting(ctx context.Context, op, key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" || strings.Trim(value, "0123456789") != "" {
		return errors.Validation(op, "%q is not a numeric id", value)
	}
	return s.store.SetSetting(ctx, key, value)
}
