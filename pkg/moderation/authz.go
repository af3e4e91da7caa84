package moderation

import (
	"context"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// StaffReader is the part of the ledger the authorizer needs
type StaffReader interface {
	GetStaff(ctx context.Context, discordID string) (*models.StaffMember, error)
}

// RankAtLeast reports whether have is the same as or above need
func RankAtLeast(have, need models.Rank) bool {
	return have.Valid() && have.Ordinal() >= need.Ordinal()
}

// Authorizer answers capability checks against the whitelist. The owner is
// always allowed, even when missing from the whitelist.
type Authorizer struct {
	staff   StaffReader
	ownerID string
}

// NewAuthorizer creates an Authorizer
func NewAuthorizer(staff StaffReader, ownerID string) *Authorizer {
	return &Authorizer{staff: staff, ownerID: ownerID}
}

// IsOwner reports whether subjectID is the configured bot owner
func (a *Authorizer) IsOwner(subjectID string) bool {
	return a.ownerID != "" && subjectID == a.ownerID
}

// RankOf returns the whitelisted rank of subjectID, "" when not staff
func (a *Authorizer) RankOf(ctx context.Context, subjectID string) (models.Rank, error) {
	m, err := a.staff.GetStaff(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if m == nil {
		if a.IsOwner(subjectID) {
			return models.RankOwner, nil
		}
		return "", nil
	}
	return m.Rank, nil
}

// HasCapability reports whether subjectID may run an action requiring need.
// The whitelist is read on every call so rank changes apply immediately.
func (a *Authorizer) HasCapability(ctx context.Context, subjectID string, need models.Rank) (bool, error) {
	if a.IsOwner(subjectID) {
		return true, nil
	}
	rank, err := a.RankOf(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return RankAtLeast(rank, need), nil
}

// Seeder inserts staff entries only when they are absent
type Seeder interface {
	EnsureStaff(ctx context.Context, m models.StaffMember) (bool, error)
}

// SeedOwner puts the owner in the whitelist as "owner" unless an entry
// already exists.
func SeedOwner(ctx context.Context, store Seeder, ownerID string, now time.Time) (bool, error) {
	if ownerID == "" {
		return false, nil
	}
	return store.EnsureStaff(ctx, models.StaffMember{
		DiscordID: ownerID,
		Rank:      models.RankOwner,
		AddedBy:   SystemActor,
		AddedAt:   now,
	})
}
