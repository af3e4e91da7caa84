package moderation

import (
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// EscalationThreshold is the warning/strike count that triggers an automatic
// action. Every count at or past it triggers again.
const EscalationThreshold = 3

// Auto-ban constants
const (
	AutoBanDuration    = 72 * time.Hour
	AutoBanReason      = "3 Warnings Auto-Ban"
	AutoBanRelayReason = "3 Warnings"
	AutoBanProof       = "Automated"
	AutoBanHistory     = "Auto-Ban (3d)"
	SystemActor        = "SYSTEM"
)

// WarningEscalation returns the ban to issue after a warning brought the
// subject's count to count.
func WarningEscalation(subjectID, username string, count int64, now time.Time) (models.Ban, bool) {
	if count < EscalationThreshold {
		return models.Ban{}, false
	}
	expires := now.Add(AutoBanDuration)
	return models.Ban{
		SubjectID: subjectID,
		Username:  username,
		Reason:    AutoBanReason,
		Proof:     AutoBanProof,
		IssuedBy:  SystemActor,
		IssuedAt:  now,
		ExpiresAt: &expires,
	}, true
}

// StrikeEscalation reports whether a staff member with count strikes loses
// their whitelist entry
func StrikeEscalation(count int64) bool {
	return count >= EscalationThreshold
}
