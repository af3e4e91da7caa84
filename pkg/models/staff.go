package models

import (
	"strings"
	"time"
)

// Rank is a staff authorization level
type Rank string

const (
	RankModerator Rank = "moderator"
	RankAdmin     Rank = "admin"
	RankManager   Rank = "manager"
	RankOwner     Rank = "owner"
)

// Ranks lists every rank from lowest to highest
var Ranks = []Rank{RankModerator, RankAdmin, RankManager, RankOwner}

// Ordinal returns the position of the rank in the hierarchy, 0 when unknown
func (r Rank) Ordinal() int {
	switch r {
	case RankModerator:
		return 1
	case RankAdmin:
		return 2
	case RankManager:
		return 3
	case RankOwner:
		return 4
	}
	return 0
}

// Valid reports whether r is one of the known ranks
func (r Rank) Valid() bool {
	return r.Ordinal() > 0
}

// Title returns the rank capitalized for display
func (r Rank) Title() string {
	if r == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// ParseRank parses a rank name case-insensitively
func ParseRank(s string) (Rank, bool) {
	r := Rank(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// StaffMember is an entry of the authorization whitelist
type StaffMember struct {
	DiscordID string    `bson:"_id" json:"discordId"`
	Rank      Rank      `bson:"rank" json:"rank"`
	AddedBy   string    `bson:"added_by" json:"addedBy"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

// Setting is one key/value pair of the runtime configuration store
type Setting struct {
	Key   string `bson:"_id" json:"key"`
	Value string `bson:"value" json:"value"`
}

// Setting keys
const (
	SettingPlaceID    = "PLACE_ID"
	SettingUniverseID = "UNIVERSE_ID"
)
