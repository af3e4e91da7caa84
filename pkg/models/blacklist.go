package models

import "time"

// BlacklistedGroup is a game group barred from the game
type BlacklistedGroup struct {
	GroupID  string    `bson:"_id" json:"groupId"`
	IssuedBy string    `bson:"blacklisted_by" json:"blacklistedBy"`
	IssuedAt time.Time `bson:"blacklisted_at" json:"blacklistedAt"`
}
