package models

import "time"

// PunishmentRecord is one immutable row of the audit trail
type PunishmentRecord struct {
	ID        int64     `bson:"_id" json:"id"`
	SubjectID string    `bson:"roblox_id" json:"userId"`
	Username  string    `bson:"username" json:"username"`
	Action    string    `bson:"action" json:"action"`
	Reason    string    `bson:"reason" json:"reason"`
	Proof     string    `bson:"proof" json:"proof"`
	Actor     string    `bson:"moderator" json:"moderator"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
