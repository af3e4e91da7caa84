package models

import "time"

// Warning is an append-only record against a game subject
type Warning struct {
	ID        int64     `bson:"_id" json:"id"`
	SubjectID string    `bson:"roblox_id" json:"userId"`
	Username  string    `bson:"username" json:"username"`
	Reason    string    `bson:"reason" json:"reason"`
	Proof     string    `bson:"proof" json:"proof"`
	IssuedBy  string    `bson:"warned_by" json:"warnedBy"`
	IssuedAt  time.Time `bson:"warned_at" json:"warnedAt"`
}

// Strike is an append-only record against a staff member
type Strike struct {
	ID       int64     `bson:"_id" json:"id"`
	StaffID  string    `bson:"discord_id" json:"discordId"`
	Reason   string    `bson:"reason" json:"reason"`
	Proof    string    `bson:"proof" json:"proof"`
	IssuedBy string    `bson:"issued_by" json:"issuedBy"`
	IssuedAt time.Time `bson:"issued_at" json:"issuedAt"`
}
