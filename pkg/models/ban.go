package models

import "time"

// Ban is an active ban. There is at most one per subject.
type Ban struct {
	SubjectID string     `bson:"_id" json:"userId"`
	Username  string     `bson:"username" json:"username"`
	Reason    string     `bson:"reason" json:"reason"`
	Proof     string     `bson:"proof" json:"proof"`
	IssuedBy  string     `bson:"banned_by" json:"bannedBy"`
	IssuedAt  time.Time  `bson:"banned_at" json:"bannedAt"`
	ExpiresAt *time.Time `bson:"expires_at" json:"expiresAt"`
}

// IsPermanent reports whether the ban never expires
func (b *Ban) IsPermanent() bool {
	return b.ExpiresAt == nil
}

// IsExpired reports whether the ban's expiry is at or before now
func (b *Ban) IsExpired(now time.Time) bool {
	return b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}
