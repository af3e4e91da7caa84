// Package models holds the records shared by the queue service, the ledger and the bot.
package models

import (
	"bytes"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Action is the verb of a relayed command
type Action string

const (
	ActionBan                 Action = "ban"
	ActionUnban               Action = "unban"
	ActionUnbanWave           Action = "unbanwave"
	ActionKick                Action = "kick"
	ActionWarn                Action = "warn"
	ActionMute                Action = "mute"
	ActionUnmute              Action = "unmute"
	ActionMessage             Action = "message"
	ActionAnnounce            Action = "announce"
	ActionAddCash             Action = "addcash"
	ActionRemoveCash          Action = "removecash"
	ActionSetCash             Action = "setcash"
	ActionRestartAllServers   Action = "restartallservers"
	ActionBlacklistCrew       Action = "blacklistcrew"
	ActionRemoveCrewBlacklist Action = "removecrewblacklist"
)

// UpdatesMirror reports whether enqueuing the action also changes the ban/group mirror
func (a Action) UpdatesMirror() bool {
	switch a {
	case ActionBan, ActionUnban, ActionUnbanWave, ActionBlacklistCrew, ActionRemoveCrewBlacklist:
		return true
	}
	return false
}

// Command is one entry of the relay queue. Only Executed ever changes.
type Command struct {
	ID        int64           `json:"id"`
	Action    Action          `json:"action"`
	Payload   json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"-"`
	Executed  bool            `json:"executed"`
}

// SubjectID is a game account id. It decodes from a JSON string or number and
// always encodes as a string.
type SubjectID string

func (s *SubjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = SubjectID(str)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return err
	}
	*s = SubjectID(data)
	return nil
}

func (s SubjectID) String() string {
	return string(s)
}

// Wire payloads, as consumed by the game server.

// BanPayload is the data of a ban command. ExpiresAt is unix milliseconds; nil means permanent.
type BanPayload struct {
	UserID    SubjectID `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Proof     string    `json:"proof,omitempty"`
	BannedBy  string    `json:"bannedBy,omitempty"`
	ExpiresAt *int64    `json:"expiresAt"`
}

// SubjectPayload carries only the target (unban, unmute)
type SubjectPayload struct {
	UserID SubjectID `json:"userId"`
}

type KickPayload struct {
	UserID SubjectID `json:"userId"`
	Reason string    `json:"reason"`
}

// WarnPayload tells the game to show a warning to the player
type WarnPayload struct {
	UserID SubjectID `json:"userId"`
	Reason string    `json:"reason"`
}

// MutePayload duration is in milliseconds
type MutePayload struct {
	UserID   SubjectID `json:"userId"`
	Duration int64     `json:"duration"`
	Reason   string    `json:"reason"`
}

type MessagePayload struct {
	UserID  SubjectID `json:"userId"`
	Message string    `json:"message"`
}

type AnnouncePayload struct {
	Message string `json:"message"`
}

type CashPayload struct {
	UserID SubjectID `json:"userId"`
	Amount int64     `json:"amount"`
}

type GroupPayload struct {
	GroupID       SubjectID `json:"groupId"`
	BlacklistedBy string    `json:"blacklistedBy,omitempty"`
}

// EmptyPayload is sent for unbanwave and restartallservers
type EmptyPayload struct{}

// UnixMillis converts t to the millisecond timestamps used on the wire
func UnixMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromUnixMillis is the inverse of UnixMillis
func FromUnixMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
