// Package models contains the database document models for the bot.
package models

import "time"

// Requirements holds the optional entry requirements of a giveaway.
// A zero value in any field means the requirement is not set.
type Requirements struct {
	RoleID         string `bson:"roleId,omitempty" json:"roleId,omitempty"`
	Invites        int    `bson:"invites,omitempty" json:"invites,omitempty"`
	AccountAgeDays int    `bson:"accountAgeDays,omitempty" json:"accountAgeDays,omitempty"`
	ServerAgeDays  int    `bson:"serverAgeDays,omitempty" json:"serverAgeDays,omitempty"`
	Messages       int64  `bson:"messages,omitempty" json:"messages,omitempty"`
	VoiceMinutes   int64  `bson:"voiceMinutes,omitempty" json:"voiceMinutes,omitempty"`
	Captcha        bool   `bson:"captcha,omitempty" json:"captcha,omitempty"`
}

// Empty reports whether no requirement is configured at all.
func (r *Requirements) Empty() bool {
	if r == nil {
		return true
	}
	return r.RoleID == "" && r.Invites == 0 && r.AccountAgeDays == 0 &&
		r.ServerAgeDays == 0 && r.Messages == 0 && r.VoiceMinutes == 0 && !r.Captcha
}

// Giveaway represents an active or ended giveaway.
// Ended flips false -> true exactly once, via GiveawayStore.ClaimEnd.
type Giveaway struct {
	ID            string        `bson:"_id" json:"id"`
	MessageID     string        `bson:"messageId" json:"messageId"`
	ChannelID     string        `bson:"channelId" json:"channelId"`
	GuildID       string        `bson:"guildId" json:"guildId"`
	HostID        string        `bson:"hostId" json:"hostId"`
	Prize         string        `bson:"prize" json:"prize"`
	WinnerCount   int           `bson:"winnerCount" json:"winnerCount"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	EndsAt        time.Time     `bson:"endsAt" json:"endsAt"`
	Ended         bool          `bson:"ended" json:"ended"`
	Emoji         string        `bson:"emoji" json:"emoji"`
	Requirements  *Requirements `bson:"requirements,omitempty" json:"requirements,omitempty"`
	EntryRoleID   string        `bson:"entryRoleId,omitempty" json:"entryRoleId,omitempty"`
	WinnerRoleID  string        `bson:"winnerRoleId,omitempty" json:"winnerRoleId,omitempty"`
	CustomMessage string        `bson:"customMessage,omitempty" json:"customMessage,omitempty"`
	Thumbnail     string        `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
}

// ScheduledGiveaway is a pending giveaway waiting for its start time.
// It is consumed exactly once: promoted into a Giveaway and removed, or
// removed directly by cancellation.
type ScheduledGiveaway struct {
	ID            string        `bson:"_id" json:"id"`
	GuildID       string        `bson:"guildId" json:"guildId"`
	ChannelID     string        `bson:"channelId" json:"channelId"`
	HostID        string        `bson:"hostId" json:"hostId"`
	Prize         string        `bson:"prize" json:"prize"`
	WinnerCount   int           `bson:"winnerCount" json:"winnerCount"`
	StartAt       time.Time     `bson:"startAt" json:"startAt"`
	DurationMS    int64         `bson:"durationMs" json:"durationMs"`
	Emoji         string        `bson:"emoji" json:"emoji"`
	Requirements  *Requirements `bson:"requirements,omitempty" json:"requirements,omitempty"`
	EntryRoleID   string        `bson:"entryRoleId,omitempty" json:"entryRoleId,omitempty"`
	WinnerRoleID  string        `bson:"winnerRoleId,omitempty" json:"winnerRoleId,omitempty"`
	CustomMessage string        `bson:"customMessage,omitempty" json:"customMessage,omitempty"`
	Thumbnail     string        `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Announcement  string        `bson:"announcement,omitempty" json:"announcement,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
}

// Duration returns the configured duration of the scheduled giveaway.
func (s *ScheduledGiveaway) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// Participant is a single entry in a giveaway. The collection carries a
// unique index on (giveawayId, userId); that index is the double-entry
// boundary.
type Participant struct {
	GiveawayID string    `bson:"giveawayId" json:"giveawayId"`
	UserID     string    `bson:"userId" json:"userId"`
	JoinedAt   time.Time `bson:"joinedAt" json:"joinedAt"`
}

// Winner records a selected winner. Rerolls append additional rows for the
// same giveaway; rows are never deleted except by giveaway deletion.
type Winner struct {
	GiveawayID string    `bson:"giveawayId" json:"giveawayId"`
	UserID     string    `bson:"userId" json:"userId"`
	WonAt      time.Time `bson:"wonAt" json:"wonAt"`
}
