package models

// UserStats holds the per-guild activity counters of a user.
// Mutated only by the trackers; the requirement evaluator reads snapshots.
type UserStats struct {
	GuildID      string `bson:"guildId" json:"guildId"`
	UserID       string `bson:"userId" json:"userId"`
	Messages     int64  `bson:"messages" json:"messages"`
	VoiceMinutes int64  `bson:"voiceMinutes" json:"voiceMinutes"`
}

// InviteStats holds the per-guild count of members a user has invited.
type InviteStats struct {
	GuildID string `bson:"guildId" json:"guildId"`
	UserID  string `bson:"userId" json:"userId"`
	Invites int    `bson:"invites" json:"invites"`
}
