package models

// GuildConfig holds the per-guild bot configuration.
type GuildConfig struct {
	GuildID       string `bson:"_id" json:"guildId"`
	Prefix        string `bson:"prefix,omitempty" json:"prefix,omitempty"`
	ManagerRoleID string `bson:"managerRoleId,omitempty" json:"managerRoleId,omitempty"`
}

// DefaultPrefix is used when a guild has not configured its own prefix.
const DefaultPrefix = "s!"

// EffectivePrefix returns the configured prefix or the default.
func (g *GuildConfig) EffectivePrefix() string {
	if g == nil || g.Prefix == "" {
		return DefaultPrefix
	}
	return g.Prefix
}
