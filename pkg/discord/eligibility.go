// Package discord - eligibility snapshots for the entry requirement gate.
package discord

import (
	"context"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/bwmarrin/discordgo"
)

// Eligibility implements giveaway.EligibilityStore. Role and membership
// facts come from the gateway (state cache first), activity counters come
// from the stats collections.
type Eligibility struct {
	client *ExtendedClient
	stats  *database.StatsService
}

// NewEligibility wires the eligibility views.
func NewEligibility(client *ExtendedClient, stats *database.StatsService) *Eligibility {
	return &Eligibility{client: client, stats: stats}
}

func (e *Eligibility) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if m, err := e.client.Session.State.Member(guildID, userID); err == nil && m != nil {
		return m, nil
	}

	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()
	return e.client.Session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

// HasRole reports whether the member carries the role.
func (e *Eligibility) HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	m, err := e.member(ctx, guildID, userID)
	if err != nil {
		return false, err
	}
	for _, r := range m.Roles {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}

// InviteCount returns the tracked invite attribution of the user.
func (e *Eligibility) InviteCount(ctx context.Context, guildID, userID string) (int, error) {
	return e.stats.InviteCount(ctx, guildID, userID)
}

// AccountCreatedAt derives the account creation time from the snowflake.
func (e *Eligibility) AccountCreatedAt(_ context.Context, userID string) (time.Time, error) {
	return discordgo.SnowflakeTimestamp(userID)
}

// JoinedAt returns when the user joined the guild.
func (e *Eligibility) JoinedAt(ctx context.Context, guildID, userID string) (time.Time, error) {
	m, err := e.member(ctx, guildID, userID)
	if err != nil {
		return time.Time{}, err
	}
	return m.JoinedAt, nil
}

// MessageCount returns the tracked message counter of the user.
func (e *Eligibility) MessageCount(ctx context.Context, guildID, userID string) (int64, error) {
	stats, err := e.stats.UserStats(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	return stats.Messages, nil
}

// VoiceMinutes returns the tracked voice minutes of the user.
func (e *Eligibility) VoiceMinutes(ctx context.Context, guildID, userID string) (int64, error) {
	stats, err := e.stats.UserStats(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	return stats.VoiceMinutes, nil
}
