// Package database - activity counters used by entry requirements.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colUserStats   = "user_stats"
	colInviteStats = "invite_stats"
)

// StatsService tracks per-guild message, voice and invite counters.
// Writes are $inc upserts so the trackers never need a read first.
type StatsService struct {
	db *Database
}

var (
	statsService     *StatsService
	statsServiceOnce sync.Once
)

// InitStatsService initializes the global stats service
func InitStatsService(db *Database) *StatsService {
	statsServiceOnce.Do(func() {
		statsService = &StatsService{db: db}
	})
	return statsService
}

// GetStatsService returns the global stats service
func GetStatsService() *StatsService {
	return statsService
}

func (s *StatsService) incr(ctx context.Context, colName string, guildID, userID, field string, amount int64) error {
	col := s.db.GetCollection(colName)
	if col == nil {
		return fmt.Errorf("database not connected")
	}

	opts := options.Update().SetUpsert(true)
	_, err := col.UpdateOne(ctx,
		bson.M{"guildId": guildID, "userId": userID},
		bson.M{"$inc": bson.M{field: amount}},
		opts,
	)
	return err
}

// IncrementMessages adds one to a user's message counter
func (s *StatsService) IncrementMessages(ctx context.Context, guildID, userID string) error {
	return s.incr(ctx, colUserStats, guildID, userID, "messages", 1)
}

// AddVoiceMinutes credits completed voice minutes to a user
func (s *StatsService) AddVoiceMinutes(ctx context.Context, guildID, userID string, minutes int64) error {
	if minutes <= 0 {
		return nil
	}
	return s.incr(ctx, colUserStats, guildID, userID, "voiceMinutes", minutes)
}

// IncrementInvites credits an invite use to the inviter
func (s *StatsService) IncrementInvites(ctx context.Context, guildID, inviterID string) error {
	return s.incr(ctx, colInviteStats, guildID, inviterID, "invites", 1)
}

// UserStats returns the activity counters of a user, zeroes if none recorded
func (s *StatsService) UserStats(ctx context.Context, guildID, userID string) (*models.UserStats, error) {
	col := s.db.GetCollection(colUserStats)
	if col == nil {
		return nil, fmt.Errorf("database not connected")
	}

	var stats models.UserStats
	err := col.FindOne(ctx, bson.M{"guildId": guildID, "userId": userID}).Decode(&stats)
	if err == mongo.ErrNoDocuments {
		return &models.UserStats{GuildID: guildID, UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// InviteCount returns how many members a user has invited to a guild
func (s *StatsService) InviteCount(ctx context.Context, guildID, userID string) (int, error) {
	col := s.db.GetCollection(colInviteStats)
	if col == nil {
		return 0, fmt.Errorf("database not connected")
	}

	var stats models.InviteStats
	err := col.FindOne(ctx, bson.M{"guildId": guildID, "userId": userID}).Decode(&stats)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stats.Invites, nil
}

// statsTimeout is the default deadline for counter writes fired from event handlers
const statsTimeout = 5 * time.Second

// StatsContext returns a context suited for fire-and-forget counter writes
func StatsContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), statsTimeout)
}
