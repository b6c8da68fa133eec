// Package database - giveaway persistence.
//
// Giveaways, participants and winners bypass the DataManager cache on purpose:
// the ended-claim and the participant insert are the race boundaries of the
// whole system and must always hit the collection directly.
package database

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/PancyStudios/PancySorteosGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colGiveaways    = "giveaways"
	colScheduled    = "scheduled_giveaways"
	colParticipants = "participants"
	colWinners      = "winners"
)

// GiveawayStore provides direct collection access for giveaway state.
type GiveawayStore struct {
	db *Database
}

var (
	giveawayStore     *GiveawayStore
	giveawayStoreOnce sync.Once
)

// InitGiveawayStore initializes the global giveaway store and ensures indexes.
func InitGiveawayStore(db *Database) *GiveawayStore {
	giveawayStoreOnce.Do(func() {
		giveawayStore = &GiveawayStore{db: db}
		if err := giveawayStore.EnsureIndexes(context.Background()); err != nil {
			logger.Warn(fmt.Sprintf("No se pudieron crear los índices de sorteos: %v", err), "GiveawayStore")
		}
	})
	return giveawayStore
}

// GetGiveawayStore returns the global giveaway store
func GetGiveawayStore() *GiveawayStore {
	return giveawayStore
}

// EnsureIndexes creates the unique participant index that backs entry dedup.
func (s *GiveawayStore) EnsureIndexes(ctx context.Context) error {
	col := s.db.GetCollection(colParticipants)
	if col == nil {
		return fmt.Errorf("database not connected")
	}

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "giveawayId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// NewScheduledID generates a short numeric id for a scheduled giveaway.
// These are 13 digits; Discord message snowflakes are 17+, which is how
// identifier resolution tells them apart.
func NewScheduledID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// CreateGiveaway persists a new giveaway document
func (s *GiveawayStore) CreateGiveaway(ctx context.Context, g *models.Giveaway) error {
	col := s.db.GetCollection(colGiveaways)
	if col == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := col.InsertOne(ctx, g)
	return err
}

// GiveawayByID returns a giveaway by its internal id, nil if none exists
func (s *GiveawayStore) GiveawayByID(ctx context.Context, id string) (*models.Giveaway, error) {
	return s.findGiveaway(ctx, bson.M{"_id": id})
}

// GiveawayByMessage returns the giveaway attached to a public message, nil if none exists
func (s *GiveawayStore) GiveawayByMessage(ctx context.Context, messageID string) (*models.Giveaway, error) {
	return s.findGiveaway(ctx, bson.M{"messageId": messageID})
}

func (s *GiveawayStore) findGiveaway(ctx context.Context, query bson.M) (*models.Giveaway, error) {
	col := s.db.GetCollection(colGiveaways)
	if col == nil {
		return nil, fmt.Errorf("database not connected")
	}

	var g models.Giveaway
	err := col.FindOne(ctx, query).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ClaimEnd atomically flips ended=false -> ended=true for one giveaway and
// reports whether THIS caller performed the transition. Concurrent callers
// racing on the same giveaway see false and must treat the call as a no-op.
func (s *GiveawayStore) ClaimEnd(ctx context.Context, id string) (bool, error) {
	col := s.db.GetCollection(colGiveaways)
	if col == nil {
		return false, fmt.Errorf("database not connected")
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, "ended": false},
		bson.M{"$set": bson.M{"ended": true}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// OverdueGiveaways returns active giveaways whose end time has already passed
func (s *GiveawayStore) OverdueGiveaways(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	col := s.db.GetCollection(colGiveaways)
	if col == nil {
		return nil, fmt.Errorf("database not connected")
	}

	cursor, err := col.Find(ctx, bson.M{"ended": false, "endsAt": bson.M{"$lte": now}})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*models.Giveaway
	for cursor.Next(ctx) {
		var g models.Giveaway
		if err := cursor.Decode(&g); err != nil {
			continue
		}
		results = append(results, &g)
	}
	return results, cursor.Err()
}

// ActiveCount returns the number of giveaways that have not ended yet
func (s *GiveawayStore) ActiveCount(ctx context.Context) (int64, error) {
	col := s.db.GetCollection(colGiveaways)
	if col == nil {
		return 0, fmt.Errorf("database not connected")
	}
	return col.CountDocuments(ctx, bson.M{"ended": false})
}

// ActiveByGuild returns all non-ended giveaways of a guild
func (s *GiveawayStore) ActiveByGuild(ctx context.Context, guildID string) ([]*models.Giveaway, error) {
	col := s.db.GetCollection(colGiveaways)
	if col == nil {
		return nil, fmt.Errorf("database not connected")
	}

	cursor, err := col.Find(ctx, bson.M{"guildId": guildID, "ended": false})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*models.Giveaway
	for cursor.Next(ctx) {
		var g models.Giveaway
		if err := cursor.Decode(&g); err != nil {
			continue
		}
		results = append(results, &g)
	}
	return results, cursor.Err()
}

// DeleteGiveaway removes a giveaway document
func (s *GiveawayStore) DeleteGiveaway(ctx context.Context, id string) error {
	col := s.db.GetCollection(colGiveaways)
	if col == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AddParticipant inserts an entry row. A duplicate (giveawayId, userId) pair
// is swallowed as a no-op and reported via the bool: true means the row was
// created by this call.
func (s *GiveawayStore) AddParticipant(ctx context.Context, p *models.Participant) (bool, error) {
	col := s.db.GetCollection(colParticipants)
	if col == nil {
		return false, fmt.Errorf("database not connected")
	}

	_, err := col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoveParticipant deletes an entry row if present
func (s *GiveawayStore) RemoveParticipant(ctx context.Context, giveawayID, userID string) (bool, error) {
	col := s.db.GetCollection(colParticipants)
	if col == nil {
		return false, fmt.Errorf("database not connected")
	}

	res, err := col.DeleteOne(ctx, bson.M{"giveawayId": giveawayID, "userId": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Participants returns the user ids entered in a giveaway
func (s *GiveawayStore) Participants(ctx context.Context, giveawayID string) ([]string, error) {
	col := s.db.GetCollection(colParticipants)
	if col == nil {
		return nil, fmt.Errorf("database not connected")
	}

	cursor, err := col.Find(ctx, bson.M{"giveawayId": giveawayID})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var ids []string
	for cursor.Next(ctx) {
		var p models.Participant
		if err := cursor.Decode(&p); err != nil {
			continue
		}
		ids = append(ids, p.UserID)
	}
	return ids, cursor.Err()
}

// AddWinners appends winner rows for a giveaway
func (s *GiveawayStore) AddWinners(ctx context.Context, winners []*models.Winner) error {
	if len(winners) == 0 {
		return nil
	}
	col := s.db.GetCollection(colWinners)
	if col == nil {
		return fmt.Errorf("database not connected")
	}

	docs := make([]interface{}, 0, len(winners))
	for _, w := range winners {
		docs = append(docs, w)
	}
	_, err := col.InsertMany(ctx, docs)
	return err
}

// DeleteEntries removes all participants and winners of a giveaway
func (s *GiveawayStore) DeleteEntries(ctx context.Context, giveawayID string) error {
	participants := s.db.GetCollection(colParticipants)
	winners := s.db.GetCollection(colWinners)
	if participants == nil || winners == nil {
		return fmt.Errorf("database not connected")
	}

	if _, err := participants.DeleteMany(ctx, bson.M{"giveawayId": giveawayID}); err != nil {
		return err
	}
	_, err := winners.DeleteMany(ctx, bson.M{"giveawayId": giveawayID})
	return err
}

// CreateScheduled persists a pending giveaway
func (s *GiveawayStore) CreateScheduled(ctx context.Context, sg *models.ScheduledGiveaway) error {
	col := s.db.GetCollection(colScheduled)
	if col == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := col.InsertOne(ctx, sg)
	return err
}

// ScheduledByID returns a scheduled giveaway by id, nil if none exists
func (s *GiveawayStore) ScheduledByID(ctx context.Context, id string) (*models.ScheduledGiveaway, error) {
	col := s.db.GetCollection(colScheduled)
	if col == nil {
		return nil, fmt.Errorf("database not connected")
	}

	var sg models.ScheduledGiveaway
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&sg)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sg, nil
}

// DueScheduled returns scheduled giveaways whose start time has passed
func (s *GiveawayStore) DueScheduled(ctx context.Context, now time.Time) ([]*models.ScheduledGiveaway, error) {
	col := s.db.GetCollection(colScheduled)
	if col == nil {
		return nil, fmt.Errorf("database not connected")
	}

	cursor, err := col.Find(ctx, bson.M{"startAt": bson.M{"$lte": now}})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*models.ScheduledGiveaway
	for cursor.Next(ctx) {
		var sg models.ScheduledGiveaway
		if err := cursor.Decode(&sg); err != nil {
			continue
		}
		results = append(results, &sg)
	}
	return results, cursor.Err()
}

// ScheduledByGuild returns the pending scheduled giveaways of a guild
func (s *GiveawayStore) ScheduledByGuild(ctx context.Context, guildID string) ([]*models.ScheduledGiveaway, error) {
	col := s.db.GetCollection(colScheduled)
	if col == nil {
		return nil, fmt.Errorf("database not connected")
	}

	cursor, err := col.Find(ctx, bson.M{"guildId": guildID})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*models.ScheduledGiveaway
	for cursor.Next(ctx) {
		var sg models.ScheduledGiveaway
		if err := cursor.Decode(&sg); err != nil {
			continue
		}
		results = append(results, &sg)
	}
	return results, cursor.Err()
}

// DeleteScheduled removes a scheduled giveaway row, reporting whether it existed
func (s *GiveawayStore) DeleteScheduled(ctx context.Context, id string) (bool, error) {
	col := s.db.GetCollection(colScheduled)
	if col == nil {
		return false, fmt.Errorf("database not connected")
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
