// Package giveaway implements the giveaway core: the lifecycle state
// machine, the entry requirement gate, winner selection and the
// reconciliation scheduler. Everything external (Discord, MongoDB, captcha
// generation) is reached through the interfaces below so the core stays
// testable without a gateway or a database.
package giveaway

import (
	"context"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/models"
)

// Store is the persistence contract of the core. The production
// implementation is database.GiveawayStore.
type Store interface {
	CreateGiveaway(ctx context.Context, g *models.Giveaway) error
	GiveawayByID(ctx context.Context, id string) (*models.Giveaway, error)
	GiveawayByMessage(ctx context.Context, messageID string) (*models.Giveaway, error)

	// ClaimEnd flips ended=false to ended=true and reports whether this
	// caller performed the transition. It is the race guard between the
	// recovery sweep and manual end/cancel.
	ClaimEnd(ctx context.Context, id string) (bool, error)

	OverdueGiveaways(ctx context.Context, now time.Time) ([]*models.Giveaway, error)
	DeleteGiveaway(ctx context.Context, id string) error

	// AddParticipant reports whether the row was created. A duplicate
	// (giveaway, user) pair is a silent no-op returning false.
	AddParticipant(ctx context.Context, p *models.Participant) (bool, error)
	RemoveParticipant(ctx context.Context, giveawayID, userID string) (bool, error)
	Participants(ctx context.Context, giveawayID string) ([]string, error)

	AddWinners(ctx context.Context, winners []*models.Winner) error
	DeleteEntries(ctx context.Context, giveawayID string) error

	CreateScheduled(ctx context.Context, sg *models.ScheduledGiveaway) error
	ScheduledByID(ctx context.Context, id string) (*models.ScheduledGiveaway, error)
	DueScheduled(ctx context.Context, now time.Time) ([]*models.ScheduledGiveaway, error)
	DeleteScheduled(ctx context.Context, id string) (bool, error)
}

// Messenger is the outbound messaging contract. Formatting of embeds and
// announcements lives on the implementation side; the core only states
// which record has to change.
type Messenger interface {
	// PublishGiveaway posts the public entry record with its entry signal
	// attached and returns the new message id. Returns
	// ErrChannelUnavailable when the channel cannot accept a post.
	PublishGiveaway(ctx context.Context, g *models.Giveaway) (string, error)

	// MarkEnded edits the public record and announces the winners. An
	// empty winner list produces the "sin participantes válidos" variant.
	MarkEnded(ctx context.Context, g *models.Giveaway, winnerIDs []string) error

	MarkCancelled(ctx context.Context, g *models.Giveaway) error
	AnnounceReroll(ctx context.Context, g *models.Giveaway, winnerID string) error
	Announce(ctx context.Context, channelID, content string) error
	DeletePublicRecord(ctx context.Context, channelID, messageID string) error

	GrantRole(ctx context.Context, guildID, userID, roleID string) error
	RevokeRole(ctx context.Context, guildID, userID, roleID string) error

	// SendChallenge delivers the verification artifact to the user in
	// private. A delivery failure resolves the challenge as failed.
	SendChallenge(ctx context.Context, userID string, image []byte) error
}

// EligibilityStore exposes the read-only activity views the requirement
// gate consults. Counters are mutated elsewhere, never here.
type EligibilityStore interface {
	HasRole(ctx context.Context, guildID, userID, roleID string) (bool, error)
	InviteCount(ctx context.Context, guildID, userID string) (int, error)
	AccountCreatedAt(ctx context.Context, userID string) (time.Time, error)
	JoinedAt(ctx context.Context, guildID, userID string) (time.Time, error)
	MessageCount(ctx context.Context, guildID, userID string) (int64, error)
	VoiceMinutes(ctx context.Context, guildID, userID string) (int64, error)
}

// Challenge is a generated verification puzzle.
type Challenge struct {
	Image  []byte
	Answer string
}

// ChallengeProvider produces verification puzzles for the challenge sub-flow.
type ChallengeProvider interface {
	Generate() (*Challenge, error)
}

// Notifier receives lifecycle events after their state transition has
// committed. Implementations must be best-effort and non-blocking.
type Notifier interface {
	GiveawayStarted(g *models.Giveaway)
	GiveawayEnded(g *models.Giveaway, winnerIDs []string)
	GiveawayRerolled(g *models.Giveaway, winnerID string)
	GiveawayCancelled(g *models.Giveaway)
	GiveawayDeleted(id string)
}
