package giveaway

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/PancyStudios/PancySorteosGo/pkg/models"
	"github.com/google/uuid"
)

// StartSpec carries everything needed to open a giveaway. EndsAt is
// absolute: for immediate starts the caller computes now+duration, for
// promoted schedules it is startAt+duration so scheduler delay never
// stretches the giveaway.
type StartSpec struct {
	GuildID       string
	ChannelID     string
	HostID        string
	Prize         string
	WinnerCount   int
	EndsAt        time.Time
	Emoji         string
	Requirements  *models.Requirements
	EntryRoleID   string
	WinnerRoleID  string
	CustomMessage string
	Thumbnail     string
}

// Lifecycle owns every mutation of giveaways, participants and winners.
// Nothing else in the bot flips the ended flag.
type Lifecycle struct {
	store     Store
	messenger Messenger
	selector  *Selector
	notifier  Notifier
	now       func() time.Time
}

// NewLifecycle wires the lifecycle. notifier may be nil.
func NewLifecycle(store Store, messenger Messenger, selector *Selector, notifier Notifier) *Lifecycle {
	return &Lifecycle{
		store:     store,
		messenger: messenger,
		selector:  selector,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Start publishes and persists a new giveaway. If the public record cannot
// be posted the giveaway is not created at all.
func (l *Lifecycle) Start(ctx context.Context, spec StartSpec) (*models.Giveaway, error) {
	g := &models.Giveaway{
		ID:            uuid.NewString(),
		GuildID:       spec.GuildID,
		ChannelID:     spec.ChannelID,
		HostID:        spec.HostID,
		Prize:         spec.Prize,
		WinnerCount:   spec.WinnerCount,
		CreatedAt:     l.now(),
		EndsAt:        spec.EndsAt,
		Emoji:         spec.Emoji,
		Requirements:  spec.Requirements,
		EntryRoleID:   spec.EntryRoleID,
		WinnerRoleID:  spec.WinnerRoleID,
		CustomMessage: spec.CustomMessage,
		Thumbnail:     spec.Thumbnail,
	}
	if g.Emoji == "" {
		g.Emoji = "🎉"
	}

	messageID, err := l.messenger.PublishGiveaway(ctx, g)
	if err != nil {
		return nil, err
	}
	g.MessageID = messageID

	if err := l.store.CreateGiveaway(ctx, g); err != nil {
		// El registro público quedó publicado pero el sorteo no existe.
		// Se intenta retirar para no dejar un mensaje huérfano.
		if delErr := l.messenger.DeletePublicRecord(ctx, g.ChannelID, g.MessageID); delErr != nil {
			logger.Warn(fmt.Sprintf("No se pudo retirar el mensaje huérfano %s: %v", g.MessageID, delErr), "Lifecycle")
		}
		return nil, err
	}

	logger.Success(fmt.Sprintf("Sorteo %s iniciado en el canal %s (premio: %s)", g.ID, g.ChannelID, g.Prize), "Lifecycle")
	if l.notifier != nil {
		l.notifier.GiveawayStarted(g)
	}
	return g, nil
}

// RecordEntry adds a participant after the requirement gate passed.
// Returns false when the user was already entered; repeated signals are a
// silent no-op. The entry role grant is best-effort.
func (l *Lifecycle) RecordEntry(ctx context.Context, g *models.Giveaway, userID string) (bool, error) {
	created, err := l.store.AddParticipant(ctx, &models.Participant{
		GiveawayID: g.ID,
		UserID:     userID,
		JoinedAt:   l.now(),
	})
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	if g.EntryRoleID != "" {
		go func(guildID, userID, roleID string) {
			if err := l.messenger.GrantRole(context.Background(), guildID, userID, roleID); err != nil {
				logger.Warn(fmt.Sprintf("No se pudo asignar el rol de entrada a %s: %v", userID, err), "Lifecycle")
			}
		}(g.GuildID, userID, g.EntryRoleID)
	}
	return true, nil
}

// WithdrawEntry removes a participant if present and reverses the entry
// role grant. Withdrawing a user who never entered is a no-op.
func (l *Lifecycle) WithdrawEntry(ctx context.Context, g *models.Giveaway, userID string) (bool, error) {
	removed, err := l.store.RemoveParticipant(ctx, g.ID, userID)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	if g.EntryRoleID != "" {
		go func(guildID, userID, roleID string) {
			if err := l.messenger.RevokeRole(context.Background(), guildID, userID, roleID); err != nil {
				logger.Warn(fmt.Sprintf("No se pudo retirar el rol de entrada a %s: %v", userID, err), "Lifecycle")
			}
		}(g.GuildID, userID, g.EntryRoleID)
	}
	return true, nil
}

// End finishes a giveaway: claims the ended transition, draws winners and
// announces them. Exactly one of N concurrent callers performs the draw;
// the rest get ErrNotFound. identifier accepts the public message id or
// the internal giveaway id.
func (l *Lifecycle) End(ctx context.Context, identifier string) ([]string, error) {
	g, err := l.resolveGiveaway(ctx, identifier)
	if err != nil {
		return nil, err
	}

	claimed, err := l.store.ClaimEnd(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Carrera perdida o sorteo ya finalizado; misma respuesta para ambos
		return nil, ErrNotFound
	}
	g.Ended = true

	participants, err := l.store.Participants(ctx, g.ID)
	if err != nil {
		logger.Error(fmt.Sprintf("Sorteo %s finalizado pero no se pudieron leer los participantes: %v", g.ID, err), "Lifecycle")
		return nil, err
	}

	winners := l.selector.Select(participants, g.WinnerCount)
	if len(winners) > 0 {
		rows := make([]*models.Winner, 0, len(winners))
		wonAt := l.now()
		for _, userID := range winners {
			rows = append(rows, &models.Winner{GiveawayID: g.ID, UserID: userID, WonAt: wonAt})
		}
		if err := l.store.AddWinners(ctx, rows); err != nil {
			logger.Error(fmt.Sprintf("No se pudieron guardar los ganadores del sorteo %s: %v", g.ID, err), "Lifecycle")
		}
		l.grantWinnerRoles(g, winners)
	}

	if err := l.messenger.MarkEnded(ctx, g, winners); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo anunciar el final del sorteo %s: %v", g.ID, err), "Lifecycle")
	}

	logger.Success(fmt.Sprintf("Sorteo %s finalizado con %d ganador(es) de %d participante(s)", g.ID, len(winners), len(participants)), "Lifecycle")
	if l.notifier != nil {
		l.notifier.GiveawayEnded(g, winners)
	}
	return winners, nil
}

// grantWinnerRoles applies the winner role per recipient. Each grant fails
// independently; one bad member never blocks the rest.
func (l *Lifecycle) grantWinnerRoles(g *models.Giveaway, winners []string) {
	if g.WinnerRoleID == "" {
		return
	}
	for _, userID := range winners {
		go func(guildID, userID, roleID string) {
			if err := l.messenger.GrantRole(context.Background(), guildID, userID, roleID); err != nil {
				logger.Warn(fmt.Sprintf("No se pudo asignar el rol de ganador a %s: %v", userID, err), "Lifecycle")
			}
		}(g.GuildID, userID, g.WinnerRoleID)
	}
}

// Reroll draws one extra winner from the full participant pool of an
// already ended giveaway. Prior winners stay in the pool. An empty pool
// returns no winner and no error.
func (l *Lifecycle) Reroll(ctx context.Context, identifier string) (string, error) {
	g, err := l.resolveGiveaway(ctx, identifier)
	if err != nil {
		return "", err
	}
	if !g.Ended {
		return "", ErrNotEnded
	}

	participants, err := l.store.Participants(ctx, g.ID)
	if err != nil {
		return "", err
	}

	winners := l.selector.Select(participants, 1)
	if len(winners) == 0 {
		return "", nil
	}
	winnerID := winners[0]

	if err := l.store.AddWinners(ctx, []*models.Winner{{GiveawayID: g.ID, UserID: winnerID, WonAt: l.now()}}); err != nil {
		logger.Error(fmt.Sprintf("No se pudo guardar el reroll del sorteo %s: %v", g.ID, err), "Lifecycle")
	}
	l.grantWinnerRoles(g, winners)

	if err := l.messenger.AnnounceReroll(ctx, g, winnerID); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo anunciar el reroll del sorteo %s: %v", g.ID, err), "Lifecycle")
	}

	if l.notifier != nil {
		l.notifier.GiveawayRerolled(g, winnerID)
	}
	return winnerID, nil
}

// Cancel ends a giveaway without drawing winners. Uses the same claim
// guard as End, so cancel and the recovery sweep cannot double-process.
func (l *Lifecycle) Cancel(ctx context.Context, identifier string) error {
	g, err := l.resolveGiveaway(ctx, identifier)
	if err != nil {
		return err
	}

	claimed, err := l.store.ClaimEnd(ctx, g.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrNotFound
	}
	g.Ended = true

	if err := l.messenger.MarkCancelled(ctx, g); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo anunciar la cancelación del sorteo %s: %v", g.ID, err), "Lifecycle")
	}

	logger.Info(fmt.Sprintf("Sorteo %s cancelado", g.ID), "Lifecycle")
	if l.notifier != nil {
		l.notifier.GiveawayCancelled(g)
	}
	return nil
}

// Delete removes a giveaway or a scheduled giveaway and every row tied to
// it. A short all-digit identifier is tried against the scheduled rows
// first, since scheduled ids are millisecond timestamps and message ids
// are much longer snowflakes.
func (l *Lifecycle) Delete(ctx context.Context, identifier string) error {
	if looksLikeScheduledID(identifier) {
		removed, err := l.store.DeleteScheduled(ctx, identifier)
		if err != nil {
			return err
		}
		if removed {
			logger.Info(fmt.Sprintf("Sorteo programado %s eliminado", identifier), "Lifecycle")
			if l.notifier != nil {
				l.notifier.GiveawayDeleted(identifier)
			}
			return nil
		}
	}

	g, err := l.resolveGiveaway(ctx, identifier)
	if err != nil {
		return err
	}

	if err := l.store.DeleteGiveaway(ctx, g.ID); err != nil {
		return err
	}
	if err := l.store.DeleteEntries(ctx, g.ID); err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron limpiar las entradas del sorteo %s: %v", g.ID, err), "Lifecycle")
	}
	if err := l.messenger.DeletePublicRecord(ctx, g.ChannelID, g.MessageID); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo borrar el mensaje del sorteo %s: %v", g.ID, err), "Lifecycle")
	}

	logger.Info(fmt.Sprintf("Sorteo %s eliminado", g.ID), "Lifecycle")
	if l.notifier != nil {
		l.notifier.GiveawayDeleted(g.ID)
	}
	return nil
}

// GiveawayByMessage resolves the active giveaway attached to a message,
// used by the reaction handlers. Ended giveaways resolve too; the caller
// checks the flag.
func (l *Lifecycle) GiveawayByMessage(ctx context.Context, messageID string) (*models.Giveaway, error) {
	g, err := l.store.GiveawayByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	return g, nil
}

func (l *Lifecycle) resolveGiveaway(ctx context.Context, identifier string) (*models.Giveaway, error) {
	g, err := l.store.GiveawayByMessage(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if g == nil {
		g, err = l.store.GiveawayByID(ctx, identifier)
		if err != nil {
			return nil, err
		}
	}
	if g == nil {
		return nil, ErrNotFound
	}
	return g, nil
}

// looksLikeScheduledID reports whether a token is short and numeric, the
// shape of a millisecond-timestamp scheduled id rather than a snowflake.
func looksLikeScheduledID(token string) bool {
	if len(token) == 0 || len(token) >= 17 {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
