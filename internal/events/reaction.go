// Package events - reaction handlers, the giveaway entry signal.
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancySorteosGo/internal/giveaway"
	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/PancyStudios/PancySorteosGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// RegisterReactionEvents registers the entry signal handlers
func RegisterReactionEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onReactionAdd)
	client.Session.AddHandler(onReactionRemove)
}

func matchesEntryEmoji(emoji discordgo.Emoji, want string) bool {
	return emoji.Name == want || emoji.APIName() == want
}

// onReactionAdd runs the requirement gate and records the entry. All work
// happens on its own goroutine so a user waiting on a captcha never blocks
// the gateway event pump.
func onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID == "" || r.UserID == s.State.User.ID {
		return
	}
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		return
	}

	ctx := context.Background()
	g, err := deps.Lifecycle.GiveawayByMessage(ctx, r.MessageID)
	if err != nil {
		if !errors.Is(err, giveaway.ErrNotFound) {
			logger.Error(fmt.Sprintf("Error resolviendo el sorteo del mensaje %s: %v", r.MessageID, err), "Reaction")
		}
		return
	}
	if g.Ended || !matchesEntryEmoji(r.Emoji, g.Emoji) {
		return
	}

	if blacklisted, _ := database.IsUserBlacklisted(r.UserID); blacklisted {
		go rejectEntry(g, r.UserID, "Tu cuenta está en la blacklist del bot.")
		return
	}

	// Señal repetida con una verificación en curso: se ignora
	if deps.Evaluator.Sessions().Pending(r.UserID) {
		return
	}

	go processEntry(g, r.UserID)
}

// processEntry evaluates one entry attempt end to end.
func processEntry(g *models.Giveaway, userID string) {
	ctx := context.Background()

	err := deps.Evaluator.Evaluate(ctx, g.GuildID, userID, g)
	if err != nil {
		switch {
		case errors.Is(err, giveaway.ErrChallengePending):
			return
		case errors.Is(err, giveaway.ErrChallengeTimedOut):
			rejectEntry(g, userID, "No respondiste la verificación a tiempo. Reacciona de nuevo para reintentar.")
		case errors.Is(err, giveaway.ErrChallengeFailed):
			rejectEntry(g, userID, "La verificación falló. Reacciona de nuevo para reintentar.")
		default:
			if re, ok := giveaway.AsRequirementError(err); ok {
				rejectEntry(g, userID, re.Reason)
			} else {
				logger.Error(fmt.Sprintf("Error evaluando la entrada de %s al sorteo %s: %v", userID, g.ID, err), "Reaction")
				rejectEntry(g, userID, "No se pudo procesar tu entrada. Inténtalo de nuevo más tarde.")
			}
		}
		return
	}

	created, err := deps.Lifecycle.RecordEntry(ctx, g, userID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error registrando la entrada de %s al sorteo %s: %v", userID, g.ID, err), "Reaction")
		return
	}
	if created {
		logger.Debug(fmt.Sprintf("Entrada registrada: %s -> sorteo %s", userID, g.ID), "Reaction")
	}
}

// rejectEntry clears the user's reaction and explains the rejection by DM.
// Both are best-effort.
func rejectEntry(g *models.Giveaway, userID, reason string) {
	ctx := context.Background()

	if err := deps.Gateway.RemoveEntryReaction(ctx, g.ChannelID, g.MessageID, g.Emoji, userID); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo retirar la reacción de %s: %v", userID, err), "Reaction")
	}

	msg := fmt.Sprintf("❌ No puedes participar en el sorteo de **%s**: %s", g.Prize, reason)
	if err := deps.Gateway.SendDM(ctx, userID, msg); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo avisar a %s del rechazo: %v", userID, err), "Reaction")
	}
}

// onReactionRemove withdraws the entry. A removal during a pending captcha
// cancels the verification, failing that entry attempt.
func onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.GuildID == "" || r.UserID == s.State.User.ID {
		return
	}

	ctx := context.Background()
	g, err := deps.Lifecycle.GiveawayByMessage(ctx, r.MessageID)
	if err != nil {
		if !errors.Is(err, giveaway.ErrNotFound) {
			logger.Error(fmt.Sprintf("Error resolviendo el sorteo del mensaje %s: %v", r.MessageID, err), "Reaction")
		}
		return
	}
	if g.Ended || !matchesEntryEmoji(r.Emoji, g.Emoji) {
		return
	}

	deps.Evaluator.CancelChallenge(r.UserID)

	go func() {
		if _, err := deps.Lifecycle.WithdrawEntry(context.Background(), g, r.UserID); err != nil {
			logger.Error(fmt.Sprintf("Error retirando la entrada de %s del sorteo %s: %v", r.UserID, g.ID, err), "Reaction")
		}
	}()
}
