// Package discord - gateway adapter between the giveaway core and discordgo.
package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancySorteosGo/internal/giveaway"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/PancyStudios/PancySorteosGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// gatewayTimeout bounds every REST call so a stuck request cannot stall a
// scheduler tick indefinitely.
const gatewayTimeout = 10 * time.Second

const giveawayColor = 0xF1C40F

// Gateway implements giveaway.Messenger over the live Discord session.
type Gateway struct {
	client *ExtendedClient
}

// NewGateway wraps the client as the core's messaging collaborator.
func NewGateway(client *ExtendedClient) *Gateway {
	return &Gateway{client: client}
}

func callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, gatewayTimeout)
}

// mapChannelError translates Discord REST failures on channel writes into
// the core's ErrChannelUnavailable where the channel itself is the problem.
func mapChannelError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case 403, 404:
			return giveaway.ErrChannelUnavailable
		}
	}
	return err
}

// PublishGiveaway posts the public entry embed and attaches the entry
// reaction so users can join immediately.
func (g *Gateway) PublishGiveaway(ctx context.Context, gw *models.Giveaway) (string, error) {
	ctx, cancel := callContext(ctx)
	defer cancel()

	msg, err := g.client.Session.ChannelMessageSendComplex(gw.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{buildGiveawayEmbed(gw)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapChannelError(err)
	}

	if err := g.client.Session.MessageReactionAdd(gw.ChannelID, msg.ID, gw.Emoji, discordgo.WithContext(ctx)); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo añadir la reacción de entrada al sorteo %s: %v", gw.ID, err), "Gateway")
	}

	return msg.ID, nil
}

// MarkEnded edits the public record and announces the outcome.
func (g *Gateway) MarkEnded(ctx context.Context, gw *models.Giveaway, winnerIDs []string) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	embed := buildGiveawayEmbed(gw)
	embed.Title = "🎉 Sorteo finalizado"
	if len(winnerIDs) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Ganadores",
			Value: mentionList(winnerIDs),
		})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Resultado",
			Value: "Sin participantes válidos",
		})
	}
	embed.Color = 0x95A5A6

	if _, err := g.client.Session.ChannelMessageEditEmbed(gw.ChannelID, gw.MessageID, embed, discordgo.WithContext(ctx)); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo editar el mensaje del sorteo %s: %v", gw.ID, err), "Gateway")
	}

	var content string
	if len(winnerIDs) > 0 {
		content = fmt.Sprintf("🎉 ¡Felicidades %s! Han ganado **%s**", mentionList(winnerIDs), gw.Prize)
		if gw.CustomMessage != "" {
			content += "\n" + gw.CustomMessage
		}
	} else {
		content = fmt.Sprintf("😕 El sorteo de **%s** terminó sin participantes válidos.", gw.Prize)
	}

	_, err := g.client.Session.ChannelMessageSendComplex(gw.ChannelID, &discordgo.MessageSend{
		Content: content,
		Reference: &discordgo.MessageReference{
			MessageID: gw.MessageID,
			ChannelID: gw.ChannelID,
			GuildID:   gw.GuildID,
		},
	}, discordgo.WithContext(ctx))
	return mapChannelError(err)
}

// MarkCancelled edits the public record to reflect the cancellation.
func (g *Gateway) MarkCancelled(ctx context.Context, gw *models.Giveaway) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	embed := buildGiveawayEmbed(gw)
	embed.Title = "🚫 Sorteo cancelado"
	embed.Color = 0xE74C3C

	if _, err := g.client.Session.ChannelMessageEditEmbed(gw.ChannelID, gw.MessageID, embed, discordgo.WithContext(ctx)); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo editar el mensaje del sorteo cancelado %s: %v", gw.ID, err), "Gateway")
	}

	_, err := g.client.Session.ChannelMessageSend(gw.ChannelID, fmt.Sprintf("🚫 El sorteo de **%s** ha sido cancelado.", gw.Prize), discordgo.WithContext(ctx))
	return mapChannelError(err)
}

// AnnounceReroll posts the extra winner of a reroll.
func (g *Gateway) AnnounceReroll(ctx context.Context, gw *models.Giveaway, winnerID string) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	content := fmt.Sprintf("🎲 Nuevo ganador del sorteo de **%s**: <@%s> ¡Felicidades!", gw.Prize, winnerID)
	_, err := g.client.Session.ChannelMessageSend(gw.ChannelID, content, discordgo.WithContext(ctx))
	return mapChannelError(err)
}

// Announce posts free-form content, used for scheduled announcements.
func (g *Gateway) Announce(ctx context.Context, channelID, content string) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	_, err := g.client.Session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return mapChannelError(err)
}

// DeletePublicRecord removes the giveaway message.
func (g *Gateway) DeletePublicRecord(ctx context.Context, channelID, messageID string) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	return mapChannelError(g.client.Session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

// GrantRole adds a role to a member.
func (g *Gateway) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	return g.client.Session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// RevokeRole removes a role from a member.
func (g *Gateway) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	return g.client.Session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// SendChallenge delivers the captcha image to the user by direct message.
func (g *Gateway) SendChallenge(ctx context.Context, userID string, image []byte) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	channel, err := g.client.Session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}

	_, err = g.client.Session.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content: "🔐 Para confirmar tu participación, responde aquí con el código de la imagen. Tienes 60 segundos.",
		Files: []*discordgo.File{
			{
				Name:        "captcha.png",
				ContentType: "image/png",
				Reader:      bytes.NewReader(image),
			},
		},
	}, discordgo.WithContext(ctx))
	return err
}

// SendDM sends a plain direct message, used to explain entry rejections.
func (g *Gateway) SendDM(ctx context.Context, userID, content string) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	channel, err := g.client.Session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = g.client.Session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx))
	return err
}

// RemoveEntryReaction clears a user's entry reaction after a rejection so
// the public record reflects who is actually entered.
func (g *Gateway) RemoveEntryReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	ctx, cancel := callContext(ctx)
	defer cancel()

	return g.client.Session.MessageReactionRemove(channelID, messageID, emoji, userID, discordgo.WithContext(ctx))
}

// buildGiveawayEmbed renders the public entry record.
func buildGiveawayEmbed(gw *models.Giveaway) *discordgo.MessageEmbed {
	var desc strings.Builder
	fmt.Fprintf(&desc, "**Premio:** %s\n", gw.Prize)
	fmt.Fprintf(&desc, "**Ganadores:** %d\n", gw.WinnerCount)
	fmt.Fprintf(&desc, "**Organiza:** <@%s>\n", gw.HostID)
	fmt.Fprintf(&desc, "**Termina:** <t:%d:R>\n", gw.EndsAt.Unix())
	fmt.Fprintf(&desc, "\nReacciona con %s para participar", gw.Emoji)

	embed := &discordgo.MessageEmbed{
		Title:       "🎉 Sorteo",
		Description: desc.String(),
		Color:       giveawayColor,
		Timestamp:   gw.EndsAt.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "🎉 Desarrollado por PancyStudio | PancySorteos Go",
		},
	}

	if gw.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: gw.Thumbnail}
	}

	if reqs := describeRequirements(gw.Requirements); reqs != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Requisitos",
			Value: reqs,
		})
	}

	return embed
}

// describeRequirements renders the requirement set as embed text.
func describeRequirements(req *models.Requirements) string {
	if req.Empty() {
		return ""
	}

	var lines []string
	if req.RoleID != "" {
		lines = append(lines, fmt.Sprintf("• Tener el rol <@&%s>", req.RoleID))
	}
	if req.Invites > 0 {
		lines = append(lines, fmt.Sprintf("• %d invitaciones", req.Invites))
	}
	if req.AccountAgeDays > 0 {
		lines = append(lines, fmt.Sprintf("• Cuenta con %d días de antigüedad", req.AccountAgeDays))
	}
	if req.ServerAgeDays > 0 {
		lines = append(lines, fmt.Sprintf("• %d días en el servidor", req.ServerAgeDays))
	}
	if req.Messages > 0 {
		lines = append(lines, fmt.Sprintf("• %d mensajes enviados", req.Messages))
	}
	if req.VoiceMinutes > 0 {
		lines = append(lines, fmt.Sprintf("• %d minutos en voz", req.VoiceMinutes))
	}
	if req.Captcha {
		lines = append(lines, "• Verificación por captcha")
	}
	return strings.Join(lines, "\n")
}

func mentionList(userIDs []string) string {
	mentions := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		mentions = append(mentions, "<@"+id+">")
	}
	return strings.Join(mentions, ", ")
}
