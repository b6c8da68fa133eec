// Package events provides event handlers for guild (server) events
package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterGuildEvents registers all guild-related event handlers
func RegisterGuildEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onGuildCreate)
	client.Session.AddHandler(onGuildDelete)
}

// onGuildCreate is called when the bot joins a server
func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	// Servidores en blacklist se abandonan de inmediato
	if blacklisted, entry := database.IsGuildBlacklisted(g.ID); blacklisted {
		reason := ""
		if entry != nil {
			reason = entry.Reason
		}
		logger.Warn(fmt.Sprintf("Servidor blacklisted %s detectado al unirse (%s). Saliendo...", g.ID, reason), "Guild")
		if err := s.GuildLeave(g.ID); err != nil {
			logger.Error(fmt.Sprintf("Error saliendo del servidor blacklisted %s: %v", g.ID, err), "Guild")
		}
		return
	}

	if deps.Invites != nil {
		if err := deps.Invites.Refresh(g.ID); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo leer las invitaciones de %s: %v", g.ID, err), "Guild")
		}
	}

	Join := g.JoinedAt
	if Join.Compare(time.Now().Add(-10*time.Second)) < 0 {
		return
	}

	logger.Info(fmt.Sprintf("➕ Bot agregado a servidor: %s (ID: %s)", g.Name, g.ID), "Guild")
	logger.Debug(fmt.Sprintf("   Miembros: %d | Canales: %d", g.MemberCount, len(g.Channels)), "Guild")

	// Enviar mensaje de bienvenida al canal del sistema
	if g.SystemChannelID != "" {
		welcomeEmbed := &discordgo.MessageEmbed{
			Title:       "¡Gracias por agregarme! 🎉",
			Description: "Hola, soy **PancySorteos**. Organizo sorteos con requisitos de entrada y verificación.",
			Color:       0x00ff00,
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   "🎉 Sorteos",
					Value:  "Crea uno con `/sorteo crear`",
					Inline: true,
				},
				{
					Name:   "⚙️ Configuración",
					Value:  "Ajusta el bot con `/sconfig`",
					Inline: true,
				},
				{
					Name:   "❓ Ayuda",
					Value:  "Usa `/help` para más información",
					Inline: true,
				},
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text: "¡Disfruta de PancySorteos!",
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		if _, err := s.ChannelMessageSendEmbed(g.SystemChannelID, welcomeEmbed); err != nil {
			logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Guild")
		}
	}
}

// onGuildDelete is called when the bot is removed from a server
func onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", g.ID), "Guild")
	if deps.Invites != nil {
		deps.Invites.Forget(g.ID)
	}
}
