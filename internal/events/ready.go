// Package events provides event handlers for the bot
package events

import (
	"fmt"

	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient) {
	client.Session.AddHandler(onReady)
}

// onReady is called when the bot successfully connects to Discord
func onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Success(fmt.Sprintf("✅ Bot conectado: %s#%s", r.User.Username, r.User.Discriminator), "Ready")
	logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

	// Establecer estado del bot
	if err := s.UpdateGameStatus(0, "🎉 Sorteos con /sorteo"); err != nil {
		logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
	}

	// Snapshot inicial de invitaciones por servidor
	if deps.Invites != nil {
		go func(guilds []*discordgo.Guild) {
			for _, g := range guilds {
				if err := deps.Invites.Refresh(g.ID); err != nil {
					logger.Debug(fmt.Sprintf("No se pudo leer las invitaciones de %s: %v", g.ID, err), "Ready")
				}
			}
		}(r.Guilds)
	}
}
