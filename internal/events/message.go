package events

import (
	"fmt"

	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMessageEvents registers the message handlers
func RegisterMessageEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onMessageCreate)
}

// onMessageCreate feeds the activity counters and routes captcha answers.
// A DM from a user with a pending verification is their answer.
func onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	// Mensaje directo: posible respuesta a una verificación
	if m.GuildID == "" {
		if deps.Evaluator.Sessions().SubmitAnswer(m.Author.ID, m.Content) {
			logger.Debug(fmt.Sprintf("Respuesta de verificación recibida de %s", m.Author.ID), "Message")
		}
		return
	}

	if blacklisted, _ := database.IsUserBlacklisted(m.Author.ID); blacklisted {
		return
	}
	if deps.Stats == nil {
		return
	}

	go func() {
		ctx, cancel := database.StatsContext()
		defer cancel()
		if err := deps.Stats.IncrementMessages(ctx, m.GuildID, m.Author.ID); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo contar el mensaje de %s: %v", m.Author.ID, err), "Message")
		}
	}()
}
