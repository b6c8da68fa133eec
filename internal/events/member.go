package events

import (
	"fmt"

	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMemberEvents registers the member join handler
func RegisterMemberEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onGuildMemberAdd)
}

// onGuildMemberAdd attributes the join to an inviter and credits the invite.
func onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot || deps.Invites == nil || deps.Stats == nil {
		return
	}

	go func() {
		inviterID, _ := deps.Invites.Attribute(m.GuildID)
		if inviterID == "" {
			return
		}

		logger.Debug(fmt.Sprintf("Invitación atribuida: %s invitó a %s en %s", inviterID, m.User.ID, m.GuildID), "Member")

		ctx, cancel := database.StatsContext()
		defer cancel()
		if err := deps.Stats.IncrementInvites(ctx, m.GuildID, inviterID); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo contar la invitación de %s: %v", inviterID, err), "Member")
		}
	}()
}
