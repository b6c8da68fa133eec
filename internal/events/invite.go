package events

import (
	"fmt"

	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterInviteEvents registers the invite snapshot handlers
func RegisterInviteEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onInviteCreate)
	client.Session.AddHandler(onInviteDelete)
}

// onInviteCreate keeps the per-guild invite snapshot current so later joins
// can be attributed to the right inviter.
func onInviteCreate(s *discordgo.Session, i *discordgo.InviteCreate) {
	if deps.Invites == nil {
		return
	}
	if err := deps.Invites.Refresh(i.GuildID); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo refrescar las invitaciones de %s: %v", i.GuildID, err), "Invite")
	}
}

func onInviteDelete(s *discordgo.Session, i *discordgo.InviteDelete) {
	if deps.Invites == nil {
		return
	}
	if err := deps.Invites.Refresh(i.GuildID); err != nil {
		logger.Debug(fmt.Sprintf("No se pudo refrescar las invitaciones de %s: %v", i.GuildID, err), "Invite")
	}
}
