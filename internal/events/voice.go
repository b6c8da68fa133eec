package events

import (
	"context"

	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// RegisterVoiceEvents registers the voice state handler
func RegisterVoiceEvents(client *discord.ExtendedClient) {
	client.Session.AddHandler(onVoiceStateUpdate)
}

// onVoiceStateUpdate feeds the voice minute tracker.
func onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if deps.Voice == nil || v.UserID == s.State.User.ID {
		return
	}
	deps.Voice.HandleUpdate(context.Background(), v.GuildID, v.UserID, v.ChannelID)
}
