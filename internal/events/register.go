// Package events provides the Discord event handlers of the bot: giveaway
// entry reactions, captcha answers by DM and the activity trackers behind
// entry requirements.
package events

import (
	"github.com/PancyStudios/PancySorteosGo/internal/giveaway"
	"github.com/PancyStudios/PancySorteosGo/internal/trackers"
	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
)

// Deps holds the collaborators the event handlers drive.
type Deps struct {
	Lifecycle *giveaway.Lifecycle
	Evaluator *giveaway.Evaluator
	Gateway   *discord.Gateway
	Stats     *database.StatsService
	Invites   *trackers.InviteTracker
	Voice     *trackers.VoiceTracker
}

// deps is set once by RegisterAll before the session opens.
var deps Deps

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, d Deps) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	deps = d

	// Ready event (bot startup)
	RegisterReadyEvent(client)

	// Guild events (server join/leave)
	RegisterGuildEvents(client)

	// Reaction events (giveaway entries)
	RegisterReactionEvents(client)

	// Message events (counters + captcha answers)
	RegisterMessageEvents(client)

	// Member events (invite attribution)
	RegisterMemberEvents(client)

	// Voice events (voice minute tracking)
	RegisterVoiceEvents(client)

	// Invite events (snapshot upkeep)
	RegisterInviteEvents(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
