// Package commands defines the slash commands of the bot: the /sorteo
// giveaway group, the /sconfig guild configuration group, utility commands
// and the dev-only tools.
package commands

import (
	"github.com/PancyStudios/PancySorteosGo/internal/giveaway"
	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
)

// Deps holds the collaborators the commands drive.
type Deps struct {
	Lifecycle *giveaway.Lifecycle
	Store     *database.GiveawayStore
	Gateway   *discord.Gateway
}

// deps is set once by RegisterAll before the session opens.
var deps Deps

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, d Deps) {
	logger.System("📋 Registrando comandos del bot...", "Commands")

	deps = d
	ch := client.CommandHandler

	// Comandos de utilidad
	ch.RegisterCommand(pingCommand())
	ch.RegisterCommand(statusCommand())
	ch.RegisterCommand(helpCommand())

	// Grupo /sorteo
	sorteoGroup := ch.BuildCommandGroup("sorteo", "Gestión de sorteos",
		crearCommand(),
		programarCommand(),
		finalizarCommand(),
		rerollCommand(),
		cancelarCommand(),
		eliminarCommand(),
		listaCommand(),
	)
	ch.AddGlobalCommand(sorteoGroup)

	// Grupo /sconfig
	sconfigGroup := ch.BuildCommandGroup("sconfig", "Configuración del bot en este servidor",
		prefijoCommand(),
		rolManagerCommand(),
		verConfigCommand(),
	)
	ch.AddGlobalCommand(sconfigGroup)

	// Comandos de desarrollo (solo en el servidor dev)
	ch.RegisterCommand(evalCommand())

	logger.Success("✅ Todos los comandos registrados correctamente", "Commands")
}
