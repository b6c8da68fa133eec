// Package discord - permission middleware for manager-only commands.
package discord

import (
	"errors"
	"fmt"

	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// ErrNotManager indicates the user lacks giveaway manager permissions
var ErrNotManager = errors.New("usuario sin permisos de manager")

// ManagerMiddleware rejects the interaction unless the user is a guild
// administrator or holds the configured manager role.
func (c *ExtendedClient) ManagerMiddleware(ctx *CommandContext) error {
	member := ctx.Member()
	if member == nil {
		_ = ctx.ReplyEphemeral("❌ Este comando solo puede usarse dentro de un servidor.")
		return ErrNotManager
	}

	if member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0 {
		return nil
	}

	cfg, err := database.GetGuildConfig(ctx.Interaction.GuildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo leer la configuración de %s: %v", ctx.Interaction.GuildID, err), "Middleware")
	} else if cfg.ManagerRoleID != "" {
		for _, roleID := range member.Roles {
			if roleID == cfg.ManagerRoleID {
				return nil
			}
		}
	}

	_ = ctx.ReplyEphemeral("❌ Necesitas ser administrador o tener el rol de manager de sorteos para usar este comando.")
	return ErrNotManager
}
