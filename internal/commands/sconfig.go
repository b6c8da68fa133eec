package commands

import (
	"fmt"

	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// prefijoCommand changes the text command prefix of the guild.
func prefijoCommand() *discord.Command {
	return discord.NewCommand(
		"prefijo",
		"Cambia el prefijo del bot en este servidor",
		"sconfig",
		runPrefijo,
	).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "prefijo",
		Description: "Nuevo prefijo (máximo 5 caracteres)",
		Required:    true,
	}).AsManagerOnly()
}

func runPrefijo(ctx *discord.CommandContext) error {
	prefix := ctx.GetStringOption("prefijo")
	if prefix == "" || len(prefix) > 5 {
		return ctx.ReplyEphemeral("❌ El prefijo debe tener entre 1 y 5 caracteres.")
	}

	if _, err := database.SetGuildPrefix(ctx.Interaction.GuildID, prefix); err != nil {
		logger.Error(fmt.Sprintf("Error guardando el prefijo de %s: %v", ctx.Interaction.GuildID, err), "Commands")
		return ctx.ReplyEphemeral("❌ No se pudo guardar el prefijo. Inténtalo de nuevo.")
	}

	return ctx.Reply(fmt.Sprintf("✅ Prefijo actualizado a `%s`", prefix))
}

// rolManagerCommand sets the role allowed to manage giveaways.
func rolManagerCommand() *discord.Command {
	return discord.NewCommand(
		"rolmanager",
		"Define el rol que puede gestionar sorteos",
		"sconfig",
		runRolManager,
	).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "rol",
		Description: "Rol de manager de sorteos",
		Required:    true,
	}).AsManagerOnly()
}

func runRolManager(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	if role == nil {
		return ctx.ReplyEphemeral("❌ Debes indicar un rol válido.")
	}

	if _, err := database.SetGuildManagerRole(ctx.Interaction.GuildID, role.ID); err != nil {
		logger.Error(fmt.Sprintf("Error guardando el rol manager de %s: %v", ctx.Interaction.GuildID, err), "Commands")
		return ctx.ReplyEphemeral("❌ No se pudo guardar el rol. Inténtalo de nuevo.")
	}

	return ctx.Reply(fmt.Sprintf("✅ Los miembros con el rol <@&%s> ahora pueden gestionar sorteos.", role.ID))
}

// verConfigCommand shows the stored configuration of the guild.
func verConfigCommand() *discord.Command {
	return discord.NewCommand(
		"ver",
		"Muestra la configuración actual del servidor",
		"sconfig",
		runVerConfig,
	).AsManagerOnly()
}

func runVerConfig(ctx *discord.CommandContext) error {
	cfg, err := database.GetGuildConfig(ctx.Interaction.GuildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error leyendo la configuración de %s: %v", ctx.Interaction.GuildID, err), "Commands")
		return ctx.ReplyEphemeral("❌ No se pudo leer la configuración.")
	}

	managerRole := "Sin configurar (solo administradores)"
	if cfg.ManagerRoleID != "" {
		managerRole = fmt.Sprintf("<@&%s>", cfg.ManagerRoleID)
	}

	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Configuración del servidor",
		Color: 0x3498DB,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Prefijo", Value: fmt.Sprintf("`%s`", cfg.EffectivePrefix()), Inline: true},
			{Name: "Rol manager", Value: managerRole, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "🎉 Desarrollado por PancyStudio | PancySorteos Go",
		},
	}
	return ctx.ReplyEphemeralEmbed(embed)
}
