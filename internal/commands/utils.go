package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/config"
	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// pingCommand reports the gateway latency.
func pingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Muestra la latencia del bot",
		"utilidad",
		func(ctx *discord.CommandContext) error {
			latency := ctx.Session.HeartbeatLatency().Round(time.Millisecond)
			return ctx.Reply(fmt.Sprintf("🏓 Pong! Latencia: **%v**", latency))
		},
	)
}

// statusCommand shows uptime, guild count and the database state.
func statusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utilidad",
		runStatus,
	)
}

func runStatus(ctx *discord.CommandContext) error {
	uptime := time.Since(ctx.Client.StartTime).Round(time.Second)

	dbStatus := "Desconocido"
	if db := database.Get(); db != nil {
		status, _ := db.GetStatus()
		dbStatus = status
	}

	activeText := "N/D"
	if deps.Store != nil {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if count, err := deps.Store.ActiveCount(cctx); err == nil {
			activeText = fmt.Sprintf("%d", count)
		}
	}

	embed := &discordgo.MessageEmbed{
		Title: "📊 Estado de PancySorteos",
		Color: 0x2ECC71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⏱️ Uptime", Value: formatDuration(uptime), Inline: true},
			{Name: "🌐 Servidores", Value: fmt.Sprintf("%d", ctx.Client.GuildCount()), Inline: true},
			{Name: "🎉 Sorteos activos", Value: activeText, Inline: true},
			{Name: "💾 Base de datos", Value: dbStatus, Inline: true},
			{Name: "🏷️ Versión", Value: config.Version, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "🎉 Desarrollado por PancyStudio | PancySorteos Go",
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	return ctx.ReplyEmbed(embed)
}

// helpCommand lists the available commands.
func helpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra la ayuda del bot",
		"utilidad",
		runHelp,
	)
}

func runHelp(ctx *discord.CommandContext) error {
	embed := &discordgo.MessageEmbed{
		Title:       "❓ Ayuda de PancySorteos",
		Description: "Organizo sorteos con requisitos de entrada y verificación por captcha.",
		Color:       0x9B59B6,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🎉 Sorteos",
				Value: "`/sorteo crear` inicia un sorteo ahora\n" +
					"`/sorteo programar` lo deja para más tarde\n" +
					"`/sorteo finalizar` sortea los ganadores ya\n" +
					"`/sorteo reroll` saca un ganador extra\n" +
					"`/sorteo cancelar` lo termina sin ganadores\n" +
					"`/sorteo eliminar` lo borra por completo\n" +
					"`/sorteo lista` muestra los sorteos del servidor",
			},
			{
				Name: "⚙️ Configuración",
				Value: "`/sconfig prefijo` cambia el prefijo\n" +
					"`/sconfig rolmanager` define quién gestiona sorteos\n" +
					"`/sconfig ver` muestra la configuración",
			},
			{
				Name:  "📥 Para participar",
				Value: "Reacciona al mensaje del sorteo. Si hay requisitos te avisaré por DM.",
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "🎉 Desarrollado por PancyStudio | PancySorteos Go",
		},
	}
	return ctx.ReplyEmbed(embed)
}
