package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// listaCommand shows the active and scheduled giveaways of the guild.
func listaCommand() *discord.Command {
	return discord.NewCommand(
		"lista",
		"Muestra los sorteos activos y programados de este servidor",
		"sorteo",
		runLista,
	)
}

func runLista(ctx *discord.CommandContext) error {
	cctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	active, err := deps.Store.ActiveByGuild(cctx, ctx.Interaction.GuildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error listando sorteos: %v", err), "Commands")
		return ctx.ReplyEphemeral("❌ No se pudo leer la lista de sorteos.")
	}

	scheduled, err := deps.Store.ScheduledByGuild(cctx, ctx.Interaction.GuildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error listando sorteos programados: %v", err), "Commands")
		return ctx.ReplyEphemeral("❌ No se pudo leer la lista de sorteos.")
	}

	if len(active) == 0 && len(scheduled) == 0 {
		return ctx.ReplyEphemeral("😴 No hay sorteos activos ni programados en este servidor.")
	}

	embed := &discordgo.MessageEmbed{
		Title: "🎉 Sorteos del servidor",
		Color: 0xF1C40F,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "🎉 Desarrollado por PancyStudio | PancySorteos Go",
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if len(active) > 0 {
		var b strings.Builder
		for _, g := range active {
			fmt.Fprintf(&b, "• **%s** en <#%s>, termina <t:%d:R>\n", g.Prize, g.ChannelID, g.EndsAt.Unix())
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Activos",
			Value: b.String(),
		})
	}

	if len(scheduled) > 0 {
		var b strings.Builder
		for _, sg := range scheduled {
			fmt.Fprintf(&b, "• **%s** en <#%s>, empieza <t:%d:R> (ID: `%s`)\n", sg.Prize, sg.ChannelID, sg.StartAt.Unix(), sg.ID)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Programados",
			Value: b.String(),
		})
	}

	return ctx.ReplyEmbed(embed)
}
