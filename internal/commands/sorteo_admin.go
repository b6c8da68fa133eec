package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancySorteosGo/internal/giveaway"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func idOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "id",
		Description: "ID del mensaje del sorteo o ID interno",
		Required:    true,
	}
}

// finalizarCommand ends a giveaway early and draws its winners.
func finalizarCommand() *discord.Command {
	return discord.NewCommand(
		"finalizar",
		"Finaliza un sorteo ahora y sortea los ganadores",
		"sorteo",
		runFinalizar,
	).WithOptions(idOption()).AsManagerOnly()
}

func runFinalizar(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	winners, err := deps.Lifecycle.End(cctx, ctx.GetStringOption("id"))
	if err != nil {
		if errors.Is(err, giveaway.ErrNotFound) {
			return ctx.EditReply("❌ No encontré un sorteo activo con ese identificador.")
		}
		logger.Error(fmt.Sprintf("Error finalizando sorteo: %v", err), "Commands")
		return ctx.EditReply("❌ No se pudo finalizar el sorteo. Inténtalo de nuevo.")
	}

	if len(winners) == 0 {
		return ctx.EditReply("🏁 Sorteo finalizado sin participantes válidos.")
	}
	return ctx.EditReply(fmt.Sprintf("🏁 Sorteo finalizado con %d ganador(es).", len(winners)))
}

// rerollCommand draws one extra winner from an ended giveaway.
func rerollCommand() *discord.Command {
	return discord.NewCommand(
		"reroll",
		"Sortea un ganador adicional de un sorteo finalizado",
		"sorteo",
		runReroll,
	).WithOptions(idOption()).AsManagerOnly()
}

func runReroll(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	winnerID, err := deps.Lifecycle.Reroll(cctx, ctx.GetStringOption("id"))
	if err != nil {
		switch {
		case errors.Is(err, giveaway.ErrNotFound):
			return ctx.EditReply("❌ No encontré un sorteo con ese identificador.")
		case errors.Is(err, giveaway.ErrNotEnded):
			return ctx.EditReply("❌ Ese sorteo sigue activo. Finalízalo antes de hacer reroll.")
		default:
			logger.Error(fmt.Sprintf("Error haciendo reroll: %v", err), "Commands")
			return ctx.EditReply("❌ No se pudo hacer el reroll. Inténtalo de nuevo.")
		}
	}

	if winnerID == "" {
		return ctx.EditReply("😕 No hay participantes de los que sortear.")
	}
	return ctx.EditReply(fmt.Sprintf("🎲 Nuevo ganador: <@%s>", winnerID))
}

// cancelarCommand ends a giveaway without drawing winners.
func cancelarCommand() *discord.Command {
	return discord.NewCommand(
		"cancelar",
		"Cancela un sorteo activo sin sortear ganadores",
		"sorteo",
		runCancelar,
	).WithOptions(idOption()).AsManagerOnly()
}

func runCancelar(ctx *discord.CommandContext) error {
	cctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := deps.Lifecycle.Cancel(cctx, ctx.GetStringOption("id")); err != nil {
		if errors.Is(err, giveaway.ErrNotFound) {
			return ctx.ReplyEphemeral("❌ No encontré un sorteo activo con ese identificador.")
		}
		logger.Error(fmt.Sprintf("Error cancelando sorteo: %v", err), "Commands")
		return ctx.ReplyEphemeral("❌ No se pudo cancelar el sorteo. Inténtalo de nuevo.")
	}

	return ctx.Reply("🚫 Sorteo cancelado.")
}

// eliminarCommand removes a giveaway (or a scheduled one) and all its rows.
func eliminarCommand() *discord.Command {
	return discord.NewCommand(
		"eliminar",
		"Elimina un sorteo o un sorteo programado por completo",
		"sorteo",
		runEliminar,
	).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "id",
		Description: "ID del mensaje, ID interno o ID de un sorteo programado",
		Required:    true,
	}).AsManagerOnly()
}

func runEliminar(ctx *discord.CommandContext) error {
	cctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := deps.Lifecycle.Delete(cctx, ctx.GetStringOption("id")); err != nil {
		if errors.Is(err, giveaway.ErrNotFound) {
			return ctx.ReplyEphemeral("❌ No encontré un sorteo con ese identificador.")
		}
		logger.Error(fmt.Sprintf("Error eliminando sorteo: %v", err), "Commands")
		return ctx.ReplyEphemeral("❌ No se pudo eliminar el sorteo. Inténtalo de nuevo.")
	}

	return ctx.Reply("🗑️ Sorteo eliminado junto con todas sus entradas.")
}
