package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancySorteosGo/internal/giveaway"
	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/PancyStudios/PancySorteosGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const commandTimeout = 15 * time.Second

// requirementOptions returns the optional entry requirement options shared
// by crear and programar.
func requirementOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol_requerido",
			Description: "Rol necesario para participar",
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "invitaciones",
			Description: "Invitaciones mínimas para participar",
			MinValue:    float64Ptr(1),
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "edad_cuenta",
			Description: "Antigüedad mínima de la cuenta en días",
			MinValue:    float64Ptr(1),
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "edad_servidor",
			Description: "Días mínimos dentro del servidor",
			MinValue:    float64Ptr(1),
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "mensajes",
			Description: "Mensajes mínimos enviados en el servidor",
			MinValue:    float64Ptr(1),
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "minutos_voz",
			Description: "Minutos mínimos en canales de voz",
			MinValue:    float64Ptr(1),
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "captcha",
			Description: "Pedir verificación captcha por DM al participar",
		},
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol_entrada",
			Description: "Rol otorgado al entrar al sorteo",
		},
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "rol_ganador",
			Description: "Rol otorgado a los ganadores",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mensaje",
			Description: "Mensaje extra para el anuncio de ganadores",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "imagen",
			Description: "URL de la imagen del sorteo",
		},
	}
}

func float64Ptr(v float64) *float64 { return &v }

// collectRequirements reads the requirement options of the interaction.
// Returns nil when no requirement was set.
func collectRequirements(ctx *discord.CommandContext) *models.Requirements {
	req := &models.Requirements{
		Invites:        int(ctx.GetIntOption("invitaciones")),
		AccountAgeDays: int(ctx.GetIntOption("edad_cuenta")),
		ServerAgeDays:  int(ctx.GetIntOption("edad_servidor")),
		Messages:       ctx.GetIntOption("mensajes"),
		VoiceMinutes:   ctx.GetIntOption("minutos_voz"),
		Captcha:        ctx.GetBoolOption("captcha"),
	}
	if role := ctx.GetRoleOption("rol_requerido"); role != nil {
		req.RoleID = role.ID
	}
	if req.Empty() {
		return nil
	}
	return req
}

func roleID(ctx *discord.CommandContext, name string) string {
	if role := ctx.GetRoleOption(name); role != nil {
		return role.ID
	}
	return ""
}

// crearCommand starts a giveaway right away in the chosen channel.
func crearCommand() *discord.Command {
	return discord.NewCommand(
		"crear",
		"Crea un sorteo que empieza ahora mismo",
		"sorteo",
		runCrear,
	).WithOptions(append([]*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "premio",
			Description: "Qué se sortea",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duracion",
			Description: "Duración del sorteo (ej: 30m, 1h30m, 2d)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "ganadores",
			Description: "Cantidad de ganadores",
			Required:    true,
			MinValue:    float64Ptr(1),
		},
		{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "canal",
			Description: "Canal donde publicar (por defecto el actual)",
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildText,
				discordgo.ChannelTypeGuildNews,
			},
		},
	}, requirementOptions()...)...).AsManagerOnly()
}

func runCrear(ctx *discord.CommandContext) error {
	duration, err := parseDuration(ctx.GetStringOption("duracion"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ Duración inválida. Usa un formato como `30m`, `1h30m` o `2d`.")
	}

	channelID := ctx.Interaction.ChannelID
	if ch := ctx.GetChannelOption("canal"); ch != nil {
		channelID = ch.ID
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	spec := giveaway.StartSpec{
		GuildID:       ctx.Interaction.GuildID,
		ChannelID:     channelID,
		HostID:        ctx.User().ID,
		Prize:         ctx.GetStringOption("premio"),
		WinnerCount:   int(ctx.GetIntOption("ganadores")),
		EndsAt:        time.Now().Add(duration),
		Requirements:  collectRequirements(ctx),
		EntryRoleID:   roleID(ctx, "rol_entrada"),
		WinnerRoleID:  roleID(ctx, "rol_ganador"),
		CustomMessage: ctx.GetStringOption("mensaje"),
		Thumbnail:     ctx.GetStringOption("imagen"),
	}

	cctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	g, err := deps.Lifecycle.Start(cctx, spec)
	if err != nil {
		if errors.Is(err, giveaway.ErrChannelUnavailable) {
			return ctx.EditReply("❌ No puedo publicar en ese canal. Revisa mis permisos.")
		}
		logger.Error(fmt.Sprintf("Error creando sorteo: %v", err), "Commands")
		return ctx.EditReply("❌ No se pudo crear el sorteo. Inténtalo de nuevo.")
	}

	return ctx.EditReply(fmt.Sprintf(
		"✅ Sorteo de **%s** creado en <#%s>. Termina <t:%d:R>.",
		g.Prize, g.ChannelID, g.EndsAt.Unix(),
	))
}

// programarCommand stores a giveaway that starts later.
func programarCommand() *discord.Command {
	return discord.NewCommand(
		"programar",
		"Programa un sorteo para que empiece más tarde",
		"sorteo",
		runProgramar,
	).WithOptions(append([]*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "premio",
			Description: "Qué se sortea",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "inicio",
			Description: "Cuánto falta para empezar (ej: 30m, 2h)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duracion",
			Description: "Duración una vez iniciado (ej: 30m, 1h30m, 2d)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "ganadores",
			Description: "Cantidad de ganadores",
			Required:    true,
			MinValue:    float64Ptr(1),
		},
		{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "canal",
			Description: "Canal donde publicar (por defecto el actual)",
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildText,
				discordgo.ChannelTypeGuildNews,
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "anuncio",
			Description: "Mensaje publicado justo antes de empezar",
		},
	}, requirementOptions()...)...).AsManagerOnly()
}

func runProgramar(ctx *discord.CommandContext) error {
	startIn, err := parseDuration(ctx.GetStringOption("inicio"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ Tiempo de inicio inválido. Usa un formato como `30m` o `2h`.")
	}
	duration, err := parseDuration(ctx.GetStringOption("duracion"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ Duración inválida. Usa un formato como `30m`, `1h30m` o `2d`.")
	}

	channelID := ctx.Interaction.ChannelID
	if ch := ctx.GetChannelOption("canal"); ch != nil {
		channelID = ch.ID
	}

	now := time.Now()
	sg := &models.ScheduledGiveaway{
		ID:            database.NewScheduledID(),
		GuildID:       ctx.Interaction.GuildID,
		ChannelID:     channelID,
		HostID:        ctx.User().ID,
		Prize:         ctx.GetStringOption("premio"),
		WinnerCount:   int(ctx.GetIntOption("ganadores")),
		StartAt:       now.Add(startIn),
		DurationMS:    duration.Milliseconds(),
		Requirements:  collectRequirements(ctx),
		EntryRoleID:   roleID(ctx, "rol_entrada"),
		WinnerRoleID:  roleID(ctx, "rol_ganador"),
		CustomMessage: ctx.GetStringOption("mensaje"),
		Thumbnail:     ctx.GetStringOption("imagen"),
		Announcement:  ctx.GetStringOption("anuncio"),
		CreatedAt:     now,
	}

	cctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := deps.Store.CreateScheduled(cctx, sg); err != nil {
		logger.Error(fmt.Sprintf("Error programando sorteo: %v", err), "Commands")
		return ctx.ReplyEphemeral("❌ No se pudo programar el sorteo. Inténtalo de nuevo.")
	}

	return ctx.Reply(fmt.Sprintf(
		"⏰ Sorteo de **%s** programado para <t:%d:R> en <#%s> (duración: %s).\nID: `%s`",
		sg.Prize, sg.StartAt.Unix(), sg.ChannelID, formatDuration(duration), sg.ID,
	))
}
