package commands

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/config"
	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/errors"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// evalCommand evaluates Go code at runtime. Registered only in the dev guild
// and additionally gated by a hardcoded owner id.
func evalCommand() *discord.Command {
	return discord.NewCommand(
		"eval",
		"Evalúa código Go y muestra estructuras internas (Peligroso)",
		"dev",
		evalHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "codigo",
			Description: "Código o expresión Go a evaluar",
			Required:    true,
		},
	).AsDev()
}

func evalHandler(ctx *discord.CommandContext) error {
	go func() {
		errors.RecoverMiddleware()()
		start := time.Now()

		if !isDev(ctx.User().ID) {
			ctx.ReplyEphemeral("❌ **Acceso Denegado:** Este comando es solo para el equipo de desarrollo.")
			return
		}

		// Deferimos la respuesta porque compilar el script puede tomar unos milisegundos
		ctx.Defer()

		code := ctx.GetStringOption("codigo")
		code = strings.TrimPrefix(code, "```go")
		code = strings.TrimPrefix(code, "```")
		code = strings.TrimSuffix(code, "```")
		code = strings.TrimSpace(code)

		i := interp.New(interp.Options{})

		if err := i.Use(stdlib.Symbols); err != nil {
			ctx.EditReply(fmt.Sprintf("❌ Error cargando stdlib: %v", err))
			return
		}

		// Variables del bot disponibles dentro del script
		botExports := map[string]reflect.Value{
			"Ctx":       reflect.ValueOf(ctx),
			"Bot":       reflect.ValueOf(ctx.Client),
			"Session":   reflect.ValueOf(ctx.Session),
			"DB":        reflect.ValueOf(database.Get()),
			"Store":     reflect.ValueOf(deps.Store),
			"Lifecycle": reflect.ValueOf(deps.Lifecycle),
			"Config":    reflect.ValueOf(config.Get()),
		}

		if err := i.Use(interp.Exports{
			"github.com/PancyStudios/PancySorteosGo/internal/commands/commands": botExports,
		}); err != nil {
			ctx.EditReply(fmt.Sprintf("❌ Error registrando variables: %v", err))
			return
		}

		if _, err := i.Eval(`import . "github.com/PancyStudios/PancySorteosGo/internal/commands"`); err != nil {
			ctx.EditReply(fmt.Sprintf("❌ Error importando variables: %v", err))
			return
		}

		res, err := i.Eval(code)

		var output string
		if err != nil {
			output = fmt.Sprintf("❌ **Error de Ejecución:**\n```go\n%v\n```", err)
		} else {
			var resStr string
			if res.IsValid() {
				resStr = fmt.Sprintf("%#v", res.Interface())
			} else {
				resStr = "nil"
			}
			if len(resStr) > 1900 {
				resStr = resStr[:1900] + "... (truncado)"
			}
			output = fmt.Sprintf("✅ **Resultado:**\n```go\n%s\n```", resStr)
		}

		elapsed := time.Since(start)
		logger.Debug(fmt.Sprintf("Eval completado en %s. Limpiando contexto Yaegi...", elapsed), "DevEval")

		ctx.EditReply(output)
	}()
	return nil
}

// isDev checks the hardcoded owner id
func isDev(userID string) bool {
	return userID == "852683369899622430"
}
