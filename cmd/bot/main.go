// Package main is the entry point for the PancySorteos Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PancyStudios/PancySorteosGo/internal/commands"
	"github.com/PancyStudios/PancySorteosGo/internal/events"
	"github.com/PancyStudios/PancySorteosGo/internal/giveaway"
	"github.com/PancyStudios/PancySorteosGo/internal/notify"
	"github.com/PancyStudios/PancySorteosGo/internal/trackers"
	"github.com/PancyStudios/PancySorteosGo/pkg/captcha"
	"github.com/PancyStudios/PancySorteosGo/pkg/config"
	"github.com/PancyStudios/PancySorteosGo/pkg/database"
	"github.com/PancyStudios/PancySorteosGo/pkg/discord"
	"github.com/PancyStudios/PancySorteosGo/pkg/errors"
	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/PancyStudios/PancySorteosGo/pkg/mqtt"
	"github.com/PancyStudios/PancySorteosGo/pkg/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando PancySorteos Go...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	var scheduler *giveaway.Scheduler
	errors.Init(cfg.ErrorWebhook, func() {
		if scheduler != nil {
			scheduler.Stop()
		}
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				return
			}
		}
	})

	// Initialize database
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		// Continue without database- it will attempt to reconnect
	}
	defer func() {
		if db != nil {
			if err := db.Disconnect(); err != nil {
				return
			}
		}
	}()

	// Initialize global DataManagers and services
	var store *database.GiveawayStore
	var stats *database.StatsService
	if db != nil {
		database.InitGlobalDataManagers(db)

		if err := database.InitBlacklistCache(); err != nil {
			logger.Warn(fmt.Sprintf("Error inicializando caché de blacklist: %v", err), "Main")
		}
		database.StartBlacklistCacheRefresh()
		defer database.StopBlacklistCacheRefresh()

		store = database.InitGiveawayStore(db)
		stats = database.InitStatsService(db)
	}

	// Initialize MQTT
	mqttClientID := "pancysorteos"
	if !cfg.IsProd() {
		mqttClientID = "pancysorteos_canary"
	}

	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
	)
	defer mqttClient.Destroy()

	// Initialize web server
	webServer := web.Init(cfg.LogsWebServerHook)
	web.SetupAPIRoutes(webServer)
	webServer.StartAsync(cfg.Port)

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Wire the giveaway core
	gateway := discord.NewGateway(discordClient)
	eligibility := discord.NewEligibility(discordClient, stats)
	broadcaster := notify.New(mqttClient, webServer.Hub())

	selector := giveaway.NewSelector()
	lifecycle := giveaway.NewLifecycle(store, gateway, selector, broadcaster)
	evaluator := giveaway.NewEvaluator(eligibility, captcha.NewProvider(), gateway)
	scheduler = giveaway.NewScheduler(store, lifecycle, gateway)

	inviteTracker := trackers.NewInviteTracker(discordClient.Session)
	voiceTracker := trackers.NewVoiceTracker(stats)

	// Register commands and events
	commands.RegisterAll(discordClient, commands.Deps{
		Lifecycle: lifecycle,
		Store:     store,
		Gateway:   gateway,
	})

	events.RegisterAll(discordClient, events.Deps{
		Lifecycle: lifecycle,
		Evaluator: evaluator,
		Gateway:   gateway,
		Stats:     stats,
		Invites:   inviteTracker,
		Voice:     voiceTracker,
	})

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func(discordClient *discord.ExtendedClient) {
		if err := discordClient.Stop(); err != nil {
			return
		}
	}(discordClient)

	// Start the reconciliation sweeps once the session is up
	scheduler.Start()
	defer scheduler.Stop()

	// Answer panel status requests over MQTT
	mqttClient.On("status", func(payload map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{
			"ready":  discordClient.IsReady(),
			"guilds": discordClient.GuildCount(),
		}, nil
	})

	logger.Success("PancySorteos Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancySorteos Go...", "Main")
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
