// Package database - per-guild configuration backed by the cached DataManager.
package database

import (
	"errors"

	"github.com/PancyStudios/PancySorteosGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

var ErrGuildConfigManagerNotInitialized = errors.New("guild config data manager not initialized")

// GetGuildConfig returns the stored configuration of a guild.
// A guild without a stored row gets the defaults.
func GetGuildConfig(guildID string) (*models.GuildConfig, error) {
	if GlobalGuildConfigDM == nil {
		return nil, ErrGuildConfigManagerNotInitialized
	}

	cfg, err := GlobalGuildConfigDM.Get(bson.M{"_id": guildID})
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &models.GuildConfig{GuildID: guildID, Prefix: models.DefaultPrefix}, nil
	}
	return cfg, nil
}

// SetGuildPrefix updates the command prefix of a guild
func SetGuildPrefix(guildID, prefix string) (*models.GuildConfig, error) {
	if GlobalGuildConfigDM == nil {
		return nil, ErrGuildConfigManagerNotInitialized
	}

	current, err := GetGuildConfig(guildID)
	if err != nil {
		return nil, err
	}
	current.GuildID = guildID
	current.Prefix = prefix

	return GlobalGuildConfigDM.Set(bson.M{"_id": guildID}, current)
}

// SetGuildManagerRole updates the role allowed to manage giveaways in a guild
func SetGuildManagerRole(guildID, roleID string) (*models.GuildConfig, error) {
	if GlobalGuildConfigDM == nil {
		return nil, ErrGuildConfigManagerNotInitialized
	}

	current, err := GetGuildConfig(guildID)
	if err != nil {
		return nil, err
	}
	current.GuildID = guildID
	current.ManagerRoleID = roleID

	return GlobalGuildConfigDM.Set(bson.M{"_id": guildID}, current)
}

// DeleteGuildConfig removes the stored configuration of a guild
func DeleteGuildConfig(guildID string) error {
	if GlobalGuildConfigDM == nil {
		return ErrGuildConfigManagerNotInitialized
	}
	return GlobalGuildConfigDM.Delete(bson.M{"_id": guildID})
}
