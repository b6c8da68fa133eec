// Package notify fans giveaway lifecycle events out to the MQTT broker and
// the websocket live feed. Every delivery is best-effort; a dead broker or
// an empty feed never affects the giveaway itself.
package notify

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/PancyStudios/PancySorteosGo/pkg/models"
	"github.com/PancyStudios/PancySorteosGo/pkg/mqtt"
	"github.com/PancyStudios/PancySorteosGo/pkg/web"
)

// Broadcaster wires the outbound feeds. Either field may be nil.
type Broadcaster struct {
	mqtt *mqtt.MqttCommunicator
	hub  *web.Hub
}

// New creates a broadcaster over the given feeds.
func New(mc *mqtt.MqttCommunicator, hub *web.Hub) *Broadcaster {
	return &Broadcaster{mqtt: mc, hub: hub}
}

// feedEvent is the payload pushed to websocket clients.
type feedEvent struct {
	Kind       string    `json:"kind"`
	GiveawayID string    `json:"giveawayId"`
	GuildID    string    `json:"guildId,omitempty"`
	Prize      string    `json:"prize,omitempty"`
	WinnerIDs  []string  `json:"winnerIds,omitempty"`
	At         time.Time `json:"at"`
}

func (b *Broadcaster) emit(kind string, g *models.Giveaway, winnerIDs []string) {
	ev := feedEvent{
		Kind: kind,
		At:   time.Now(),
	}
	if g != nil {
		ev.GiveawayID = g.ID
		ev.GuildID = g.GuildID
		ev.Prize = g.Prize
	}
	ev.WinnerIDs = winnerIDs

	if b.hub != nil {
		b.hub.Broadcast(ev)
	}

	if b.mqtt != nil && b.mqtt.IsConnected() {
		mev := mqtt.Event{
			Kind:       ev.Kind,
			GiveawayID: ev.GiveawayID,
			GuildID:    ev.GuildID,
			Prize:      ev.Prize,
			WinnerIDs:  ev.WinnerIDs,
			At:         ev.At,
		}
		if g != nil {
			mev.ChannelID = g.ChannelID
		}
		if err := b.mqtt.PublishEvent(mev); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo publicar el evento %s en MQTT: %v", kind, err), "Notify")
		}
	}
}

// GiveawayStarted broadcasts a giveaway start
func (b *Broadcaster) GiveawayStarted(g *models.Giveaway) {
	b.emit("started", g, nil)
}

// GiveawayEnded broadcasts an ended giveaway with its winners
func (b *Broadcaster) GiveawayEnded(g *models.Giveaway, winnerIDs []string) {
	b.emit("ended", g, winnerIDs)
}

// GiveawayRerolled broadcasts an extra winner
func (b *Broadcaster) GiveawayRerolled(g *models.Giveaway, winnerID string) {
	b.emit("rerolled", g, []string{winnerID})
}

// GiveawayCancelled broadcasts a cancellation
func (b *Broadcaster) GiveawayCancelled(g *models.Giveaway) {
	b.emit("cancelled", g, nil)
}

// GiveawayDeleted broadcasts a deletion. Only the id survives the removal.
func (b *Broadcaster) GiveawayDeleted(id string) {
	b.emit("deleted", &models.Giveaway{ID: id}, nil)
}
