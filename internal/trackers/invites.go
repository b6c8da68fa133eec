// Package trackers maintains the activity counters behind entry
// requirements: invite attribution and voice session time. Message counts
// are credited directly from the message event.
package trackers

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// inviteFetcher is the slice of the gateway the tracker needs.
// *discordgo.Session satisfies it.
type inviteFetcher interface {
	GuildInvites(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Invite, error)
}

// InviteTracker keeps a per-guild snapshot of invite uses so a member join
// can be attributed to the invite whose use count moved.
type InviteTracker struct {
	fetcher inviteFetcher

	mu sync.Mutex
	// snapshots[guildID][inviteCode] = (uses, inviterID)
	snapshots map[string]map[string]inviteState
}

type inviteState struct {
	uses      int
	inviterID string
}

// NewInviteTracker creates an empty tracker.
func NewInviteTracker(fetcher inviteFetcher) *InviteTracker {
	return &InviteTracker{
		fetcher:   fetcher,
		snapshots: make(map[string]map[string]inviteState),
	}
}

// Refresh replaces the snapshot of one guild with the live invite list.
// Called on startup, on guild join and after every attribution.
func (t *InviteTracker) Refresh(guildID string) error {
	invites, err := t.fetcher.GuildInvites(guildID)
	if err != nil {
		return err
	}

	snapshot := make(map[string]inviteState, len(invites))
	for _, inv := range invites {
		state := inviteState{uses: inv.Uses}
		if inv.Inviter != nil {
			state.inviterID = inv.Inviter.ID
		}
		snapshot[inv.Code] = state
	}

	t.mu.Lock()
	t.snapshots[guildID] = snapshot
	t.mu.Unlock()
	return nil
}

// Forget drops the snapshot of a guild the bot left.
func (t *InviteTracker) Forget(guildID string) {
	t.mu.Lock()
	delete(t.snapshots, guildID)
	t.mu.Unlock()
}

// Attribute resolves which member invited the newest join by comparing the
// live invite list against the snapshot. Returns the inviter id, or empty
// when no single invite moved (vanity urls, expired snapshots).
func (t *InviteTracker) Attribute(guildID string) (string, error) {
	invites, err := t.fetcher.GuildInvites(guildID)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	previous := t.snapshots[guildID]
	t.mu.Unlock()

	inviterID := ""
	for _, inv := range invites {
		before, known := previous[inv.Code]
		if known && inv.Uses > before.uses {
			if inv.Inviter != nil {
				inviterID = inv.Inviter.ID
			} else {
				inviterID = before.inviterID
			}
			break
		}
		if !known && inv.Uses > 0 && inv.Inviter != nil {
			// Invitación creada después del último snapshot
			inviterID = inv.Inviter.ID
		}
	}

	// El snapshot se renueva siempre, haya o no atribución
	snapshot := make(map[string]inviteState, len(invites))
	for _, inv := range invites {
		state := inviteState{uses: inv.Uses}
		if inv.Inviter != nil {
			state.inviterID = inv.Inviter.ID
		}
		snapshot[inv.Code] = state
	}
	t.mu.Lock()
	t.snapshots[guildID] = snapshot
	t.mu.Unlock()

	if inviterID == "" {
		logger.Debug(fmt.Sprintf("No se pudo atribuir la entrada en el servidor %s a ninguna invitación", guildID), "InviteTracker")
	}
	return inviterID, nil
}
