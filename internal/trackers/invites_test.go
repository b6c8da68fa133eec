package trackers

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

type fakeInviteFetcher struct {
	invites map[string][]*discordgo.Invite
}

func (f *fakeInviteFetcher) GuildInvites(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Invite, error) {
	return f.invites[guildID], nil
}

func invite(code, inviterID string, uses int) *discordgo.Invite {
	return &discordgo.Invite{
		Code:    code,
		Uses:    uses,
		Inviter: &discordgo.User{ID: inviterID},
	}
}

func TestAttributeFindsMovedInvite(t *testing.T) {
	fetcher := &fakeInviteFetcher{invites: map[string][]*discordgo.Invite{
		"guild1": {invite("abc", "user1", 3), invite("def", "user2", 1)},
	}}
	tracker := NewInviteTracker(fetcher)

	if err := tracker.Refresh("guild1"); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	// user2's invite gets used
	fetcher.invites["guild1"] = []*discordgo.Invite{invite("abc", "user1", 3), invite("def", "user2", 2)}

	inviterID, err := tracker.Attribute("guild1")
	if err != nil {
		t.Fatalf("Attribute() error: %v", err)
	}
	if inviterID != "user2" {
		t.Errorf("inviter = %q, want user2", inviterID)
	}
}

func TestAttributeNothingMoved(t *testing.T) {
	fetcher := &fakeInviteFetcher{invites: map[string][]*discordgo.Invite{
		"guild1": {invite("abc", "user1", 3)},
	}}
	tracker := NewInviteTracker(fetcher)
	_ = tracker.Refresh("guild1")

	inviterID, err := tracker.Attribute("guild1")
	if err != nil {
		t.Fatalf("Attribute() error: %v", err)
	}
	if inviterID != "" {
		t.Errorf("inviter = %q, want empty", inviterID)
	}
}

func TestAttributeNewInvite(t *testing.T) {
	fetcher := &fakeInviteFetcher{invites: map[string][]*discordgo.Invite{
		"guild1": {invite("abc", "user1", 0)},
	}}
	tracker := NewInviteTracker(fetcher)
	_ = tracker.Refresh("guild1")

	// Invitación creada y usada entre snapshots
	fetcher.invites["guild1"] = []*discordgo.Invite{invite("abc", "user1", 0), invite("xyz", "user3", 1)}

	inviterID, err := tracker.Attribute("guild1")
	if err != nil {
		t.Fatalf("Attribute() error: %v", err)
	}
	if inviterID != "user3" {
		t.Errorf("inviter = %q, want user3", inviterID)
	}
}

func TestAttributeRenewsSnapshot(t *testing.T) {
	fetcher := &fakeInviteFetcher{invites: map[string][]*discordgo.Invite{
		"guild1": {invite("abc", "user1", 1)},
	}}
	tracker := NewInviteTracker(fetcher)
	_ = tracker.Refresh("guild1")

	fetcher.invites["guild1"] = []*discordgo.Invite{invite("abc", "user1", 2)}
	if inviter, _ := tracker.Attribute("guild1"); inviter != "user1" {
		t.Fatalf("first attribution = %q, want user1", inviter)
	}

	// Sin más usos, la segunda atribución no debe repetir al mismo usuario
	if inviter, _ := tracker.Attribute("guild1"); inviter != "" {
		t.Errorf("second attribution = %q, want empty", inviter)
	}
}
