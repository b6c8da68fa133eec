package trackers

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeCrediter struct {
	mu      sync.Mutex
	credits map[string]int64
}

func (f *fakeCrediter) AddVoiceMinutes(_ context.Context, guildID, userID string, minutes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credits == nil {
		f.credits = make(map[string]int64)
	}
	f.credits[guildID+":"+userID] += minutes
	return nil
}

func TestVoiceSessionCreditsCompletedMinutes(t *testing.T) {
	crediter := &fakeCrediter{}
	tracker := NewVoiceTracker(crediter)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return base }
	tracker.HandleUpdate(context.Background(), "guild1", "user1", "voice-channel")

	if tracker.ActiveSessions() != 1 {
		t.Fatalf("active sessions = %d, want 1", tracker.ActiveSessions())
	}

	// 7 minutos y medio después abandona el canal
	tracker.now = func() time.Time { return base.Add(7*time.Minute + 30*time.Second) }
	tracker.HandleUpdate(context.Background(), "guild1", "user1", "")

	if got := crediter.credits["guild1:user1"]; got != 7 {
		t.Errorf("credited minutes = %d, want 7", got)
	}
	if tracker.ActiveSessions() != 0 {
		t.Errorf("active sessions = %d, want 0", tracker.ActiveSessions())
	}
}

func TestVoiceChannelSwitchKeepsSession(t *testing.T) {
	crediter := &fakeCrediter{}
	tracker := NewVoiceTracker(crediter)

	base := time.Now()
	tracker.now = func() time.Time { return base }
	tracker.HandleUpdate(context.Background(), "guild1", "user1", "canal-a")
	tracker.HandleUpdate(context.Background(), "guild1", "user1", "canal-b")

	if tracker.ActiveSessions() != 1 {
		t.Errorf("active sessions = %d, want 1", tracker.ActiveSessions())
	}
	if len(crediter.credits) != 0 {
		t.Error("minutes credited on a channel switch")
	}
}

func TestVoiceShortSessionCreditsNothing(t *testing.T) {
	crediter := &fakeCrediter{}
	tracker := NewVoiceTracker(crediter)

	base := time.Now()
	tracker.now = func() time.Time { return base }
	tracker.HandleUpdate(context.Background(), "guild1", "user1", "canal-a")

	tracker.now = func() time.Time { return base.Add(20 * time.Second) }
	tracker.HandleUpdate(context.Background(), "guild1", "user1", "")

	if len(crediter.credits) != 0 {
		t.Error("a session under one minute credited minutes")
	}
}

func TestVoiceLeaveWithoutJoinIsNoop(t *testing.T) {
	crediter := &fakeCrediter{}
	tracker := NewVoiceTracker(crediter)

	tracker.HandleUpdate(context.Background(), "guild1", "user1", "")

	if len(crediter.credits) != 0 || tracker.ActiveSessions() != 0 {
		t.Error("leave without a tracked join changed state")
	}
}
