package giveaway

import (
	"context"
	"testing"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/models"
)

func newTestScheduler() (*Scheduler, *memStore, *memMessenger) {
	store := newMemStore()
	messenger := &memMessenger{}
	lc := NewLifecycle(store, messenger, NewSelector(), nil)
	return NewScheduler(store, lc, messenger), store, messenger
}

func TestPromotionComputesEndFromStartTime(t *testing.T) {
	s, store, _ := newTestScheduler()

	startAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sg := &models.ScheduledGiveaway{
		ID:          "1714000000001",
		GuildID:     "guild1",
		ChannelID:   "chan1",
		Prize:       "Nitro",
		WinnerCount: 1,
		StartAt:     startAt,
		DurationMS:  60000,
	}
	if err := store.CreateScheduled(context.Background(), sg); err != nil {
		t.Fatalf("seed scheduled: %v", err)
	}

	// El tick llega 3 segundos tarde
	s.now = func() time.Time { return startAt.Add(3 * time.Second) }
	s.scheduleSweep(context.Background())

	store.mu.Lock()
	var promoted *models.Giveaway
	for _, g := range store.giveaways {
		promoted = g
	}
	store.mu.Unlock()

	if promoted == nil {
		t.Fatal("scheduled giveaway was not promoted")
	}
	want := startAt.Add(60 * time.Second)
	if !promoted.EndsAt.Equal(want) {
		t.Errorf("EndsAt = %v, want %v (startAt + duration, not tick time + duration)", promoted.EndsAt, want)
	}

	if remaining, _ := store.ScheduledByID(context.Background(), sg.ID); remaining != nil {
		t.Error("scheduled row survived its promotion")
	}
}

func TestPromotionLeavesRowWhenChannelUnavailable(t *testing.T) {
	s, store, messenger := newTestScheduler()
	messenger.publishErr = ErrChannelUnavailable

	sg := &models.ScheduledGiveaway{
		ID:          "1714000000002",
		GuildID:     "guild1",
		ChannelID:   "chan1",
		Prize:       "Nitro",
		WinnerCount: 1,
		StartAt:     time.Now().Add(-time.Minute),
		DurationMS:  60000,
	}
	if err := store.CreateScheduled(context.Background(), sg); err != nil {
		t.Fatalf("seed scheduled: %v", err)
	}

	s.scheduleSweep(context.Background())

	if remaining, _ := store.ScheduledByID(context.Background(), sg.ID); remaining == nil {
		t.Error("scheduled row was dropped on a transient failure")
	}
	store.mu.Lock()
	created := len(store.giveaways)
	store.mu.Unlock()
	if created != 0 {
		t.Error("giveaway created despite the channel being unavailable")
	}

	// El canal vuelve; el siguiente tick completa la promoción
	messenger.mu.Lock()
	messenger.publishErr = nil
	messenger.mu.Unlock()
	s.scheduleSweep(context.Background())

	if remaining, _ := store.ScheduledByID(context.Background(), sg.ID); remaining != nil {
		t.Error("scheduled row survived the retry")
	}
}

func TestPromotionPostsAnnouncement(t *testing.T) {
	s, store, messenger := newTestScheduler()

	sg := &models.ScheduledGiveaway{
		ID:           "1714000000003",
		GuildID:      "guild1",
		ChannelID:    "chan1",
		Prize:        "Nitro",
		WinnerCount:  1,
		StartAt:      time.Now().Add(-time.Second),
		DurationMS:   60000,
		Announcement: "¡Empieza el sorteo!",
	}
	if err := store.CreateScheduled(context.Background(), sg); err != nil {
		t.Fatalf("seed scheduled: %v", err)
	}

	s.scheduleSweep(context.Background())

	messenger.mu.Lock()
	defer messenger.mu.Unlock()
	if len(messenger.announced) != 1 || messenger.announced[0] != "¡Empieza el sorteo!" {
		t.Errorf("announcements = %v, want the scheduled text once", messenger.announced)
	}
}

func TestRecoverySweepEndsOverdueExactlyOnce(t *testing.T) {
	s, store, messenger := newTestScheduler()

	g := &models.Giveaway{ID: "g1", MessageID: "m1", GuildID: "guild1", WinnerCount: 1, EndsAt: time.Now().Add(-time.Minute)}
	if err := store.CreateGiveaway(context.Background(), g); err != nil {
		t.Fatalf("seed giveaway: %v", err)
	}

	// Barridos repetidos sobre el mismo estado vencido
	s.recoverySweep(context.Background())
	s.recoverySweep(context.Background())
	s.recoverySweep(context.Background())

	if got := messenger.markEndedCount(); got != 1 {
		t.Errorf("overdue giveaway processed %d times across sweeps, want 1", got)
	}

	stored, _ := store.GiveawayByID(context.Background(), "g1")
	if stored == nil || !stored.Ended {
		t.Error("overdue giveaway not marked ended")
	}
}

func TestRecoverySweepSkipsFutureGiveaways(t *testing.T) {
	s, store, messenger := newTestScheduler()

	g := &models.Giveaway{ID: "g1", MessageID: "m1", GuildID: "guild1", WinnerCount: 1, EndsAt: time.Now().Add(time.Hour)}
	if err := store.CreateGiveaway(context.Background(), g); err != nil {
		t.Fatalf("seed giveaway: %v", err)
	}

	s.recoverySweep(context.Background())

	if got := messenger.markEndedCount(); got != 0 {
		t.Errorf("future giveaway ended %d times, want 0", got)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s, _, _ := newTestScheduler()
	s.recoveryEvery = 10 * time.Millisecond
	s.scheduleEvery = 10 * time.Millisecond

	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	// Stop es idempotente
	s.Stop()
}
