package giveaway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/models"
)

func newTestLifecycle() (*Lifecycle, *memStore, *memMessenger) {
	store := newMemStore()
	messenger := &memMessenger{}
	lc := NewLifecycle(store, messenger, NewSelector(), nil)
	return lc, store, messenger
}

func seedGiveaway(t *testing.T, store *memStore, g *models.Giveaway) {
	t.Helper()
	if err := store.CreateGiveaway(context.Background(), g); err != nil {
		t.Fatalf("seed giveaway: %v", err)
	}
}

func seedParticipants(t *testing.T, store *memStore, giveawayID string, users ...string) {
	t.Helper()
	for _, u := range users {
		if _, err := store.AddParticipant(context.Background(), &models.Participant{GiveawayID: giveawayID, UserID: u, JoinedAt: time.Now()}); err != nil {
			t.Fatalf("seed participant %s: %v", u, err)
		}
	}
}

func TestStartPublishesAndPersists(t *testing.T) {
	lc, store, messenger := newTestLifecycle()

	g, err := lc.Start(context.Background(), StartSpec{
		GuildID:     "guild1",
		ChannelID:   "chan1",
		HostID:      "host1",
		Prize:       "Nitro",
		WinnerCount: 2,
		EndsAt:      time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if g.MessageID == "" {
		t.Error("Start() did not attach the public message id")
	}
	if g.Emoji != "🎉" {
		t.Errorf("default emoji = %q, want 🎉", g.Emoji)
	}

	stored, _ := store.GiveawayByID(context.Background(), g.ID)
	if stored == nil {
		t.Fatal("giveaway not persisted")
	}
	if messenger.published != 1 {
		t.Errorf("published %d public records, want 1", messenger.published)
	}
}

func TestStartChannelUnavailable(t *testing.T) {
	lc, store, messenger := newTestLifecycle()
	messenger.publishErr = ErrChannelUnavailable

	_, err := lc.Start(context.Background(), StartSpec{GuildID: "g", ChannelID: "c", Prize: "x", WinnerCount: 1, EndsAt: time.Now().Add(time.Hour)})
	if !errors.Is(err, ErrChannelUnavailable) {
		t.Fatalf("Start() = %v, want ErrChannelUnavailable", err)
	}

	store.mu.Lock()
	count := len(store.giveaways)
	store.mu.Unlock()
	if count != 0 {
		t.Error("giveaway was created despite the channel being unavailable")
	}
}

func TestRecordEntryIdempotent(t *testing.T) {
	lc, store, _ := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", GuildID: "guild1"}
	seedGiveaway(t, store, g)

	created, err := lc.RecordEntry(context.Background(), g, "user1")
	if err != nil || !created {
		t.Fatalf("first RecordEntry = (%v, %v), want (true, nil)", created, err)
	}

	created, err = lc.RecordEntry(context.Background(), g, "user1")
	if err != nil {
		t.Fatalf("second RecordEntry error: %v", err)
	}
	if created {
		t.Error("second RecordEntry reported a new row")
	}

	participants, _ := store.Participants(context.Background(), "g1")
	if len(participants) != 1 {
		t.Errorf("participant rows = %d, want 1", len(participants))
	}
}

func TestWithdrawEntry(t *testing.T) {
	lc, store, _ := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", GuildID: "guild1"}
	seedGiveaway(t, store, g)
	seedParticipants(t, store, "g1", "user1")

	removed, err := lc.WithdrawEntry(context.Background(), g, "user1")
	if err != nil || !removed {
		t.Fatalf("WithdrawEntry = (%v, %v), want (true, nil)", removed, err)
	}

	removed, err = lc.WithdrawEntry(context.Background(), g, "user1")
	if err != nil {
		t.Fatalf("second WithdrawEntry error: %v", err)
	}
	if removed {
		t.Error("withdrawing an absent participant reported a removal")
	}
}

func TestEndConcurrentExactlyOnce(t *testing.T) {
	lc, store, messenger := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", MessageID: "m1", GuildID: "guild1", WinnerCount: 2, EndsAt: time.Now()}
	seedGiveaway(t, store, g)
	seedParticipants(t, store, "g1", "a", "b", "c", "d")

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = lc.End(context.Background(), "g1")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrNotFound):
		default:
			t.Errorf("unexpected End error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("%d callers completed the transition, want exactly 1", winners)
	}
	if got := messenger.markEndedCount(); got != 1 {
		t.Errorf("public record marked ended %d times, want 1", got)
	}
	if got := len(store.winnersOf("g1")); got != 2 {
		t.Errorf("winner rows = %d, want 2", got)
	}
}

func TestEndZeroParticipants(t *testing.T) {
	lc, store, messenger := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", MessageID: "m1", GuildID: "guild1", WinnerCount: 3, EndsAt: time.Now()}
	seedGiveaway(t, store, g)

	winners, err := lc.End(context.Background(), "m1")
	if err != nil {
		t.Fatalf("End() with no participants = %v, want nil", err)
	}
	if len(winners) != 0 {
		t.Errorf("winners = %v, want none", winners)
	}
	if len(store.winnersOf("g1")) != 0 {
		t.Error("winner rows persisted for an empty pool")
	}
	if messenger.markEndedCount() != 1 {
		t.Error("the no-entrants outcome was not announced")
	}
}

func TestEndUnknownIdentifier(t *testing.T) {
	lc, _, _ := newTestLifecycle()

	if _, err := lc.End(context.Background(), "desconocido"); !errors.Is(err, ErrNotFound) {
		t.Errorf("End() on unknown id = %v, want ErrNotFound", err)
	}
}

func TestEndAlreadyEnded(t *testing.T) {
	lc, store, _ := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", MessageID: "m1", GuildID: "guild1", WinnerCount: 1, Ended: true}
	seedGiveaway(t, store, g)

	if _, err := lc.End(context.Background(), "m1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("End() on ended giveaway = %v, want ErrNotFound", err)
	}
}

func TestRerollRequiresEnded(t *testing.T) {
	lc, store, _ := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", MessageID: "m1", GuildID: "guild1", WinnerCount: 1}
	seedGiveaway(t, store, g)

	if _, err := lc.Reroll(context.Background(), "m1"); !errors.Is(err, ErrNotEnded) {
		t.Errorf("Reroll() on active giveaway = %v, want ErrNotEnded", err)
	}
}

func TestRerollKeepsPriorWinnersSelectable(t *testing.T) {
	lc, store, _ := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", MessageID: "m1", GuildID: "guild1", WinnerCount: 1, Ended: true}
	seedGiveaway(t, store, g)
	seedParticipants(t, store, "g1", "a", "b", "c")
	_ = store.AddWinners(context.Background(), []*models.Winner{{GiveawayID: "g1", UserID: "a", WonAt: time.Now()}})

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		winner, err := lc.Reroll(context.Background(), "m1")
		if err != nil {
			t.Fatalf("Reroll() error: %v", err)
		}
		seen[winner] = true
	}

	for _, member := range []string{"a", "b", "c"} {
		if !seen[member] {
			t.Errorf("member %s never selected across rerolls", member)
		}
	}
}

func TestRerollEmptyPool(t *testing.T) {
	lc, store, _ := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", MessageID: "m1", GuildID: "guild1", WinnerCount: 1, Ended: true}
	seedGiveaway(t, store, g)

	winner, err := lc.Reroll(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Reroll() on empty pool = %v, want nil", err)
	}
	if winner != "" {
		t.Errorf("winner = %q, want empty", winner)
	}
}

func TestCancelClaimGuard(t *testing.T) {
	lc, store, messenger := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", MessageID: "m1", GuildID: "guild1", WinnerCount: 1, EndsAt: time.Now()}
	seedGiveaway(t, store, g)

	if err := lc.Cancel(context.Background(), "m1"); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if messenger.cancelled != 1 {
		t.Errorf("cancellation announced %d times, want 1", messenger.cancelled)
	}

	// La cancelación ya consumió la transición
	if _, err := lc.End(context.Background(), "m1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("End() after Cancel = %v, want ErrNotFound", err)
	}
	if len(store.winnersOf("g1")) != 0 {
		t.Error("winners selected for a cancelled giveaway")
	}
}

func TestDeleteResolvesScheduledFirst(t *testing.T) {
	lc, store, _ := newTestLifecycle()
	sg := &models.ScheduledGiveaway{ID: "1714000000000", GuildID: "guild1", ChannelID: "c", Prize: "x", WinnerCount: 1, StartAt: time.Now().Add(time.Hour), DurationMS: 60000}
	if err := store.CreateScheduled(context.Background(), sg); err != nil {
		t.Fatalf("seed scheduled: %v", err)
	}

	if err := lc.Delete(context.Background(), "1714000000000"); err != nil {
		t.Fatalf("Delete() scheduled id = %v, want nil", err)
	}
	if remaining, _ := store.ScheduledByID(context.Background(), "1714000000000"); remaining != nil {
		t.Error("scheduled row still present after delete")
	}
}

func TestDeleteRemovesEverything(t *testing.T) {
	lc, store, messenger := newTestLifecycle()
	g := &models.Giveaway{ID: "g1", MessageID: "98765432109876543", ChannelID: "c1", GuildID: "guild1", WinnerCount: 1}
	seedGiveaway(t, store, g)
	seedParticipants(t, store, "g1", "a", "b")
	_ = store.AddWinners(context.Background(), []*models.Winner{{GiveawayID: "g1", UserID: "a", WonAt: time.Now()}})

	if err := lc.Delete(context.Background(), "98765432109876543"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if remaining, _ := store.GiveawayByID(context.Background(), "g1"); remaining != nil {
		t.Error("giveaway row still present")
	}
	if participants, _ := store.Participants(context.Background(), "g1"); len(participants) != 0 {
		t.Error("participant rows still present")
	}
	if len(store.winnersOf("g1")) != 0 {
		t.Error("winner rows still present")
	}
	if messenger.deleted != 1 {
		t.Errorf("public record deleted %d times, want 1", messenger.deleted)
	}
}

func TestDeleteUnknownIdentifier(t *testing.T) {
	lc, _, _ := newTestLifecycle()

	if err := lc.Delete(context.Background(), "404404404404404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() on unknown id = %v, want ErrNotFound", err)
	}
}
