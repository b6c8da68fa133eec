package giveaway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/models"
)

func newTestEvaluator(elig *memEligibility, messenger *memMessenger) *Evaluator {
	e := NewEvaluator(elig, &memProvider{answer: "ABCD"}, messenger)
	e.window = 100 * time.Millisecond
	return e
}

func giveawayWith(req *models.Requirements) *models.Giveaway {
	return &models.Giveaway{
		ID:           "g1",
		GuildID:      "guild1",
		ChannelID:    "chan1",
		Prize:        "Nitro",
		WinnerCount:  1,
		Requirements: req,
	}
}

func TestEvaluateNoRequirements(t *testing.T) {
	e := newTestEvaluator(newMemEligibility(), &memMessenger{})

	if err := e.Evaluate(context.Background(), "guild1", "user1", giveawayWith(nil)); err != nil {
		t.Errorf("Evaluate without requirements = %v, want nil", err)
	}
}

func TestEvaluateInviteRequirement(t *testing.T) {
	elig := newMemEligibility()
	elig.invites["user1"] = 3
	e := newTestEvaluator(elig, &memMessenger{})

	err := e.Evaluate(context.Background(), "guild1", "user1", giveawayWith(&models.Requirements{Invites: 5}))

	re, ok := AsRequirementError(err)
	if !ok {
		t.Fatalf("Evaluate = %v, want RequirementError", err)
	}
	if !strings.Contains(re.Reason, "invitaciones") {
		t.Errorf("reason %q does not mention invites", re.Reason)
	}
	if !strings.Contains(re.Reason, "3") || !strings.Contains(re.Reason, "5") {
		t.Errorf("reason %q does not carry the counts", re.Reason)
	}
}

func TestEvaluateShortCircuitsOnFirstFailure(t *testing.T) {
	elig := newMemEligibility() // user has no roles
	e := newTestEvaluator(elig, &memMessenger{})

	req := &models.Requirements{RoleID: "role1", Invites: 5}
	err := e.Evaluate(context.Background(), "guild1", "user1", giveawayWith(req))

	if _, ok := AsRequirementError(err); !ok {
		t.Fatalf("Evaluate = %v, want RequirementError", err)
	}
	if elig.inviteLookups != 0 {
		t.Errorf("invite counter consulted %d times after role check failed, want 0", elig.inviteLookups)
	}
}

func TestEvaluateAccountAge(t *testing.T) {
	elig := newMemEligibility()
	elig.accountCreated["user1"] = time.Now().Add(-48 * time.Hour)
	e := newTestEvaluator(elig, &memMessenger{})

	err := e.Evaluate(context.Background(), "guild1", "user1", giveawayWith(&models.Requirements{AccountAgeDays: 7}))
	if _, ok := AsRequirementError(err); !ok {
		t.Fatalf("Evaluate = %v, want RequirementError", err)
	}

	elig.accountCreated["user1"] = time.Now().Add(-10 * 24 * time.Hour)
	if err := e.Evaluate(context.Background(), "guild1", "user1", giveawayWith(&models.Requirements{AccountAgeDays: 7})); err != nil {
		t.Errorf("Evaluate with old enough account = %v, want nil", err)
	}
}

func TestChallengeVerified(t *testing.T) {
	e := newTestEvaluator(newMemEligibility(), &memMessenger{})
	g := giveawayWith(&models.Requirements{Captcha: true})

	result := make(chan error, 1)
	go func() {
		result <- e.Evaluate(context.Background(), "guild1", "user1", g)
	}()

	waitForPending(t, e, "user1")

	// Respuesta en otra caja; el cotejo ignora mayúsculas
	if !e.Sessions().SubmitAnswer("user1", "abcd") {
		t.Fatal("SubmitAnswer found no pending session")
	}

	if err := <-result; err != nil {
		t.Errorf("Evaluate with correct answer = %v, want nil", err)
	}
	if e.Sessions().Pending("user1") {
		t.Error("session still pending after resolution")
	}
}

func TestChallengeWrongAnswer(t *testing.T) {
	e := newTestEvaluator(newMemEligibility(), &memMessenger{})
	g := giveawayWith(&models.Requirements{Captcha: true})

	result := make(chan error, 1)
	go func() {
		result <- e.Evaluate(context.Background(), "guild1", "user1", g)
	}()

	waitForPending(t, e, "user1")
	e.Sessions().SubmitAnswer("user1", "nope")

	if err := <-result; !errors.Is(err, ErrChallengeFailed) {
		t.Errorf("Evaluate with wrong answer = %v, want ErrChallengeFailed", err)
	}
}

func TestChallengeTimedOut(t *testing.T) {
	e := newTestEvaluator(newMemEligibility(), &memMessenger{})
	e.window = 30 * time.Millisecond
	g := giveawayWith(&models.Requirements{Captcha: true})

	err := e.Evaluate(context.Background(), "guild1", "user1", g)
	if !errors.Is(err, ErrChallengeTimedOut) {
		t.Errorf("Evaluate without reply = %v, want ErrChallengeTimedOut", err)
	}
	if e.Sessions().Pending("user1") {
		t.Error("session still pending after timeout")
	}
}

func TestChallengeCancelled(t *testing.T) {
	e := newTestEvaluator(newMemEligibility(), &memMessenger{})
	g := giveawayWith(&models.Requirements{Captcha: true})

	result := make(chan error, 1)
	go func() {
		result <- e.Evaluate(context.Background(), "guild1", "user1", g)
	}()

	waitForPending(t, e, "user1")
	e.CancelChallenge("user1")

	if err := <-result; !errors.Is(err, ErrChallengeFailed) {
		t.Errorf("Evaluate after withdrawal = %v, want ErrChallengeFailed", err)
	}
}

func TestChallengePendingIgnoresNewSignal(t *testing.T) {
	e := newTestEvaluator(newMemEligibility(), &memMessenger{})
	e.window = 200 * time.Millisecond
	g := giveawayWith(&models.Requirements{Captcha: true})

	first := make(chan error, 1)
	go func() {
		first <- e.Evaluate(context.Background(), "guild1", "user1", g)
	}()

	waitForPending(t, e, "user1")

	if err := e.Evaluate(context.Background(), "guild1", "user1", g); !errors.Is(err, ErrChallengePending) {
		t.Errorf("second Evaluate while pending = %v, want ErrChallengePending", err)
	}

	e.Sessions().SubmitAnswer("user1", "ABCD")
	if err := <-first; err != nil {
		t.Errorf("first Evaluate = %v, want nil", err)
	}
}

func TestChallengeDeliveryFailure(t *testing.T) {
	messenger := &memMessenger{sendChallengeErr: errors.New("dm cerrado")}
	e := newTestEvaluator(newMemEligibility(), messenger)
	g := giveawayWith(&models.Requirements{Captcha: true})

	err := e.Evaluate(context.Background(), "guild1", "user1", g)
	if !errors.Is(err, ErrChallengeFailed) {
		t.Errorf("Evaluate with undeliverable challenge = %v, want ErrChallengeFailed", err)
	}
	if e.Sessions().Pending("user1") {
		t.Error("session left pending after delivery failure")
	}
}

func TestSubmitAnswerWithoutSession(t *testing.T) {
	e := newTestEvaluator(newMemEligibility(), &memMessenger{})

	if e.Sessions().SubmitAnswer("user1", "hola") {
		t.Error("SubmitAnswer without a session should report false")
	}
}

func waitForPending(t *testing.T, e *Evaluator, userID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.Sessions().Pending(userID) {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("challenge session never became pending")
}
