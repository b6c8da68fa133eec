package giveaway

import (
	"strings"
	"sync"
	"time"
)

// challengeOutcome is the terminal state of a verification session.
type challengeOutcome int

const (
	challengeVerified challengeOutcome = iota
	challengeWrongAnswer
	challengeTimedOut
	challengeCancelled
)

// challengeSession is one user's pending verification. The first answer
// decides the session; there is no second attempt.
type challengeSession struct {
	answer  string
	replies chan string
	cancel  chan struct{}
}

// ChallengeSessions tracks pending verification sessions, one per user.
// Sessions are independent: a user waiting on their window never blocks
// another user's evaluation.
type ChallengeSessions struct {
	mu       sync.Mutex
	sessions map[string]*challengeSession
}

// NewChallengeSessions creates an empty session registry.
func NewChallengeSessions() *ChallengeSessions {
	return &ChallengeSessions{sessions: make(map[string]*challengeSession)}
}

// begin registers a pending session for a user. A user with a session
// already in flight gets ErrChallengePending; the caller ignores the new
// entry signal.
func (c *ChallengeSessions) begin(userID, answer string) (*challengeSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sessions[userID]; exists {
		return nil, ErrChallengePending
	}

	s := &challengeSession{
		answer:  answer,
		replies: make(chan string, 1),
		cancel:  make(chan struct{}),
	}
	c.sessions[userID] = s
	return s, nil
}

func (c *ChallengeSessions) remove(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, userID)
}

// Pending reports whether a user has a verification in flight.
func (c *ChallengeSessions) Pending(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.sessions[userID]
	return exists
}

// SubmitAnswer delivers a user's reply to their pending session. Returns
// false when the user has no session waiting, so the caller can treat the
// message as ordinary chat.
func (c *ChallengeSessions) SubmitAnswer(userID, text string) bool {
	c.mu.Lock()
	s, exists := c.sessions[userID]
	c.mu.Unlock()

	if !exists {
		return false
	}

	select {
	case s.replies <- text:
		return true
	default:
		// Una respuesta ya está en vuelo para esta sesión
		return false
	}
}

// CancelChallenge aborts a user's pending session, failing their entry.
// Called when the user withdraws their entry signal mid-challenge.
func (c *ChallengeSessions) CancelChallenge(userID string) {
	c.mu.Lock()
	s, exists := c.sessions[userID]
	c.mu.Unlock()

	if !exists {
		return
	}

	select {
	case <-s.cancel:
	default:
		close(s.cancel)
	}
}

// await blocks until the session resolves: first reply, cancellation or
// window expiry, whichever comes first. The answer comparison is a
// case-insensitive exact match.
func (c *ChallengeSessions) await(userID string, s *challengeSession, window time.Duration) challengeOutcome {
	defer c.remove(userID)

	timer := time.NewTimer(window)
	defer timer.Stop()

	select {
	case reply := <-s.replies:
		if strings.EqualFold(strings.TrimSpace(reply), s.answer) {
			return challengeVerified
		}
		return challengeWrongAnswer
	case <-s.cancel:
		return challengeCancelled
	case <-timer.C:
		return challengeTimedOut
	}
}
