package giveaway

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/models"
)

// memStore is an in-memory Store for the core tests.
type memStore struct {
	mu           sync.Mutex
	giveaways    map[string]*models.Giveaway
	participants map[string]map[string]models.Participant
	winners      []*models.Winner
	scheduled    map[string]*models.ScheduledGiveaway
}

func newMemStore() *memStore {
	return &memStore{
		giveaways:    make(map[string]*models.Giveaway),
		participants: make(map[string]map[string]models.Participant),
		scheduled:    make(map[string]*models.ScheduledGiveaway),
	}
}

func (m *memStore) CreateGiveaway(_ context.Context, g *models.Giveaway) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *g
	m.giveaways[g.ID] = &copied
	return nil
}

func (m *memStore) GiveawayByID(_ context.Context, id string) (*models.Giveaway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.giveaways[id]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) GiveawayByMessage(_ context.Context, messageID string) (*models.Giveaway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.giveaways {
		if g.MessageID == messageID {
			copied := *g
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) ClaimEnd(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.giveaways[id]
	if !ok || g.Ended {
		return false, nil
	}
	g.Ended = true
	return true, nil
}

func (m *memStore) OverdueGiveaways(_ context.Context, now time.Time) ([]*models.Giveaway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Giveaway
	for _, g := range m.giveaways {
		if !g.Ended && !g.EndsAt.After(now) {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) DeleteGiveaway(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.giveaways, id)
	return nil
}

func (m *memStore) AddParticipant(_ context.Context, p *models.Participant) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser, ok := m.participants[p.GiveawayID]
	if !ok {
		byUser = make(map[string]models.Participant)
		m.participants[p.GiveawayID] = byUser
	}
	if _, exists := byUser[p.UserID]; exists {
		return false, nil
	}
	byUser[p.UserID] = *p
	return true, nil
}

func (m *memStore) RemoveParticipant(_ context.Context, giveawayID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser, ok := m.participants[giveawayID]
	if !ok {
		return false, nil
	}
	if _, exists := byUser[userID]; !exists {
		return false, nil
	}
	delete(byUser, userID)
	return true, nil
}

func (m *memStore) Participants(_ context.Context, giveawayID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for userID := range m.participants[giveawayID] {
		ids = append(ids, userID)
	}
	return ids, nil
}

func (m *memStore) AddWinners(_ context.Context, winners []*models.Winner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.winners = append(m.winners, winners...)
	return nil
}

func (m *memStore) DeleteEntries(_ context.Context, giveawayID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.participants, giveawayID)
	kept := m.winners[:0]
	for _, w := range m.winners {
		if w.GiveawayID != giveawayID {
			kept = append(kept, w)
		}
	}
	m.winners = kept
	return nil
}

func (m *memStore) CreateScheduled(_ context.Context, sg *models.ScheduledGiveaway) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *sg
	m.scheduled[sg.ID] = &copied
	return nil
}

func (m *memStore) ScheduledByID(_ context.Context, id string) (*models.ScheduledGiveaway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sg, ok := m.scheduled[id]; ok {
		copied := *sg
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) DueScheduled(_ context.Context, now time.Time) ([]*models.ScheduledGiveaway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ScheduledGiveaway
	for _, sg := range m.scheduled {
		if !sg.StartAt.After(now) {
			copied := *sg
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) DeleteScheduled(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scheduled[id]; !ok {
		return false, nil
	}
	delete(m.scheduled, id)
	return true, nil
}

func (m *memStore) winnersOf(giveawayID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, w := range m.winners {
		if w.GiveawayID == giveawayID {
			ids = append(ids, w.UserID)
		}
	}
	return ids
}

// memMessenger records outbound calls and fails on demand.
type memMessenger struct {
	mu sync.Mutex

	publishErr       error
	sendChallengeErr error

	published     int
	endedCalls    int
	endedWinners  [][]string
	cancelled     int
	rerolls       []string
	announced     []string
	deleted       int
	grantedRoles  []string
	revokedRoles  []string
	challengesTo  []string
	nextMessageID int
}

func (f *memMessenger) PublishGiveaway(_ context.Context, _ *models.Giveaway) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.published++
	f.nextMessageID++
	return "msg-" + strconv.Itoa(f.nextMessageID), nil
}

func (f *memMessenger) MarkEnded(_ context.Context, _ *models.Giveaway, winnerIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endedCalls++
	f.endedWinners = append(f.endedWinners, winnerIDs)
	return nil
}

func (f *memMessenger) MarkCancelled(_ context.Context, _ *models.Giveaway) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
	return nil
}

func (f *memMessenger) AnnounceReroll(_ context.Context, _ *models.Giveaway, winnerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rerolls = append(f.rerolls, winnerID)
	return nil
}

func (f *memMessenger) Announce(_ context.Context, _ string, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announced = append(f.announced, content)
	return nil
}

func (f *memMessenger) DeletePublicRecord(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted++
	return nil
}

func (f *memMessenger) GrantRole(_ context.Context, _, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grantedRoles = append(f.grantedRoles, userID)
	return nil
}

func (f *memMessenger) RevokeRole(_ context.Context, _, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokedRoles = append(f.revokedRoles, userID)
	return nil
}

func (f *memMessenger) SendChallenge(_ context.Context, userID string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendChallengeErr != nil {
		return f.sendChallengeErr
	}
	f.challengesTo = append(f.challengesTo, userID)
	return nil
}

func (f *memMessenger) markEndedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.endedCalls
}

// memEligibility serves fixed snapshots and counts lookups so tests can
// assert short-circuiting.
type memEligibility struct {
	mu sync.Mutex

	roles          map[string]bool
	invites        map[string]int
	accountCreated map[string]time.Time
	joined         map[string]time.Time
	messages       map[string]int64
	voice          map[string]int64

	inviteLookups int
}

func newMemEligibility() *memEligibility {
	return &memEligibility{
		roles:          make(map[string]bool),
		invites:        make(map[string]int),
		accountCreated: make(map[string]time.Time),
		joined:         make(map[string]time.Time),
		messages:       make(map[string]int64),
		voice:          make(map[string]int64),
	}
}

func (f *memEligibility) HasRole(_ context.Context, _, userID, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[userID], nil
}

func (f *memEligibility) InviteCount(_ context.Context, _, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inviteLookups++
	return f.invites[userID], nil
}

func (f *memEligibility) AccountCreatedAt(_ context.Context, userID string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accountCreated[userID], nil
}

func (f *memEligibility) JoinedAt(_ context.Context, _, userID string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.joined[userID], nil
}

func (f *memEligibility) MessageCount(_ context.Context, _, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[userID], nil
}

func (f *memEligibility) VoiceMinutes(_ context.Context, _, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.voice[userID], nil
}

// memProvider returns a fixed puzzle.
type memProvider struct {
	answer string
}

func (p *memProvider) Generate() (*Challenge, error) {
	return &Challenge{Image: []byte("png"), Answer: p.answer}, nil
}
