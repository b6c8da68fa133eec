package trackers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
)

// voiceCrediter is the slice of the stats service the tracker writes to.
type voiceCrediter interface {
	AddVoiceMinutes(ctx context.Context, guildID, userID string, minutes int64) error
}

// VoiceTracker measures time spent in voice channels. Minutes are credited
// when the session closes, so only completed minutes count toward the
// voice requirement.
type VoiceTracker struct {
	stats voiceCrediter

	mu     sync.Mutex
	joined map[string]time.Time // guildID:userID -> join time
	now    func() time.Time
}

// NewVoiceTracker creates a tracker over the stats service.
func NewVoiceTracker(stats voiceCrediter) *VoiceTracker {
	return &VoiceTracker{
		stats:  stats,
		joined: make(map[string]time.Time),
		now:    time.Now,
	}
}

func voiceKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// HandleUpdate processes a voice state change. A non-empty channel opens a
// session if none exists; an empty channel closes it and credits the
// elapsed minutes.
func (t *VoiceTracker) HandleUpdate(ctx context.Context, guildID, userID, channelID string) {
	key := voiceKey(guildID, userID)

	t.mu.Lock()
	joinedAt, inVoice := t.joined[key]
	if channelID != "" {
		if !inVoice {
			t.joined[key] = t.now()
		}
		t.mu.Unlock()
		return
	}
	delete(t.joined, key)
	t.mu.Unlock()

	if !inVoice {
		return
	}

	minutes := int64(t.now().Sub(joinedAt) / time.Minute)
	if minutes <= 0 {
		return
	}
	if err := t.stats.AddVoiceMinutes(ctx, guildID, userID, minutes); err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron acreditar %d minutos de voz a %s: %v", minutes, userID, err), "VoiceTracker")
	}
}

// ActiveSessions returns how many users are currently being timed.
func (t *VoiceTracker) ActiveSessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.joined)
}
