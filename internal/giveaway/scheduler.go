package giveaway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/PancyStudios/PancySorteosGo/pkg/models"
)

const (
	// RecoveryInterval is the fast sweep over active giveaways whose end
	// time already passed. It is the crash recovery net.
	RecoveryInterval = 5 * time.Second

	// ScheduleInterval is the sweep over scheduled giveaways due to start.
	ScheduleInterval = 10 * time.Second
)

// Scheduler reconciles stored state with the clock. Both sweeps are
// level-triggered polls: an item that stays due across ticks is processed
// once and then drops out of the due set, via the lifecycle claim guard
// for overdue giveaways and via row deletion for promoted schedules.
type Scheduler struct {
	store     Store
	lifecycle *Lifecycle
	messenger Messenger

	recoveryEvery time.Duration
	scheduleEvery time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	now      func() time.Time
}

// NewScheduler wires the reconciliation scheduler with the fixed cadences.
func NewScheduler(store Store, lifecycle *Lifecycle, messenger Messenger) *Scheduler {
	return &Scheduler{
		store:         store,
		lifecycle:     lifecycle,
		messenger:     messenger,
		recoveryEvery: RecoveryInterval,
		scheduleEvery: ScheduleInterval,
		stop:          make(chan struct{}),
		now:           time.Now,
	}
}

// Start launches both sweep loops. One active scheduler per deployment;
// idempotency, not locking, is the safety net if that is ever violated.
func (s *Scheduler) Start() {
	s.wg.Add(2)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.recoveryEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.recoverySweep(context.Background())
			case <-s.stop:
				return
			}
		}
	}()

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.scheduleEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.scheduleSweep(context.Background())
			case <-s.stop:
				return
			}
		}
	}()

	logger.System(fmt.Sprintf("Planificador de sorteos iniciado (recuperación cada %s, programación cada %s)", s.recoveryEvery, s.scheduleEvery), "Scheduler")
}

// Stop halts both loops and waits for the current tick to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	logger.System("Planificador de sorteos detenido", "Scheduler")
}

// recoverySweep ends every active giveaway whose end time has passed.
// Errors are logged and never surface; one bad giveaway must not block
// the rest of the tick.
func (s *Scheduler) recoverySweep(ctx context.Context) {
	overdue, err := s.store.OverdueGiveaways(ctx, s.now())
	if err != nil {
		logger.Error(fmt.Sprintf("Error buscando sorteos vencidos: %v", err), "Scheduler")
		return
	}

	for _, g := range overdue {
		if _, err := s.lifecycle.End(ctx, g.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				// Otro actor ganó la carrera; nada que hacer
				continue
			}
			logger.Error(fmt.Sprintf("Error finalizando el sorteo vencido %s: %v", g.ID, err), "Scheduler")
		}
	}
}

// scheduleSweep promotes every scheduled giveaway whose start time has
// passed. The row is deleted only after a successful promotion so a
// transient failure retries on the next tick.
func (s *Scheduler) scheduleSweep(ctx context.Context) {
	due, err := s.store.DueScheduled(ctx, s.now())
	if err != nil {
		logger.Error(fmt.Sprintf("Error buscando sorteos programados: %v", err), "Scheduler")
		return
	}

	for _, sg := range due {
		if err := s.promote(ctx, sg); err != nil {
			logger.Error(fmt.Sprintf("Error promoviendo el sorteo programado %s (se reintentará): %v", sg.ID, err), "Scheduler")
		}
	}
}

// promote turns one scheduled row into a live giveaway. The end time is
// startAt+duration, never now+duration, so ticking late does not stretch
// the giveaway.
func (s *Scheduler) promote(ctx context.Context, sg *models.ScheduledGiveaway) error {
	if sg.Announcement != "" {
		if err := s.messenger.Announce(ctx, sg.ChannelID, sg.Announcement); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo publicar el anuncio del sorteo programado %s: %v", sg.ID, err), "Scheduler")
		}
	}

	spec := StartSpec{
		GuildID:       sg.GuildID,
		ChannelID:     sg.ChannelID,
		HostID:        sg.HostID,
		Prize:         sg.Prize,
		WinnerCount:   sg.WinnerCount,
		EndsAt:        sg.StartAt.Add(sg.Duration()),
		Emoji:         sg.Emoji,
		Requirements:  sg.Requirements,
		EntryRoleID:   sg.EntryRoleID,
		WinnerRoleID:  sg.WinnerRoleID,
		CustomMessage: sg.CustomMessage,
		Thumbnail:     sg.Thumbnail,
	}

	if _, err := s.lifecycle.Start(ctx, spec); err != nil {
		return err
	}

	if _, err := s.store.DeleteScheduled(ctx, sg.ID); err != nil {
		// El sorteo ya existe; si esto falla el siguiente tick intentará
		// promover de nuevo y duplicará el mensaje, así que se insiste
		logger.Error(fmt.Sprintf("No se pudo consumir la fila programada %s: %v", sg.ID, err), "Scheduler")
		return err
	}
	return nil
}
