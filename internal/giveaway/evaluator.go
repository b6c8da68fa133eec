package giveaway

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancySorteosGo/pkg/logger"
	"github.com/PancyStudios/PancySorteosGo/pkg/models"
)

// ChallengeWindow is how long a user has to answer a verification puzzle.
const ChallengeWindow = 60 * time.Second

// Evaluator runs the entry requirement gate. Checks run in a fixed order
// and the first failure wins, so the cheap predicates keep the expensive
// challenge sub-flow from ever starting.
type Evaluator struct {
	eligibility EligibilityStore
	provider    ChallengeProvider
	messenger   Messenger
	sessions    *ChallengeSessions
	window      time.Duration
	now         func() time.Time
}

// NewEvaluator creates an Evaluator with the default 60 second window.
func NewEvaluator(eligibility EligibilityStore, provider ChallengeProvider, messenger Messenger) *Evaluator {
	return &Evaluator{
		eligibility: eligibility,
		provider:    provider,
		messenger:   messenger,
		sessions:    NewChallengeSessions(),
		window:      ChallengeWindow,
		now:         time.Now,
	}
}

// Sessions exposes the registry so the message handler can route direct
// replies into pending verifications.
func (e *Evaluator) Sessions() *ChallengeSessions {
	return e.sessions
}

// Evaluate runs the full gate for one user. A nil return means the user
// may enter. Failures come back as *RequirementError or one of the
// challenge errors; anything else is a collaborator failure.
//
// The caller runs Evaluate on its own goroutine per entry signal: a user
// stuck in their challenge window never delays anyone else.
func (e *Evaluator) Evaluate(ctx context.Context, guildID, userID string, g *models.Giveaway) error {
	req := g.Requirements
	if req.Empty() {
		return nil
	}

	if req.RoleID != "" {
		has, err := e.eligibility.HasRole(ctx, guildID, userID, req.RoleID)
		if err != nil {
			return err
		}
		if !has {
			return &RequirementError{Reason: fmt.Sprintf("Necesitas el rol <@&%s> para participar en este sorteo.", req.RoleID)}
		}
	}

	if req.Invites > 0 {
		count, err := e.eligibility.InviteCount(ctx, guildID, userID)
		if err != nil {
			return err
		}
		if count < req.Invites {
			return &RequirementError{Reason: fmt.Sprintf("Necesitas al menos %d invitaciones para participar (tienes %d).", req.Invites, count)}
		}
	}

	if req.AccountAgeDays > 0 {
		createdAt, err := e.eligibility.AccountCreatedAt(ctx, userID)
		if err != nil {
			return err
		}
		if e.ageInDays(createdAt) < req.AccountAgeDays {
			return &RequirementError{Reason: fmt.Sprintf("Tu cuenta debe tener al menos %d días de antigüedad.", req.AccountAgeDays)}
		}
	}

	if req.ServerAgeDays > 0 {
		joinedAt, err := e.eligibility.JoinedAt(ctx, guildID, userID)
		if err != nil {
			return err
		}
		if e.ageInDays(joinedAt) < req.ServerAgeDays {
			return &RequirementError{Reason: fmt.Sprintf("Debes llevar al menos %d días en el servidor.", req.ServerAgeDays)}
		}
	}

	if req.Messages > 0 {
		count, err := e.eligibility.MessageCount(ctx, guildID, userID)
		if err != nil {
			return err
		}
		if count < req.Messages {
			return &RequirementError{Reason: fmt.Sprintf("Necesitas al menos %d mensajes en el servidor (tienes %d).", req.Messages, count)}
		}
	}

	if req.VoiceMinutes > 0 {
		minutes, err := e.eligibility.VoiceMinutes(ctx, guildID, userID)
		if err != nil {
			return err
		}
		if minutes < req.VoiceMinutes {
			return &RequirementError{Reason: fmt.Sprintf("Necesitas al menos %d minutos en canales de voz (tienes %d).", req.VoiceMinutes, minutes)}
		}
	}

	if req.Captcha {
		return e.runChallenge(ctx, userID)
	}

	return nil
}

func (e *Evaluator) ageInDays(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	return int(e.now().Sub(t).Hours() / 24)
}

// runChallenge drives the verification sub-flow for one user: generate
// the puzzle, register the session before delivery so an instant reply
// cannot slip past, deliver it and wait out the window.
func (e *Evaluator) runChallenge(ctx context.Context, userID string) error {
	challenge, err := e.provider.Generate()
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo generar el captcha: %v", err), "Evaluator")
		return ErrChallengeFailed
	}

	session, err := e.sessions.begin(userID, challenge.Answer)
	if err != nil {
		return err
	}

	if err := e.messenger.SendChallenge(ctx, userID, challenge.Image); err != nil {
		e.sessions.remove(userID)
		logger.Warn(fmt.Sprintf("No se pudo enviar el captcha al usuario %s: %v", userID, err), "Evaluator")
		return ErrChallengeFailed
	}

	switch e.sessions.await(userID, session, e.window) {
	case challengeVerified:
		return nil
	case challengeTimedOut:
		return ErrChallengeTimedOut
	default:
		return ErrChallengeFailed
	}
}

// CancelChallenge aborts a user's pending verification, used when they
// withdraw their entry signal mid-challenge.
func (e *Evaluator) CancelChallenge(userID string) {
	e.sessions.CancelChallenge(userID)
}
