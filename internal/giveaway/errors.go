package giveaway

import "errors"

var (
	// ErrNotFound is returned when no active giveaway or scheduled row
	// matches an identifier. A redundant end or cancel also resolves to
	// ErrNotFound so admins see one uniform answer.
	ErrNotFound = errors.New("no se encontró el sorteo")

	// ErrAlreadyEnded is the internal flavor of a lost end/cancel race.
	// It is collapsed into ErrNotFound before leaving the package.
	ErrAlreadyEnded = errors.New("el sorteo ya ha finalizado")

	// ErrNotEnded is returned by Reroll on a giveaway still running.
	ErrNotEnded = errors.New("el sorteo todavía no ha finalizado")

	// ErrChannelUnavailable means the destination channel rejected a post.
	ErrChannelUnavailable = errors.New("el canal de destino no está disponible")

	// ErrChallengeFailed covers a wrong answer and a challenge that could
	// not be delivered to the user.
	ErrChallengeFailed = errors.New("verificación fallida")

	// ErrChallengeTimedOut means the user did not answer within the window.
	ErrChallengeTimedOut = errors.New("verificación expirada")

	// ErrChallengePending means the user already has a verification in
	// flight. New entry signals are ignored until it resolves.
	ErrChallengePending = errors.New("ya tienes una verificación en curso")
)

// RequirementError reports an entry gate rejection. Reason is user-facing
// Spanish text naming the unmet requirement.
type RequirementError struct {
	Reason string
}

func (e *RequirementError) Error() string {
	return e.Reason
}

// AsRequirementError unwraps err into a RequirementError if it is one.
func AsRequirementError(err error) (*RequirementError, bool) {
	var re *RequirementError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
