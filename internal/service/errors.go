package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/op-bracket/internal/apperrors"
	"github.com/AdamBeresnev/op-bracket/internal/bracket"
)

func TournamentNotFoundError() *apperrors.AppError {
	return apperrors.NotFound("tournament not found")
}

func MatchNotFoundError() *apperrors.AppError {
	return apperrors.NotFound("match not found")
}

func NextMatchNotFoundError() *apperrors.AppError {
	return apperrors.NotFound("next match not found, bracket links are broken")
}

func TournamentAlreadyStartedError() *apperrors.AppError {
	return apperrors.FailedPrecondition("tournament already started or finished")
}

func TournamentNotInProgressError(status bracket.TournamentStatus) *apperrors.AppError {
	return apperrors.FailedPrecondition(fmt.Sprintf("tournament is not in progress (status %s)", status))
}

func InsufficientParticipantsError(count int) *apperrors.AppError {
	return apperrors.Wrap(bracket.ErrInsufficientParticipants, apperrors.CodeFailedPrecondition,
		fmt.Sprintf("insufficient participants: %d registered, at least 2 required", count))
}

func CapacityExceededError(count, max int) *apperrors.AppError {
	return apperrors.FailedPrecondition(fmt.Sprintf("%d participants registered but the tournament allows %d", count, max))
}

func UnsupportedFormatError(format bracket.Format) *apperrors.AppError {
	return apperrors.FailedPrecondition(fmt.Sprintf("no bracket generator for format %q", format))
}

func NextSlotTakenError() *apperrors.AppError {
	return apperrors.Conflict("next match slot is already taken or the next match is resolved")
}

func OpponentPendingError() *apperrors.AppError {
	return apperrors.FailedPrecondition("match is still waiting for its second player")
}

// notFoundOr maps sql.ErrNoRows onto notFound and anything else onto an
// internal error.
func notFoundOr(err error, notFound *apperrors.AppError, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return apperrors.Internal(err, msg)
}

// resultError maps the validation errors of bracket.Match.ApplyResult.
func resultError(err error) error {
	switch {
	case errors.Is(err, bracket.ErrMatchAlreadyCompleted):
		return apperrors.Wrap(err, apperrors.CodeFailedPrecondition, "match result was already reported")
	case errors.Is(err, bracket.ErrWinnerNotInMatch), errors.Is(err, bracket.ErrNegativeScore):
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, err.Error())
	default:
		return apperrors.Internal(err, "failed to apply result")
	}
}
