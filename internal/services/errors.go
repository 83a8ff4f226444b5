package services

import "errors"

var (
	// ErrInvalidCredentials is the only login failure callers ever see.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnknownCandidate   = errors.New("unknown candidate")
	ErrAlreadyVoted       = errors.New("voter has already cast a ballot")
	ErrVoteInProgress     = errors.New("a ballot submission is already in progress")
	ErrNotEligible        = errors.New("only voters can cast ballots")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidFilter      = errors.New("invalid filter")
)
