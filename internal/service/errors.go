package service

import "errors"

// Expected business outcomes. The bot layer maps each to a specific
// user-facing message; none of them is a process-level failure.
var (
	ErrDuplicateTradeID    = errors.New("a deal with this trade id already exists for this user")
	ErrNotFoundOrCompleted = errors.New("no holding transaction with this trade id")
	ErrStaleSelection      = errors.New("staged deal expired or already consumed")
	ErrInvalidFeePercent   = errors.New("fee percentage is not among the allowed options")
)
