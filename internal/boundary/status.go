package boundary

import (
	"errors"

	"lw-rpg-backend/internal/domains/character/model"
	"lw-rpg-backend/internal/domains/roster"
)

// Status là mã kết quả số nguyên trả qua boundary (mutation, stat status)
type Status uint32

const (
	StatusOK Status = iota
	StatusMalformed
	StatusBadHandle
	StatusOutOfRange
	StatusStaleView
	StatusUnknown
	StatusUnknownStat
)

// StatusOf map error về Status
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, model.ErrMalformed):
		return StatusMalformed
	case errors.Is(err, ErrBadHandle):
		return StatusBadHandle
	case errors.Is(err, roster.ErrIndexOutOfRange):
		return StatusOutOfRange
	case errors.Is(err, ErrStaleView):
		return StatusStaleView
	case errors.Is(err, ErrUnknownStat):
		return StatusUnknownStat
	default:
		return StatusUnknown
	}
}
