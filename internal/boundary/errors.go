package boundary

import "errors"

var (
	// ErrBadHandle: handle không trỏ tới store nào đang mở
	ErrBadHandle = errors.New("unknown roster handle")

	// ErrStaleView: view đã bị invalidate bởi một lần mutate
	ErrStaleView = errors.New("stale or invalid buffer view")

	// ErrUnknownStat: mã stat nằm ngoài StatHealth..StatSpeed
	ErrUnknownStat = errors.New("unknown stat code")
)
