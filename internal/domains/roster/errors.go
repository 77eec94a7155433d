package roster

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange: getter được gọi với index >= Count().
// Đây là lỗi lập trình của caller (phải check Count() trước),
// nên getter panic với *IndexOutOfRangeError thay vì trả error.
var ErrIndexOutOfRange = errors.New("roster index out of range")

// IndexOutOfRangeError là giá trị panic của getter
type IndexOutOfRangeError struct {
	Index int
	Count int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: index %d, count %d", ErrIndexOutOfRange.Error(), e.Index, e.Count)
}

func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
