package model

import (
	"errors"
	"fmt"
)

// ============================================================
// SENTINEL ERRORS
// ============================================================

// ErrMalformed: JSON sai cú pháp hoặc không đúng record schema
// (thiếu field, sai kiểu, u8 ngoài khoảng 0-255, name rỗng)
//
// Dùng errors.Is(err, ErrMalformed) để check, không so sánh string.
var ErrMalformed = errors.New("malformed character json")

// DecodeError mang theo lý do cụ thể để host hiển thị cho user
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformed.Error(), e.Reason)
}

// Is cho phép errors.Is(err, ErrMalformed) match mọi DecodeError
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(format string, args ...interface{}) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}
