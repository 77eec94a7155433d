package service

import "errors"

var (
	// ErrNothingToSubmit: roster không có thay đổi nào kể từ lần submit trước
	ErrNothingToSubmit = errors.New("roster has no pending changes")

	// ErrInvalidCredentials: sai admin password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthDisabled: chưa cấu hình ADMIN_PASSWORD_HASH
	ErrAuthDisabled = errors.New("admin login is not configured")
)
