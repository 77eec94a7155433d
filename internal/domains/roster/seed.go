package roster

import (
	_ "embed"
)

// Seed roster được bundle vào binary (thay cho việc đọc file lúc runtime)
//
//go:embed seed/lw.json
var seedDocument string

// SeedDocument trả về JSON seed đã bundle
func SeedDocument() string {
	return seedDocument
}

// NewDefault build store từ seed đã bundle.
// Seed bundle sai là lỗi build, nên panic thay vì trả error.
func NewDefault(opts ...Option) *Store {
	return MustNew(seedDocument, opts...)
}
