// Package boundary là lớp adapter giữa roster store và host (UI/wasm runtime).
//
// Host chỉ truyền được số nguyên và buffer, nên mọi text/collection được
// copy vào Arena của session và trả về dưới dạng View{Ptr, Len}.
// View sống tới lần mutate kế tiếp của chính session đó.
//
// Host không thread-safe (giống Store): một owner duy nhất.
package boundary

import (
	"fmt"

	"github.com/rs/zerolog"

	"lw-rpg-backend/internal/domains/roster"
)

type session struct {
	store *roster.Store
	arena *Arena
}

// Host quản lý các store theo handle uint32 (không có instance global)
type Host struct {
	opts     []roster.Option
	logger   zerolog.Logger
	next     uint32
	sessions map[uint32]*session
}

type HostOption func(*Host)

// WithStoreOptions truyền Option cho mọi store mà host mở
func WithStoreOptions(opts ...roster.Option) HostOption {
	return func(h *Host) { h.opts = append(h.opts, opts...) }
}

// WithLogger gắn logger; mặc định là zerolog.Nop()
func WithLogger(logger zerolog.Logger) HostOption {
	return func(h *Host) { h.logger = logger }
}

func NewHost(opts ...HostOption) *Host {
	h := &Host{
		logger:   zerolog.Nop(),
		sessions: make(map[uint32]*session),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ========================================
// LIFECYCLE
// ========================================

// Open construct store từ JSON text, trả về handle mới
func (h *Host) Open(text string) (uint32, error) {
	store, err := roster.New(text, h.opts...)
	if err != nil {
		h.logger.Warn().Err(err).Msg("boundary: failed to open roster")
		return 0, err
	}
	return h.attach(store), nil
}

// OpenDefault construct store từ seed bundle
func (h *Host) OpenDefault() uint32 {
	return h.attach(roster.NewDefault(h.opts...))
}

// Close giải phóng store và mọi buffer của nó
func (h *Host) Close(handle uint32) {
	delete(h.sessions, handle)
}

func (h *Host) attach(store *roster.Store) uint32 {
	h.next++
	if h.next == 0 {
		h.next = 1
	}
	h.sessions[h.next] = &session{store: store, arena: NewArena()}
	h.logger.Debug().Uint32("handle", h.next).Int("count", store.Count()).Msg("boundary: roster opened")
	return h.next
}

func (h *Host) lookup(handle uint32) (*session, error) {
	s, ok := h.sessions[handle]
	if !ok {
		return nil, ErrBadHandle
	}
	return s, nil
}

// ========================================
// QUERIES
// ========================================
// Index sai vẫn panic như Store (precondition của caller)

func (h *Host) Count(handle uint32) (int, error) {
	s, err := h.lookup(handle)
	if err != nil {
		return 0, err
	}
	return s.store.Count(), nil
}

// Stat là tên các scalar field đọc được qua boundary
type Stat int

const (
	StatHealth Stat = iota
	StatAttack
	StatDefense
	StatWill
	StatSpeed
)

// Stat đọc một scalar u8 của record i
func (h *Host) Stat(handle uint32, i int, stat Stat) (uint8, error) {
	s, err := h.lookup(handle)
	if err != nil {
		return 0, err
	}
	switch stat {
	case StatHealth:
		return s.store.Health(i), nil
	case StatAttack:
		return s.store.Attack(i), nil
	case StatDefense:
		return s.store.Defense(i), nil
	case StatWill:
		return s.store.Will(i), nil
	case StatSpeed:
		return s.store.Speed(i), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownStat, stat)
}

func (h *Host) IsFlying(handle uint32, i int) (bool, error) {
	s, err := h.lookup(handle)
	if err != nil {
		return false, err
	}
	return s.store.IsFlying(i), nil
}

func (h *Host) Name(handle uint32, i int) (View, error) {
	return h.view(handle, Query{QueryName, i}, func(st *roster.Store) []byte { return st.NameBytes(i) })
}

func (h *Host) Subclass(handle uint32, i int) (View, error) {
	return h.view(handle, Query{QuerySubclass, i}, func(st *roster.Store) []byte { return st.SubclassBytes(i) })
}

func (h *Host) Description(handle uint32, i int) (View, error) {
	return h.view(handle, Query{QueryDescription, i}, func(st *roster.Store) []byte { return st.DescriptionBytes(i) })
}

// Attacks trả về blob attack\0attack\0... của record i
func (h *Host) Attacks(handle uint32, i int) (View, error) {
	return h.view(handle, Query{QueryAttacks, i}, func(st *roster.Store) []byte { return st.AttacksBlob(i) })
}

func (h *Host) AttackCount(handle uint32, i int) (int, error) {
	s, err := h.lookup(handle)
	if err != nil {
		return 0, err
	}
	return s.store.AttackCount(i), nil
}

// NameIndex trả về name index của cả roster
func (h *Host) NameIndex(handle uint32) (View, error) {
	return h.view(handle, Query{Kind: QueryNameIndex}, func(st *roster.Store) []byte { return st.NameIndex() })
}

// Serialize trả về pretty JSON của cả roster
func (h *Host) Serialize(handle uint32) (View, error) {
	return h.view(handle, Query{Kind: QuerySerialize}, func(st *roster.Store) []byte { return []byte(st.SerializeRoster()) })
}

func (h *Host) HasPending(handle uint32) (bool, error) {
	s, err := h.lookup(handle)
	if err != nil {
		return false, err
	}
	return s.store.HasPendingChanges(), nil
}

// Read copy nội dung view ra cho caller
func (h *Host) Read(handle uint32, v View) ([]byte, error) {
	buf, err := h.Peek(handle, v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// Peek trả về buffer gốc của view (không copy), valid tới lần mutate kế tiếp
func (h *Host) Peek(handle uint32, v View) ([]byte, error) {
	s, err := h.lookup(handle)
	if err != nil {
		return nil, err
	}
	return s.arena.Peek(v)
}

// view trả về buffer của query; gọi lại không mutate thì dùng lại buffer cũ
func (h *Host) view(handle uint32, q Query, read func(*roster.Store) []byte) (View, error) {
	s, err := h.lookup(handle)
	if err != nil {
		return View{}, err
	}
	return s.arena.Cached(q, func() []byte { return read(s.store) }), nil
}

// ========================================
// MUTATIONS
// ========================================
// Mọi mutation reset arena của session trước khi chạy

// Append thêm một record. Decode fail => error + View chứa lý do
// (để host hiển thị), roster không đổi.
func (h *Host) Append(handle uint32, text string) (View, error) {
	s, err := h.mutate(handle)
	if err != nil {
		return View{}, err
	}
	if err := s.store.Append(text); err != nil {
		h.logger.Debug().Err(err).Uint32("handle", handle).Msg("boundary: append rejected")
		return s.arena.PutString(err.Error()), err
	}
	return View{}, nil
}

// Update thay record i. Decode fail => error + View chứa lý do.
func (h *Host) Update(handle uint32, i int, text string) (View, error) {
	s, err := h.mutate(handle)
	if err != nil {
		return View{}, err
	}
	if err := s.store.Update(i, text); err != nil {
		return s.arena.PutString(err.Error()), err
	}
	return View{}, nil
}

// Delete xóa record i; index sai là no-op
func (h *Host) Delete(handle uint32, i int) error {
	s, err := h.mutate(handle)
	if err != nil {
		return err
	}
	s.store.Delete(i)
	return nil
}

func (h *Host) MarkSubmitted(handle uint32) error {
	s, err := h.mutate(handle)
	if err != nil {
		return err
	}
	s.store.MarkSubmitted()
	return nil
}

func (h *Host) mutate(handle uint32) (*session, error) {
	s, err := h.lookup(handle)
	if err != nil {
		return nil, err
	}
	s.arena.Reset()
	return s, nil
}
