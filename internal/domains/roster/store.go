package roster

import (
	"lw-rpg-backend/internal/domains/character/model"
)

// terminator đánh dấu hết một segment trong buffer flatten
const terminator byte = 0

// ========================================
// OPTIONS
// ========================================

// Options chọn capability của store (schema drift giữa các bản lw.json)
type Options struct {
	Schema       model.Schema
	TrackPending bool
}

type Option func(*Options)

// WithSchema đổi record schema dùng khi decode
func WithSchema(schema model.Schema) Option {
	return func(o *Options) { o.Schema = schema }
}

// WithPendingTracking bật/tắt cờ "has new characters"
func WithPendingTracking(enabled bool) Option {
	return func(o *Options) { o.TrackPending = enabled }
}

func defaultOptions() Options {
	return Options{
		Schema:       model.DefaultSchema,
		TrackPending: true,
	}
}

// ========================================
// STORE
// ========================================

// Store giữ roster (theo thứ tự insert) và name index dẫn xuất từ nó.
//
// Store không thread-safe: chỉ một owner được mutate tại một thời điểm.
// Caller đa luồng dùng Guarded.
//
// Mọi []byte trả về từ store chỉ valid tới lần mutate kế tiếp.
type Store struct {
	opts      Options
	list      []model.Character
	nameIndex []byte
	pending   bool
}

// New decode toàn bộ roster từ JSON text và build name index.
// Lỗi decode nghĩa là không có roster dùng được: caller coi là fatal.
func New(text string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	list, err := o.Schema.Decode(text)
	if err != nil {
		return nil, err
	}

	s := &Store{opts: o, list: list}
	s.rebuildNameIndex()
	return s, nil
}

// MustNew giống New nhưng panic khi seed không hợp lệ
func MustNew(text string, opts ...Option) *Store {
	s, err := New(text, opts...)
	if err != nil {
		panic("roster: invalid seed document: " + err.Error())
	}
	return s
}

// Count trả về số record hiện tại
func (s *Store) Count() int {
	return len(s.list)
}

// NameIndex trả về buffer name\0name\0... theo thứ tự roster (read-only)
func (s *Store) NameIndex() []byte {
	return s.nameIndex
}

// ========================================
// MUTATIONS
// ========================================

// Append decode một record và đẩy vào cuối roster.
// Name index chỉ được nối thêm (O(1) amortized), không rebuild.
// Decode fail => roster và name index giữ nguyên, error trả cho caller.
func (s *Store) Append(text string) error {
	c, err := s.opts.Schema.DecodeOne(text)
	if err != nil {
		return err
	}

	s.list = append(s.list, c)
	s.nameIndex = appendSegment(s.nameIndex, c.Name)
	s.markPending()
	return nil
}

// Delete xóa record tại index, các record phía sau dịch lên 1.
// Index ngoài khoảng => no-op. Name index luôn được build lại (O(n)).
func (s *Store) Delete(index int) {
	if index < 0 || index >= len(s.list) {
		return
	}

	copy(s.list[index:], s.list[index+1:])
	s.list[len(s.list)-1] = model.Character{}
	s.list = s.list[:len(s.list)-1]

	s.rebuildNameIndex()
	s.markPending()
}

// Update thay record tại index bằng record decode từ text.
// Index sai trả *IndexOutOfRangeError; decode fail => không đổi gì.
func (s *Store) Update(index int, text string) error {
	if index < 0 || index >= len(s.list) {
		return &IndexOutOfRangeError{Index: index, Count: len(s.list)}
	}

	c, err := s.opts.Schema.DecodeOne(text)
	if err != nil {
		return err
	}

	s.list[index] = c
	s.rebuildNameIndex()
	s.markPending()
	return nil
}

// HasPendingChanges báo có thay đổi chưa submit (false nếu tắt tracking)
func (s *Store) HasPendingChanges() bool {
	return s.pending
}

// MarkSubmitted clear cờ pending
func (s *Store) MarkSubmitted() {
	s.pending = false
}

// SerializeRoster encode cả roster ra pretty JSON để caller persist.
// Không bao giờ fail: nếu encode lỗi thì trả về "[]".
func (s *Store) SerializeRoster() string {
	return model.Encode(s.list)
}

// ========================================
// FIELD ACCESSORS
// ========================================
// Index ngoài [0, Count()) => panic *IndexOutOfRangeError

func (s *Store) Health(i int) uint8  { return s.at(i).Health }
func (s *Store) Attack(i int) uint8  { return s.at(i).Attack }
func (s *Store) Defense(i int) uint8 { return s.at(i).Defense }
func (s *Store) Will(i int) uint8    { return s.at(i).Will }
func (s *Store) Speed(i int) uint8   { return s.at(i).Speed }
func (s *Store) IsFlying(i int) bool { return s.at(i).IsFlying }

func (s *Store) Name(i int) string        { return s.at(i).Name }
func (s *Store) Subclass(i int) string    { return s.at(i).Subclass }
func (s *Store) Description(i int) string { return s.at(i).Description }

// Text fields dạng bytes + length: boundary không có kiểu string native

func (s *Store) NameBytes(i int) []byte        { return []byte(s.at(i).Name) }
func (s *Store) NameLen(i int) int             { return len(s.at(i).Name) }
func (s *Store) SubclassBytes(i int) []byte    { return []byte(s.at(i).Subclass) }
func (s *Store) SubclassLen(i int) int         { return len(s.at(i).Subclass) }
func (s *Store) DescriptionBytes(i int) []byte { return []byte(s.at(i).Description) }
func (s *Store) DescriptionLen(i int) int      { return len(s.at(i).Description) }

// AttacksBlob flatten danh sách attack thành attack\0attack\0...
// Tính lại mỗi lần gọi (không cache): list attack ngắn và ít đổi.
func (s *Store) AttacksBlob(i int) []byte {
	attacks := s.at(i).Attacks

	size := 0
	for _, a := range attacks {
		size += len(a) + 1
	}
	blob := make([]byte, 0, size)
	for _, a := range attacks {
		blob = appendSegment(blob, a)
	}
	return blob
}

// AttackCount trả về số attack của record i
func (s *Store) AttackCount(i int) int {
	return len(s.at(i).Attacks)
}

// Character trả về deep copy của record i
func (s *Store) Character(i int) model.Character {
	return s.at(i).Clone()
}

// Companions trả về bản copy companions của record i (nil nếu không có).
// Companions không tham gia name index hay attacks blob.
func (s *Store) Companions(i int) []model.Character {
	return s.at(i).Clone().CompanionList()
}

// Characters trả về deep copy cả roster
func (s *Store) Characters() []model.Character {
	out := make([]model.Character, len(s.list))
	for i, c := range s.list {
		out[i] = c.Clone()
	}
	return out
}

// ========================================
// HELPERS
// ========================================

func (s *Store) at(i int) *model.Character {
	if i < 0 || i >= len(s.list) {
		panic(&IndexOutOfRangeError{Index: i, Count: len(s.list)})
	}
	return &s.list[i]
}

func (s *Store) markPending() {
	if s.opts.TrackPending {
		s.pending = true
	}
}

// rebuildNameIndex build lại name index từ đầu vào buffer mới,
// buffer cũ mà caller đang giữ bị bỏ (không ghi đè lên nó)
func (s *Store) rebuildNameIndex() {
	size := 0
	for _, c := range s.list {
		size += len(c.Name) + 1
	}
	index := make([]byte, 0, size)
	for _, c := range s.list {
		index = appendSegment(index, c.Name)
	}
	s.nameIndex = index
}

func appendSegment(buf []byte, text string) []byte {
	buf = append(buf, text...)
	return append(buf, terminator)
}
