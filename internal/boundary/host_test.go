package boundary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lw-rpg-backend/internal/domains/character/model"
	"lw-rpg-backend/internal/domains/roster"
)

const warriorJSON = `{
	"name": "Test Warrior",
	"health": 25,
	"subclass": "Test Fighter",
	"description": "A test character for unit testing",
	"attack": 6,
	"defense": 4,
	"will": 8,
	"speed": 7,
	"is_flying": false,
	"attacks": [
		"Sword Strike - 8 - basic melee attack within 1 pace",
		"Shield Bash - 4 - stun enemy for one turn within 1 pace"
	]
}`

func openSingle(t *testing.T, h *Host, name string) uint32 {
	t.Helper()
	doc := "[" + strings.Replace(warriorJSON, "Test Warrior", name, 1) + "]"
	handle, err := h.Open(doc)
	require.NoError(t, err)
	return handle
}

func read(t *testing.T, h *Host, handle uint32, v View) string {
	t.Helper()
	b, err := h.Read(handle, v)
	require.NoError(t, err)
	return string(b)
}

func TestHost_Scenario(t *testing.T) {
	h := NewHost()
	handle := openSingle(t, h, "A")

	count, err := h.Count(handle)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = h.Append(handle, strings.Replace(warriorJSON, "Test Warrior", "B", 1))
	require.NoError(t, err)

	v, err := h.NameIndex(handle)
	require.NoError(t, err)
	assert.Equal(t, "A\x00B\x00", read(t, h, handle, v))

	require.NoError(t, h.Delete(handle, 0))
	count, _ = h.Count(handle)
	assert.Equal(t, 1, count)

	name, err := h.Name(handle, 0)
	require.NoError(t, err)
	assert.Equal(t, "B", read(t, h, handle, name))
	assert.Equal(t, uint32(1), name.Len)

	v, _ = h.NameIndex(handle)
	assert.Equal(t, "B\x00", read(t, h, handle, v))
}

func TestHost_ViewsInvalidatedByMutation(t *testing.T) {
	h := NewHost()
	handle := h.OpenDefault()

	index, err := h.NameIndex(handle)
	require.NoError(t, err)
	attacks, err := h.Attacks(handle, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, read(t, h, handle, attacks))

	require.NoError(t, h.Delete(handle, 99)) // no-op, nhưng vẫn là mutation

	_, err = h.Read(handle, index)
	assert.ErrorIs(t, err, ErrStaleView)
	_, err = h.Read(handle, attacks)
	assert.ErrorIs(t, err, ErrStaleView)

	fresh, err := h.NameIndex(handle)
	require.NoError(t, err)
	assert.NotEqual(t, index.Ptr, fresh.Ptr)
}

func TestHost_ViewsAreIsolatedPerHandle(t *testing.T) {
	h := NewHost()
	a := openSingle(t, h, "A")
	b := openSingle(t, h, "B")

	va, err := h.Name(a, 0)
	require.NoError(t, err)

	require.NoError(t, h.Delete(b, 0))
	assert.Equal(t, "A", read(t, h, a, va))
}

func TestHost_AppendMalformedReturnsReason(t *testing.T) {
	h := NewHost()
	handle := h.OpenDefault()
	before, _ := h.Count(handle)
	indexView, _ := h.NameIndex(handle)
	indexBefore := read(t, h, handle, indexView)

	reason, err := h.Append(handle, `{"invalid": "json"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformed)
	assert.Contains(t, read(t, h, handle, reason), "malformed")

	after, _ := h.Count(handle)
	assert.Equal(t, before, after)
	indexView, _ = h.NameIndex(handle)
	assert.Equal(t, indexBefore, read(t, h, handle, indexView))

	pending, err := h.HasPending(handle)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestHost_ScalarsAndText(t *testing.T) {
	h := NewHost()
	handle := openSingle(t, h, "Test Warrior")

	stats := map[Stat]uint8{
		StatHealth:  25,
		StatAttack:  6,
		StatDefense: 4,
		StatWill:    8,
		StatSpeed:   7,
	}
	for stat, want := range stats {
		got, err := h.Stat(handle, 0, stat)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := h.Stat(handle, 0, Stat(42))
	assert.ErrorIs(t, err, ErrUnknownStat)

	flying, err := h.IsFlying(handle, 0)
	require.NoError(t, err)
	assert.False(t, flying)

	sub, _ := h.Subclass(handle, 0)
	assert.Equal(t, "Test Fighter", read(t, h, handle, sub))
	desc, _ := h.Description(handle, 0)
	assert.Equal(t, "A test character for unit testing", read(t, h, handle, desc))

	n, err := h.AttackCount(handle, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	blob, _ := h.Attacks(handle, 0)
	assert.Equal(t, 2, strings.Count(read(t, h, handle, blob), "\x00"))
}

func TestHost_SerializeAndPending(t *testing.T) {
	h := NewHost()
	handle := h.OpenDefault()

	_, err := h.Append(handle, warriorJSON)
	require.NoError(t, err)
	pending, _ := h.HasPending(handle)
	assert.True(t, pending)

	v, err := h.Serialize(handle)
	require.NoError(t, err)
	doc := read(t, h, handle, v)
	assert.Contains(t, doc, "The Archangel")
	assert.Contains(t, doc, "The Enemy")
	assert.Contains(t, doc, "Test Warrior")

	require.NoError(t, h.MarkSubmitted(handle))
	pending, _ = h.HasPending(handle)
	assert.False(t, pending)
}

func TestHost_Update(t *testing.T) {
	h := NewHost()
	handle := openSingle(t, h, "A")

	_, err := h.Update(handle, 0, strings.Replace(warriorJSON, "Test Warrior", "Renamed", 1))
	require.NoError(t, err)
	v, _ := h.NameIndex(handle)
	assert.Equal(t, "Renamed\x00", read(t, h, handle, v))

	reason, err := h.Update(handle, 5, warriorJSON)
	assert.ErrorIs(t, err, roster.ErrIndexOutOfRange)
	assert.Contains(t, read(t, h, handle, reason), "out of range")
}

func TestHost_BadHandle(t *testing.T) {
	h := NewHost()
	handle := h.OpenDefault()
	h.Close(handle)

	_, err := h.Count(handle)
	assert.ErrorIs(t, err, ErrBadHandle)
	_, err = h.Append(handle, warriorJSON)
	assert.ErrorIs(t, err, ErrBadHandle)
	assert.ErrorIs(t, h.Delete(42, 0), ErrBadHandle)
	_, err = h.Read(handle, View{Ptr: 1, Len: 1})
	assert.ErrorIs(t, err, ErrBadHandle)
}

func TestHost_OpenInvalid(t *testing.T) {
	h := NewHost()
	handle, err := h.Open("not json")
	assert.Zero(t, handle)
	assert.ErrorIs(t, err, model.ErrMalformed)
}

func TestHost_OutOfRangePanics(t *testing.T) {
	h := NewHost()
	handle := openSingle(t, h, "A")

	assert.Panics(t, func() { _, _ = h.Name(handle, 1) })
	assert.Panics(t, func() { _, _ = h.Stat(handle, 3, StatHealth) })
}

func TestHost_StoreOptions(t *testing.T) {
	h := NewHost(WithStoreOptions(roster.WithPendingTracking(false)))
	handle := h.OpenDefault()

	_, err := h.Append(handle, warriorJSON)
	require.NoError(t, err)
	pending, _ := h.HasPending(handle)
	assert.False(t, pending)
}

func TestArena(t *testing.T) {
	a := NewArena()

	empty := a.Put(nil)
	assert.Equal(t, View{}, empty)
	b, err := a.Peek(empty)
	require.NoError(t, err)
	assert.Empty(t, b)

	src := []byte("abc")
	v := a.Put(src)
	src[0] = 'x'
	b, err = a.Peek(v)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
	assert.Equal(t, 1, a.Live())

	_, err = a.Peek(View{Ptr: v.Ptr, Len: 2})
	assert.ErrorIs(t, err, ErrStaleView)
	_, err = a.Peek(View{Ptr: 0, Len: 3})
	assert.ErrorIs(t, err, ErrStaleView)

	a.Reset()
	assert.Equal(t, 0, a.Live())
	_, err = a.Peek(v)
	assert.ErrorIs(t, err, ErrStaleView)

	next := a.PutString("abc")
	assert.NotEqual(t, v.Ptr, next.Ptr)
}

func TestStatusOf(t *testing.T) {
	h := NewHost()
	handle := openSingle(t, h, "A")

	_, err := h.Append(handle, `{"name": ""}`)
	assert.Equal(t, StatusMalformed, StatusOf(err))

	_, err = h.Update(handle, 3, warriorJSON)
	assert.Equal(t, StatusOutOfRange, StatusOf(err))

	_, err = h.Count(999)
	assert.Equal(t, StatusBadHandle, StatusOf(err))

	_, err = h.Read(handle, View{Ptr: 77, Len: 1})
	assert.Equal(t, StatusStaleView, StatusOf(err))

	_, err = h.Stat(handle, 0, Stat(42))
	assert.Equal(t, StatusUnknownStat, StatusOf(err))

	assert.Equal(t, StatusOK, StatusOf(nil))
}

func TestHost_RepeatedReadsReuseBuffers(t *testing.T) {
	h := NewHost()
	handle := openSingle(t, h, "A")
	arena := h.sessions[handle].arena

	first, err := h.Name(handle, 0)
	require.NoError(t, err)
	index, err := h.NameIndex(handle)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		name, err := h.Name(handle, 0)
		require.NoError(t, err)
		assert.Equal(t, first, name)
		again, err := h.NameIndex(handle)
		require.NoError(t, err)
		assert.Equal(t, index, again)
	}
	assert.Equal(t, 2, arena.Live())

	_, _ = h.Serialize(handle)
	_, _ = h.Serialize(handle)
	assert.Equal(t, 3, arena.Live())

	_, err = h.Append(handle, strings.Replace(warriorJSON, "Test Warrior", "B", 1))
	require.NoError(t, err)
	assert.Equal(t, 0, arena.Live())

	_, err = h.Read(handle, first)
	assert.ErrorIs(t, err, ErrStaleView)
	fresh, err := h.NameIndex(handle)
	require.NoError(t, err)
	assert.Equal(t, "A\x00B\x00", read(t, h, handle, fresh))
	assert.Equal(t, 1, arena.Live())
}
