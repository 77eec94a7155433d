//go:build wasip1

// Command wasm build roster thành WASI reactor cho UI host:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o roster.wasm ./cmd/wasm
//
// Mọi export chỉ nhận/trả uint32. Text/collection trả qua cặp export
// *_ptr / *_len; địa chỉ chỉ valid tới lần mutate kế tiếp của handle đó.
package main

import (
	"unsafe"

	"lw-rpg-backend/internal/boundary"
)

var (
	host = boundary.NewHost()

	// buffer host ghi input vào (alloc/free), giữ reference để GC không thu hồi
	inputs = make(map[uint32][]byte)

	// lý do lỗi của mutation gần nhất theo handle
	lastErrors = make(map[uint32]boundary.View)
)

func main() {}

// ========================================
// MEMORY
// ========================================

//go:wasmexport alloc
func alloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	buf := make([]byte, size)
	ptr := address(buf)
	inputs[ptr] = buf
	return ptr
}

//go:wasmexport free
func free(ptr uint32) {
	delete(inputs, ptr)
}

func address(buf []byte) uint32 {
	if len(buf) == 0 {
		return 0
	}
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}

func input(ptr, size uint32) string {
	buf, ok := inputs[ptr]
	if !ok || size > uint32(len(buf)) {
		return ""
	}
	return string(buf[:size])
}

func resolve(handle uint32, v boundary.View, err error) uint32 {
	if err != nil {
		return 0
	}
	buf, err := host.Peek(handle, v)
	if err != nil {
		return 0
	}
	return address(buf)
}

func flag(ok bool) uint32 {
	if ok {
		return 1
	}
	return 0
}

// ========================================
// LIFECYCLE
// ========================================

// roster_open trả về 0 nếu JSON không hợp lệ
//
//go:wasmexport roster_open
func rosterOpen(ptr, size uint32) uint32 {
	handle, err := host.Open(input(ptr, size))
	if err != nil {
		return 0
	}
	return handle
}

//go:wasmexport roster_open_default
func rosterOpenDefault() uint32 {
	return host.OpenDefault()
}

//go:wasmexport roster_close
func rosterClose(handle uint32) {
	delete(lastErrors, handle)
	host.Close(handle)
}

// ========================================
// QUERIES
// ========================================

//go:wasmexport roster_count
func rosterCount(handle uint32) uint32 {
	n, _ := host.Count(handle)
	return uint32(n)
}

//go:wasmexport roster_has_pending
func rosterHasPending(handle uint32) uint32 {
	pending, _ := host.HasPending(handle)
	return flag(pending)
}

//go:wasmexport roster_names_ptr
func rosterNamesPtr(handle uint32) uint32 {
	v, err := host.NameIndex(handle)
	return resolve(handle, v, err)
}

//go:wasmexport roster_names_len
func rosterNamesLen(handle uint32) uint32 {
	v, _ := host.NameIndex(handle)
	return v.Len
}

//go:wasmexport roster_json_ptr
func rosterJSONPtr(handle uint32) uint32 {
	v, err := host.Serialize(handle)
	return resolve(handle, v, err)
}

//go:wasmexport roster_json_len
func rosterJSONLen(handle uint32) uint32 {
	v, _ := host.Serialize(handle)
	return v.Len
}

// character_stat: stat 0..4 = health, attack, defense, will, speed.
// Trả về 0 khi lỗi; dùng character_stat_status để phân biệt với giá trị 0 thật.
//
//go:wasmexport character_stat
func characterStat(handle, i, stat uint32) uint32 {
	v, _ := host.Stat(handle, int(i), boundary.Stat(stat))
	return uint32(v)
}

//go:wasmexport character_stat_status
func characterStatStatus(handle, i, stat uint32) uint32 {
	_, err := host.Stat(handle, int(i), boundary.Stat(stat))
	return uint32(boundary.StatusOf(err))
}

//go:wasmexport character_is_flying
func characterIsFlying(handle, i uint32) uint32 {
	flying, _ := host.IsFlying(handle, int(i))
	return flag(flying)
}

//go:wasmexport character_name_ptr
func characterNamePtr(handle, i uint32) uint32 {
	v, err := host.Name(handle, int(i))
	return resolve(handle, v, err)
}

//go:wasmexport character_name_len
func characterNameLen(handle, i uint32) uint32 {
	v, _ := host.Name(handle, int(i))
	return v.Len
}

//go:wasmexport character_subclass_ptr
func characterSubclassPtr(handle, i uint32) uint32 {
	v, err := host.Subclass(handle, int(i))
	return resolve(handle, v, err)
}

//go:wasmexport character_subclass_len
func characterSubclassLen(handle, i uint32) uint32 {
	v, _ := host.Subclass(handle, int(i))
	return v.Len
}

//go:wasmexport character_description_ptr
func characterDescriptionPtr(handle, i uint32) uint32 {
	v, err := host.Description(handle, int(i))
	return resolve(handle, v, err)
}

//go:wasmexport character_description_len
func characterDescriptionLen(handle, i uint32) uint32 {
	v, _ := host.Description(handle, int(i))
	return v.Len
}

//go:wasmexport character_attacks_ptr
func characterAttacksPtr(handle, i uint32) uint32 {
	v, err := host.Attacks(handle, int(i))
	return resolve(handle, v, err)
}

//go:wasmexport character_attacks_len
func characterAttacksLen(handle, i uint32) uint32 {
	v, _ := host.Attacks(handle, int(i))
	return v.Len
}

//go:wasmexport character_attack_count
func characterAttackCount(handle, i uint32) uint32 {
	n, _ := host.AttackCount(handle, int(i))
	return uint32(n)
}

// ========================================
// MUTATIONS
// ========================================
// Trả về boundary.Status; khác 0 thì đọc lý do qua roster_error_ptr/len

//go:wasmexport roster_append
func rosterAppend(handle, ptr, size uint32) uint32 {
	reason, err := host.Append(handle, input(ptr, size))
	return settle(handle, reason, err)
}

//go:wasmexport roster_update
func rosterUpdate(handle, i, ptr, size uint32) uint32 {
	reason, err := host.Update(handle, int(i), input(ptr, size))
	return settle(handle, reason, err)
}

//go:wasmexport roster_delete
func rosterDelete(handle, i uint32) uint32 {
	delete(lastErrors, handle)
	return uint32(boundary.StatusOf(host.Delete(handle, int(i))))
}

//go:wasmexport roster_mark_submitted
func rosterMarkSubmitted(handle uint32) uint32 {
	delete(lastErrors, handle)
	return uint32(boundary.StatusOf(host.MarkSubmitted(handle)))
}

//go:wasmexport roster_error_ptr
func rosterErrorPtr(handle uint32) uint32 {
	v, ok := lastErrors[handle]
	if !ok {
		return 0
	}
	return resolve(handle, v, nil)
}

//go:wasmexport roster_error_len
func rosterErrorLen(handle uint32) uint32 {
	return lastErrors[handle].Len
}

func settle(handle uint32, reason boundary.View, err error) uint32 {
	if err != nil {
		lastErrors[handle] = reason
	} else {
		delete(lastErrors, handle)
	}
	return uint32(boundary.StatusOf(err))
}
