package boundary

// View là cặp (pointer-equivalent handle, length) trả qua boundary.
// Ptr == 0 nghĩa là buffer rỗng.
type View struct {
	Ptr uint32
	Len uint32
}

// Query định danh một read query (loại + record index) để dùng lại buffer
type Query struct {
	Kind  QueryKind
	Index int
}

type QueryKind uint8

const (
	QueryName QueryKind = iota + 1
	QuerySubclass
	QueryDescription
	QueryAttacks
	QueryNameIndex
	QuerySerialize
)

// Arena giữ các buffer đã copy ra cho host.
// Mọi buffer bị giải phóng khi store mutate (Reset), nên View cũ
// sẽ resolve thành ErrStaleView thay vì đọc nhầm dữ liệu mới.
// Giữa hai lần mutate, cùng một Query luôn trả về cùng một View.
type Arena struct {
	next    uint32
	buffers map[uint32][]byte
	queries map[Query]View
}

func NewArena() *Arena {
	return &Arena{
		buffers: make(map[uint32][]byte),
		queries: make(map[Query]View),
	}
}

// Cached trả về View đã có của q; lần đầu thì gọi fill và Put kết quả
func (a *Arena) Cached(q Query, fill func() []byte) View {
	if v, ok := a.queries[q]; ok {
		return v
	}
	v := a.Put(fill())
	a.queries[q] = v
	return v
}

// Put copy data vào arena và trả về View của bản copy
func (a *Arena) Put(data []byte) View {
	if len(data) == 0 {
		return View{}
	}

	a.next++
	if a.next == 0 {
		a.next = 1
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	a.buffers[a.next] = buf

	return View{Ptr: a.next, Len: uint32(len(buf))}
}

// PutString giống Put nhưng nhận string
func (a *Arena) PutString(text string) View {
	return a.Put([]byte(text))
}

// Peek trả về buffer gốc (không copy) của view
func (a *Arena) Peek(v View) ([]byte, error) {
	if v.Ptr == 0 {
		if v.Len != 0 {
			return nil, ErrStaleView
		}
		return []byte{}, nil
	}

	buf, ok := a.buffers[v.Ptr]
	if !ok || uint32(len(buf)) != v.Len {
		return nil, ErrStaleView
	}
	return buf, nil
}

// Reset giải phóng mọi buffer; handle không được dùng lại
func (a *Arena) Reset() {
	if len(a.buffers) == 0 && len(a.queries) == 0 {
		return
	}
	a.buffers = make(map[uint32][]byte)
	a.queries = make(map[Query]View)
}

// Live trả về số buffer đang sống
func (a *Arena) Live() int {
	return len(a.buffers)
}
