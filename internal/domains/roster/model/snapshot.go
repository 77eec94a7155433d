package model

import "time"

// Snapshot là một lần submit roster: toàn bộ document + mô tả thay đổi
type Snapshot struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"` // pretty JSON của cả roster
	Title     string    `json:"title"`
	Message   string    `json:"message"` // commit message
	Body      string    `json:"body"`    // mô tả chi tiết (markdown)
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary là view gọn của roster cho UI list.
// Matches là các record qua Filter (toàn bộ roster khi filter rỗng).
type Summary struct {
	Count   int      `json:"count"`
	Pending bool     `json:"pending"`
	Names   []string `json:"names"`
	Matches []Match  `json:"matches"`
}

// Filter của admin list: Search so khớp tên không phân biệt hoa thường,
// Subclass phải khớp chính xác (rỗng = mọi subclass)
type Filter struct {
	Search   string
	Subclass string
}

// Match là một dòng của list đã lọc; Index là vị trí trong roster
type Match struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Subclass string `json:"subclass"`
	Health   uint8  `json:"health"`
	IsFlying bool   `json:"is_flying"`
}

// ChangeKind loại thay đổi trong một session admin
type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change ghi lại một mutation chưa submit
type Change struct {
	Kind  ChangeKind `json:"kind"`
	Index int        `json:"index"`
	Name  string     `json:"name"`
	At    time.Time  `json:"at"`
}
