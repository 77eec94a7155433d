package model

// Character là một record trong roster (map 1-1 với object trong lw.json)
//
// Thứ tự field ở đây chính là thứ tự field khi encode ra JSON.
// Companions là optional: nil => không có key "companions" trong output.
type Character struct {
	Name        string       `json:"name"`
	Health      uint8        `json:"health"`
	Subclass    string       `json:"subclass"`
	Description string       `json:"description"`
	Attack      uint8        `json:"attack"`
	Defense     uint8        `json:"defense"`
	Will        uint8        `json:"will"`
	Speed       uint8        `json:"speed"`
	IsFlying    bool         `json:"is_flying"`
	Companions  *[]Character `json:"companions,omitempty"`
	Attacks     []string     `json:"attacks"`
}

// Clone trả về deep copy, caller được phép sửa thoải mái
func (c Character) Clone() Character {
	out := c
	if c.Attacks != nil {
		out.Attacks = make([]string, len(c.Attacks))
		copy(out.Attacks, c.Attacks)
	}
	if c.Companions != nil {
		companions := make([]Character, len(*c.Companions))
		for i, comp := range *c.Companions {
			companions[i] = comp.Clone()
		}
		out.Companions = &companions
	}
	return out
}

// HasCompanions báo record có ít nhất một companion hay không
func (c Character) HasCompanions() bool {
	return c.Companions != nil && len(*c.Companions) > 0
}

// CompanionList trả về companions dạng slice (nil nếu không có)
func (c Character) CompanionList() []Character {
	if c.Companions == nil {
		return nil
	}
	return *c.Companions
}

// Schema chọn các capability của record shape.
// Dùng config để bật/tắt thay vì giữ nhiều struct khác nhau.
type Schema struct {
	// Companions = true: chấp nhận field "companions" (đệ quy Character)
	Companions bool
}

// DefaultSchema bật toàn bộ capability
var DefaultSchema = Schema{Companions: true}
