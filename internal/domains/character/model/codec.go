package model

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

const byteOrderMark = "\ufeff"

// emptyArray là output khi encode không được (best-effort preview)
const emptyArray = "[]"

// ========================================
// DECODE
// ========================================

// Decode parse một JSON array các character (schema mặc định)
func Decode(text string) ([]Character, error) {
	return DefaultSchema.Decode(text)
}

// DecodeOne parse đúng một character object (dùng cho append/update)
func DecodeOne(text string) (Character, error) {
	return DefaultSchema.DecodeOne(text)
}

// Decode parse JSON array theo schema s.
// BOM ở đầu document (nếu có) bị bỏ trước khi parse.
// Array rỗng hợp lệ => trả về slice rỗng (không nil).
func (s Schema) Decode(text string) ([]Character, error) {
	var wires []characterWire
	if err := unmarshal(text, &wires); err != nil {
		return nil, err
	}
	if wires == nil {
		return nil, malformed("expected a JSON array of characters, got null")
	}

	out := make([]Character, 0, len(wires))
	for i, w := range wires {
		if err := s.check(w); err != nil {
			return nil, malformed("character %d: %v", i, err)
		}
		out = append(out, w.toCharacter(s))
	}
	return out, nil
}

// DecodeOne parse một object theo schema s, cùng rule strict như Decode
func (s Schema) DecodeOne(text string) (Character, error) {
	var w *characterWire
	if err := unmarshal(text, &w); err != nil {
		return Character{}, err
	}
	if w == nil {
		return Character{}, malformed("expected a character object, got null")
	}
	if err := s.check(*w); err != nil {
		return Character{}, malformed("%v", err)
	}
	return w.toCharacter(s), nil
}

// check chạy ozzo validation; companions bị bỏ qua khi schema tắt capability
func (s Schema) check(w characterWire) error {
	if !s.Companions {
		w.Companions = nil
	}
	return w.Validate()
}

func unmarshal(text string, dest interface{}) error {
	text = strings.TrimLeft(text, byteOrderMark)

	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(dest); err != nil {
		return malformed("%v", err)
	}
	// Không cho phép rác sau value đầu tiên
	if _, err := dec.Token(); err != io.EOF {
		return malformed("unexpected data after top-level value")
	}
	return nil
}

// ========================================
// ENCODE
// ========================================

// Encode trả về pretty JSON array (indent 2 spaces).
// Là inverse của Decode: Decode(Encode(x)) == x.
// Không bao giờ fail với record hợp lệ; nếu fail thì trả về "[]".
func Encode(list []Character) string {
	if list == nil {
		list = []Character{}
	}
	out, err := marshalPretty(list)
	if err != nil {
		return emptyArray
	}
	return out
}

// EncodeOne trả về pretty JSON của một record
func EncodeOne(c Character) string {
	out, err := marshalPretty(c)
	if err != nil {
		return "{}"
	}
	return out
}

func marshalPretty(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
