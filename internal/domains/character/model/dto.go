package model

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// characterWire là shape trên wire khi decode.
// Mọi field đều là pointer để phân biệt "thiếu field" với "zero value":
// encoding/json không có khái niệm required field.
type characterWire struct {
	Name        *string          `json:"name"`
	Health      *uint8           `json:"health"`
	Subclass    *string          `json:"subclass"`
	Description *string          `json:"description"`
	Attack      *uint8           `json:"attack"`
	Defense     *uint8           `json:"defense"`
	Will        *uint8           `json:"will"`
	Speed       *uint8           `json:"speed"`
	IsFlying    *bool            `json:"is_flying"`
	Companions  *[]characterWire `json:"companions"`
	Attacks     *[]*string       `json:"attacks"` // element null => nil, không bị nuốt thành ""
}

// Validate kiểm tra required fields.
// Companions (nếu có) được ozzo validate đệ quy vì element cũng là Validatable.
func (w characterWire) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Name,
			validation.NotNil.Error("is required"),
			validation.Required.Error("must not be empty"),
		),
		validation.Field(&w.Health, validation.NotNil.Error("is required")),
		validation.Field(&w.Subclass, validation.NotNil.Error("is required")),
		validation.Field(&w.Description, validation.NotNil.Error("is required")),
		validation.Field(&w.Attack, validation.NotNil.Error("is required")),
		validation.Field(&w.Defense, validation.NotNil.Error("is required")),
		validation.Field(&w.Will, validation.NotNil.Error("is required")),
		validation.Field(&w.Speed, validation.NotNil.Error("is required")),
		validation.Field(&w.IsFlying, validation.NotNil.Error("is required")),
		validation.Field(&w.Attacks,
			validation.NotNil.Error("is required"),
			validation.By(attackEntries),
		),
		validation.Field(&w.Companions),
	)
}

// attackEntries: mọi phần tử của attacks phải là string (không null)
func attackEntries(value interface{}) error {
	attacks, _ := value.(*[]*string)
	if attacks == nil {
		return nil
	}
	for i, attack := range *attacks {
		if attack == nil {
			return fmt.Errorf("entry %d must be a string", i)
		}
	}
	return nil
}

// toCharacter chỉ gọi sau khi Validate() pass
func (w characterWire) toCharacter(schema Schema) Character {
	c := Character{
		Name:        *w.Name,
		Health:      *w.Health,
		Subclass:    *w.Subclass,
		Description: *w.Description,
		Attack:      *w.Attack,
		Defense:     *w.Defense,
		Will:        *w.Will,
		Speed:       *w.Speed,
		IsFlying:    *w.IsFlying,
		Attacks:     make([]string, len(*w.Attacks)),
	}
	for i, attack := range *w.Attacks {
		c.Attacks[i] = *attack
	}

	if schema.Companions && w.Companions != nil {
		companions := make([]Character, len(*w.Companions))
		for i, comp := range *w.Companions {
			companions[i] = comp.toCharacter(schema)
		}
		c.Companions = &companions
	}
	return c
}
