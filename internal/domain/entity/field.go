package entity

type ControlType string

const (
	ControlText     ControlType = "text"
	ControlEmail    ControlType = "email"
	ControlTel      ControlType = "tel"
	ControlSelect   ControlType = "select-one"
	ControlCheckbox ControlType = "checkbox"
	ControlFile     ControlType = "file"
	ControlTextarea ControlType = "textarea"
	ControlURL      ControlType = "url"
	ControlNumber   ControlType = "number"
)

// IsTyped reports whether the control is filled by keystrokes.
func (c ControlType) IsTyped() bool {
	switch c {
	case ControlText, ControlEmail, ControlTel, ControlTextarea, ControlURL, ControlNumber:
		return true
	}
	return false
}

type FieldOption struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// DiscoveredField is one input-capable control found on the page. ID may be
// empty or shared between rendered instances.
type DiscoveredField struct {
	Type                ControlType   `json:"type"`
	ID                  string        `json:"id"`
	Name                string        `json:"name,omitempty"`
	Placeholder         string        `json:"placeholder,omitempty"`
	Required            bool          `json:"required"`
	Value               string        `json:"value,omitempty"`
	Label               string        `json:"label,omitempty"`
	GroupLabel          string        `json:"groupLabel,omitempty"`
	Description         string        `json:"description,omitempty"`
	Options             []FieldOption `json:"options,omitempty"`
	CheckboxOptionLabel string        `json:"optionLabel,omitempty"`
}

type Collection struct {
	Fields       []DiscoveredField
	FormSnapshot *string
}
