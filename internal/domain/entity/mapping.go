package entity

// FieldMapping is one oracle decision. An empty TargetID means "skip".
type FieldMapping struct {
	TargetID    string      `json:"id"`
	ControlType ControlType `json:"type"`
	Value       string      `json:"value"`
}

type MappingRequest struct {
	Fields       []DiscoveredField `json:"fields"`
	FormSnapshot string            `json:"formHtml,omitempty"`
	Profile      *ApplicantProfile `json:"profile"`
}
