package site

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const consentButton = "#onetrust-accept-btn-handler"

// Greenhouse serves two generations of boards with different form ids.
func Greenhouse() Adapter {
	return Adapter{
		Name:  "greenhouse",
		Hosts: []string{"job-boards.greenhouse.io", "boards.greenhouse.io"},
		Readiness: []Rule{
			{Match: "job-boards.greenhouse.io", Selector: "#application-form"},
			{Match: "boards.greenhouse.io", Selector: "#application_form"},
			{Selector: "#application-form, #application_form"},
		},
		PreSteps: []Step{
			{Name: "cookie consent", Selector: consentButton},
		},
		FormSelector:   ".main, #application_form",
		SubmitSelector: ".application--submit button, #submit_app",
	}
}

func Lever() Adapter {
	return Adapter{
		Name:  "lever",
		Hosts: []string{"jobs.lever.co", "jobs.eu.lever.co"},
		Readiness: []Rule{
			{Selector: "#application-form, .application-form"},
		},
		PreSteps: []Step{
			{Name: "cookie consent", Selector: consentButton},
			{Name: "apply button", Selector: ".postings-btn", Unless: "/apply"},
		},
		FormSelector:   ".application-page, #application-form",
		SubmitSelector: "#btn-submit",
	}
}

// Generic is used for hosts no adapter claims.
func Generic() Adapter {
	return Adapter{
		Name:           "generic",
		Readiness:      []Rule{{Selector: "form"}},
		FormSelector:   "form",
		SubmitSelector: `button[type="submit"], input[type="submit"]`,
	}
}

type Registry struct {
	adapters []Adapter
	fallback Adapter
}

func NewRegistry(fallback Adapter, adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters, fallback: fallback}
}

func DefaultRegistry() *Registry {
	return NewRegistry(Generic(), Greenhouse(), Lever())
}

// Register adds adapters ahead of the existing ones.
func (r *Registry) Register(adapters ...Adapter) {
	r.adapters = append(append([]Adapter(nil), adapters...), r.adapters...)
}

// Resolve returns the adapter serving rawURL's host, or the fallback.
func (r *Registry) Resolve(rawURL string) Adapter {
	host := hostOf(rawURL)
	if host == "" {
		return r.fallback
	}
	for _, a := range r.adapters {
		if a.servesHost(host) {
			return a
		}
	}
	return r.fallback
}

// ParseAdapters reads extra adapters from a YAML list.
func ParseAdapters(data []byte) ([]Adapter, error) {
	var adapters []Adapter
	if err := yaml.Unmarshal(data, &adapters); err != nil {
		return nil, fmt.Errorf("parse site adapters: %w", err)
	}
	for i, a := range adapters {
		if a.Name == "" || len(a.Hosts) == 0 {
			return nil, fmt.Errorf("site adapter %d: name and hosts are required", i)
		}
		if a.SubmitSelector == "" {
			return nil, fmt.Errorf("site adapter %q: submit selector is required", a.Name)
		}
	}
	return adapters, nil
}
