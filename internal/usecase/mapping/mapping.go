// Package mapping asks the semantic-mapping oracle which profile value goes
// into which discovered control.
package mapping

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/AnthonySaldana/nujob/internal/application/port/output"
	"github.com/AnthonySaldana/nujob/internal/domain/apperr"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/usecase/llmjson"
)

type Result struct {
	Mappings []entity.FieldMapping
	// Degraded is set when the oracle was unreachable and Mappings is the
	// pass-through of the discovered fields.
	Degraded bool
}

type Client struct {
	oracle output.MappingOracle
	logger output.LoggerPort
}

func NewClient(oracle output.MappingOracle, logger output.LoggerPort) *Client {
	return &Client{oracle: oracle, logger: logger}
}

// RequestMapping sends one request for the whole form. Transport failures
// degrade to a pass-through result; an unusable reply is returned as an
// error of kind ErrOracle, ErrMappingParse or ErrMappingSchema.
func (c *Client) RequestMapping(ctx context.Context, fields []entity.DiscoveredField, snapshot *string, profile *entity.ApplicantProfile) (*Result, error) {
	req := &entity.MappingRequest{Fields: fields, Profile: profile}
	if snapshot != nil {
		req.FormSnapshot = *snapshot
	}

	start := time.Now()
	reply, err := c.oracle.MapFields(ctx, req)
	if err != nil {
		c.logger.Warn("Mapping oracle unreachable, passing fields through", "error", err, "fields", len(fields))
		return &Result{Mappings: Passthrough(fields), Degraded: true}, nil
	}

	mappings, err := Parse(reply, fields)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Mapping received",
		"fields", len(fields),
		"mappings", len(mappings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Mappings: mappings}, nil
}

type reply struct {
	FormFields json.RawMessage `json:"formFields"`
}

type rawMapping struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Parse decodes an oracle reply, with or without a Markdown fence. Mappings
// missing a type inherit it from the discovered field with the same id.
func Parse(s string, fields []entity.DiscoveredField) ([]entity.FieldMapping, error) {
	var r reply
	if err := llmjson.Decode(s, &r); err != nil {
		if errors.Is(err, llmjson.ErrEmpty) {
			return nil, apperr.New(apperr.ErrOracle, "parse mapping", err)
		}
		return nil, apperr.New(apperr.ErrMappingParse, "parse mapping", err)
	}
	raws, err := formFields(r.FormFields)
	if err != nil {
		return nil, apperr.New(apperr.ErrMappingSchema, "parse mapping", err)
	}

	types := make(map[string]entity.ControlType, len(fields))
	for _, f := range fields {
		if f.ID != "" {
			if _, ok := types[f.ID]; !ok {
				types[f.ID] = f.Type
			}
		}
	}

	out := make([]entity.FieldMapping, 0, len(raws))
	for i, m := range raws {
		value, err := scalar(m.Value)
		if err != nil {
			return nil, apperr.New(apperr.ErrMappingSchema, "parse mapping", fmt.Errorf("formFields[%d].value: %w", i, err))
		}
		ct := entity.ControlType(strings.TrimSpace(m.Type))
		if ct == "" {
			ct = types[m.ID]
		}
		out = append(out, entity.FieldMapping{TargetID: m.ID, ControlType: ct, Value: value})
	}
	return out, nil
}

// formFields accepts the list form and the object form keyed by index. Object
// entries are returned in key order, numeric where keys are integers.
func formFields(raw json.RawMessage) ([]rawMapping, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New(`"formFields" is missing`)
	}
	switch raw[0] {
	case '[':
		var list []rawMapping
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("formFields: %w", err)
		}
		return list, nil
	case '{':
		var byKey map[string]rawMapping
		if err := json.Unmarshal(raw, &byKey); err != nil {
			return nil, fmt.Errorf("formFields: %w", err)
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeys)
		list := make([]rawMapping, 0, len(keys))
		for _, k := range keys {
			list = append(list, byKey[k])
		}
		return list, nil
	}
	return nil, fmt.Errorf(`"formFields" must be a list or an object, got %s`, raw)
}

// compareKeys orders integer keys numerically and before any other key.
func compareKeys(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// scalar renders a JSON string, number or boolean as text; null is empty.
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("expected a scalar, got %s", raw)
	}
	return string(raw), nil
}

// Passthrough maps every discovered field onto itself with its current value.
func Passthrough(fields []entity.DiscoveredField) []entity.FieldMapping {
	out := make([]entity.FieldMapping, 0, len(fields))
	for _, f := range fields {
		out = append(out, entity.FieldMapping{TargetID: f.ID, ControlType: f.Type, Value: f.Value})
	}
	return out
}
