package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
)

var codeFenceRE = regexp.MustCompile("```(?:json)?\\n?")

// stripCodeFences removes markdown fence markup models like to wrap JSON in.
func stripCodeFences(text string) string {
	return strings.TrimSpace(codeFenceRE.ReplaceAllString(text, ""))
}

// The ten fields a full extraction must carry. Confidence is reported but
// not required; an absent confidence defaults to zero.
var requiredListingFields = []string{
	"make", "model", "year", "color", "bodyType",
	"price", "mileage", "fuelType", "transmission", "description",
}

var requiredSearchFields = []string{"make", "bodyType", "color"}

func missingFields(m map[string]any, required []string) []string {
	var missing []string
	for _, f := range required {
		if _, ok := m[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// sanitizeReply normalizes a parsed model reply in place before schema
// validation: numeric price/mileage become strings, a string year becomes a
// number, strings are trimmed, and keys outside the reply schema are dropped.
// Returns the touched keys for logging.
func sanitizeReply(m map[string]any, allowed []string) []string {
	var touched []string

	coerceToString := func(k string) {
		switch v := m[k].(type) {
		case float64:
			if v == float64(int64(v)) {
				m[k] = strconv.FormatInt(int64(v), 10)
			} else {
				m[k] = strconv.FormatFloat(v, 'f', 2, 64)
			}
			touched = append(touched, k)
		case string:
			m[k] = strings.TrimSpace(v)
		}
	}
	coerceToString("price")
	coerceToString("mileage")

	if v, ok := m["year"].(string); ok {
		if y, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			m["year"] = y
			touched = append(touched, "year")
		}
	}
	if v, ok := m["confidence"].(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			m["confidence"] = f
			touched = append(touched, "confidence")
		}
	}

	for _, k := range []string{"make", "model", "color", "bodyType", "fuelType", "transmission", "description"} {
		if v, ok := m[k].(string); ok {
			m[k] = strings.TrimSpace(v)
		}
	}

	allowedSet := make(map[string]struct{}, len(allowed)+1)
	for _, k := range allowed {
		allowedSet[k] = struct{}{}
	}
	allowedSet["confidence"] = struct{}{}
	for k := range m {
		if _, ok := allowedSet[k]; !ok {
			delete(m, k)
			touched = append(touched, k+"(dropped)")
		}
	}

	return touched
}

func enumProp(values []string) map[string]any {
	return map[string]any{"type": "string", "enum": values}
}

// buildListingReplySchema is the strict contract a full extraction must
// satisfy after sanitizing: closed enums, numeric-string price and mileage,
// a plausible 4-digit year.
func buildListingReplySchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             requiredListingFields,
		"properties": map[string]any{
			"make":         map[string]any{"type": "string", "minLength": 1},
			"model":        map[string]any{"type": "string", "minLength": 1},
			"year":         map[string]any{"type": "integer", "minimum": 1886, "maximum": 2100},
			"color":        map[string]any{"type": "string", "minLength": 1},
			"price":        map[string]any{"type": "string", "pattern": `^\d+(\.\d+)?$`},
			"mileage":      map[string]any{"type": "string", "pattern": `^\d+$`},
			"bodyType":     enumProp(domain.BodyTypes),
			"fuelType":     enumProp(domain.FuelTypes),
			"transmission": enumProp(domain.Transmissions),
			"description":  map[string]any{"type": "string", "minLength": 1},
			"confidence":   map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
	}
}

// buildSearchReplySchema is deliberately loose: the search hint is best
// effort and an off-list body type is still a usable form pre-fill.
func buildSearchReplySchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             requiredSearchFields,
		"properties": map[string]any{
			"make":       map[string]any{"type": "string"},
			"bodyType":   map[string]any{"type": "string"},
			"color":      map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
	}
}

func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("reply.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("reply.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal reply: %w", err)
	}
	return schema.Validate(v)
}
