package schema

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"unicode"
	"unicode/utf8"
)

// Violation rule identifiers. These are stable and appear verbatim in
// client-facing error details.
const (
	RuleRequired     = "required"
	RuleType         = "invalid_type"
	RuleMinLength    = "min_length"
	RuleMaxLength    = "max_length"
	RuleEmail        = "invalid_email"
	RuleAlphanumeric = "not_alphanumeric"
)

// Violation describes one way a submitted body failed a shape's rules.
type Violation struct {
	Field   string
	Rule    string
	Message string
	Params  map[string]any
}

// Values holds the successfully bound field values, keyed by field name.
// Only fields declared in the shape ever appear here; server-only and
// unknown fields submitted by a client are never bound.
type Values map[string]string

// Has reports whether the client submitted the named field.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Get returns a pointer to the submitted value, or nil when omitted.
// The pointer form feeds partial updates directly.
func (v Values) Get(name string) *string {
	if s, ok := v[name]; ok {
		return &s
	}
	return nil
}

// Bind validates a decoded JSON body against the shape and extracts the
// declared fields. Every rule violation is collected, not just the first,
// so a client sees all problems in one round trip. The transform is pure:
// the same shape and body always produce the same result.
func (s Shape) Bind(body map[string]json.RawMessage) (Values, []Violation) {
	values := make(Values, len(s.Fields))
	var violations []Violation

	for _, f := range s.Fields {
		raw, ok := body[f.Name]
		if !ok {
			if f.Required {
				violations = append(violations, Violation{
					Field:   f.Name,
					Rule:    RuleRequired,
					Message: fmt.Sprintf("%s is required", f.Name),
				})
			}
			continue
		}

		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			violations = append(violations, Violation{
				Field:   f.Name,
				Rule:    RuleType,
				Message: fmt.Sprintf("%s must be a %s", f.Name, f.Type),
				Params:  map[string]any{"type": string(f.Type)},
			})
			continue
		}

		if vs := checkRules(f, value); len(vs) > 0 {
			violations = append(violations, vs...)
			continue
		}

		values[f.Name] = value
	}

	return values, violations
}

func checkRules(f InputField, value string) []Violation {
	var violations []Violation
	length := utf8.RuneCountInString(value)

	if f.Rules.MinLen > 0 && length < f.Rules.MinLen {
		violations = append(violations, Violation{
			Field:   f.Name,
			Rule:    RuleMinLength,
			Message: fmt.Sprintf("%s must be at least %d characters", f.Name, f.Rules.MinLen),
			Params:  map[string]any{"min": f.Rules.MinLen, "actual": length},
		})
	}
	if f.Rules.MaxLen > 0 && length > f.Rules.MaxLen {
		violations = append(violations, Violation{
			Field:   f.Name,
			Rule:    RuleMaxLength,
			Message: fmt.Sprintf("%s must be at most %d characters", f.Name, f.Rules.MaxLen),
			Params:  map[string]any{"max": f.Rules.MaxLen, "actual": length},
		})
	}
	if f.Rules.Email && !validEmail(value) {
		violations = append(violations, Violation{
			Field:   f.Name,
			Rule:    RuleEmail,
			Message: fmt.Sprintf("%s must be a valid email address", f.Name),
		})
	}
	if f.Rules.Alphanumeric && !alphanumeric(value) {
		violations = append(violations, Violation{
			Field:   f.Name,
			Rule:    RuleAlphanumeric,
			Message: fmt.Sprintf("%s must contain only letters and digits", f.Name),
		})
	}

	return violations
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	// Reject display-name forms like "Alice <alice@example.com>".
	return err == nil && addr.Address == value
}

func alphanumeric(value string) bool {
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
