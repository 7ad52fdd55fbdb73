// Package intake turns a raw request body into an ApplicationRecord. It owns
// the wire key names; the scoring engine never sees them.
package intake

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Qualify/internal/scoring"
)

// Notice flags a value above the form maximum. The value itself is scored as
// submitted.
type Notice struct {
	Field string `json:"field"`
	Value int    `json:"value"`
	Max   int    `json:"max"`
}

// Collect builds a record from a raw body. It never fails: missing, blank or
// unparsable numbers count as zero, and negative numbers are floored at zero.
func Collect(raw map[string]any) (scoring.ApplicationRecord, []Notice) {
	var rec scoring.ApplicationRecord
	var notices []Notice

	rec.FirstName = Text(raw[KeyFirstName])
	rec.LastName = Text(raw[KeyLastName])
	rec.University = Text(raw[KeyUniversity])
	rec.Department = Text(raw[KeyDepartment])
	rec.SpecializationField = Text(raw[KeySpecializationField])
	rec.Email = Text(raw[KeyEmail])
	rec.Specialization = Text(raw[KeySpecialization])

	count := func(key string) int {
		n := Int(raw[key])
		if limit, ok := maxValues[key]; ok && n > limit {
			notices = append(notices, Notice{Field: key, Value: n, Max: limit})
		}
		return n
	}

	rec.TeachingYears = count(KeyTeachingYears)
	for _, a := range scoring.Activities() {
		rec.SetCount(a, count(a.Key()))
	}
	for _, tier := range scoring.Tiers() {
		keys := PublicationKeys(tier)
		rec.SetPublication(tier, scoring.Authorship{
			First:     count(keys[0]),
			Second:    count(keys[1]),
			ThirdPlus: count(keys[2]),
		})
	}

	return rec, notices
}

// CheckStrict rejects populated strict fields that carry no integer.
func CheckStrict(raw map[string]any) error {
	for _, key := range strictKeys {
		v, ok := raw[key]
		if !ok || !populated(v) {
			continue
		}
		if _, ok := parseLeadingInt(v); !ok {
			return &scoring.ValidationError{Code: scoring.CodeInvalidNumericField, Field: key}
		}
	}
	return nil
}

// Text returns a trimmed string form of a scalar value.
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// Int coerces a value to a non-negative count using its integer prefix.
func Int(v any) int {
	n, ok := parseLeadingInt(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// populated reports whether a value counts as filled in: a non-empty string or
// a non-zero number.
func populated(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case int:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}

const maxCount = math.MaxInt32

// parseLeadingInt reads an integer the way form fields are read: leading
// whitespace, an optional sign, then as many digits as follow. Numbers are
// truncated toward zero.
func parseLeadingInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return clampCount(math.Trunc(t)), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return parseLeadingInt(f)
		}
		return parseLeadingInt(string(t))
	case string:
		s := strings.TrimLeft(t, " \t\n\r\v\f")
		neg := false
		if s != "" && (s[0] == '+' || s[0] == '-') {
			neg = s[0] == '-'
			s = s[1:]
		}
		end := 0
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if end == 0 {
			return 0, false
		}
		n, err := strconv.ParseInt(s[:end], 10, 64)
		if err != nil || n > maxCount {
			n = maxCount
		}
		if neg {
			n = -n
		}
		return int(n), true
	default:
		return 0, false
	}
}

func clampCount(f float64) int {
	switch {
	case f > maxCount:
		return maxCount
	case f < -maxCount:
		return -maxCount
	default:
		return int(f)
	}
}
