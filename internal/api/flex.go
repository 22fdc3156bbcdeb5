package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"example.com/workout/internal/domain"
)

// FlexMinutes normalizes the duration shapes seen in legacy clients: a JSON
// number, a numeric string, a string with a "min" suffix, or null. Anything
// unparseable normalizes to 0 (unknown) rather than failing the request.
type FlexMinutes int

// UnmarshalJSON implements the lenient decoding.
func (m *FlexMinutes) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*m = 0
		return nil
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		*m = clampMinutes(n)
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		*m = clampMinutes(int(f))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*m = 0
		return nil
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "min"))
	if n, err := strconv.Atoi(s); err == nil {
		*m = clampMinutes(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*m = clampMinutes(int(f))
		return nil
	}
	*m = 0
	return nil
}

func clampMinutes(n int) FlexMinutes {
	if n < 0 {
		return 0
	}
	return FlexMinutes(n)
}

// ExerciseInput accepts either a textual set description or structured sets
// for the "sets" field.
type ExerciseInput struct {
	Name string   `json:"name"`
	Sets FlexSets `json:"sets"`
}

// FlexSets holds whichever shape the client sent.
type FlexSets struct {
	Text       string
	Structured []domain.Set
}

// UnmarshalJSON decodes "3x10 @ 25kg" and [{"reps":10,"weight":25}] alike.
func (f *FlexSets) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(data, &f.Structured)
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	f.Text = s
	return nil
}

// toDomain converts normalized inputs into canonical exercises.
func toDomainExercises(inputs []ExerciseInput) []domain.Exercise {
	if len(inputs) == 0 {
		return nil
	}
	out := make([]domain.Exercise, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, domain.Exercise{
			Name:     strings.TrimSpace(in.Name),
			SetsText: in.Sets.Text,
			Sets:     in.Sets.Structured,
		})
	}
	return out
}

// parseFlexibleTime accepts the date formats legacy clients send. An
// unparseable value yields a zero time: the record is stored without a
// temporal anchor and degrades gracefully in the statistics, mirroring how
// the legacy store accumulated such rows.
func parseFlexibleTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
