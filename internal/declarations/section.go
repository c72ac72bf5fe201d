package declarations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"dmadmin/pkg/types"
)

// GetData extracts the answers to this section's questions from a submitted
// form. Fields belonging to other sections are ignored. Every question of the
// section is present in the result; unanswered ones are nil.
func (s *Section) GetData(form url.Values) types.Declaration {
	data := make(types.Declaration, len(s.Questions))
	for _, q := range s.Questions {
		data[q.ID] = q.value(form[q.ID])
	}
	return data
}

func (q *Question) value(raw []string) any {
	switch q.Type {
	case QuestionBoolean:
		switch firstValue(raw) {
		case "true":
			return true
		case "false":
			return false
		}
		return nil
	case QuestionNumber:
		v := firstValue(raw)
		if v == "" {
			return nil
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
		return v
	case QuestionCheckboxes, QuestionList:
		values := make([]any, 0, len(raw))
		for _, v := range raw {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil
		}
		return values
	default:
		if v := firstValue(raw); v != "" {
			return v
		}
		return nil
	}
}

func firstValue(raw []string) string {
	if len(raw) == 0 {
		return ""
	}
	return strings.TrimSpace(raw[0])
}

// HasChangesToSave reports whether any posted answer differs from the stored
// declaration. Absent answers compare equal to nil.
func (s *Section) HasChangesToSave(current, posted types.Declaration) bool {
	for key, value := range posted {
		if !sameValue(current[key], value) {
			return true
		}
	}
	return false
}

// sameValue compares answers by their JSON encoding, so decoded API values
// and freshly extracted form values compare alike.
func sameValue(a, b any) bool {
	aj, aerr := json.Marshal(a)
	bj, berr := json.Marshal(b)
	if aerr != nil || berr != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}

// ApplySection merges the section's posted answers into a copy of current.
// The second result is false when nothing changed, in which case current is
// returned untouched.
func ApplySection(current types.Declaration, section *Section, form url.Values) (types.Declaration, bool) {
	posted := section.GetData(form)
	if !section.HasChangesToSave(current, posted) {
		return current, false
	}

	updated := current.Clone()
	for key, value := range posted {
		updated[key] = value
	}

	return updated, true
}

// Display renders a stored answer for the declaration summary page.
func (q *Question) Display(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, q.optionLabel(fmt.Sprint(item)))
		}
		return strings.Join(parts, ", ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return q.optionLabel(v)
	default:
		return fmt.Sprint(v)
	}
}

func (q *Question) optionLabel(value string) string {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// Selected reports whether an option value is part of a stored answer.
func Selected(answer any, value string) bool {
	switch v := answer.(type) {
	case string:
		return v == value
	case bool:
		return strconv.FormatBool(v) == value
	case []any:
		for _, item := range v {
			if fmt.Sprint(item) == value {
				return true
			}
		}
	}
	return false
}
