// Package normalize coerces loosely shaped model output into the strings and
// records the listing types expect.
package normalize

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"

	"detailgen/internal/domain"
)

// ErrEmptyPayload is returned when no JSON fragment could be found.
var ErrEmptyPayload = errors.New("normalize: empty payload")

// DefaultRating is used for reviews that carry no numeric rating.
const DefaultRating = 5

// Keys consulted, in order, when an object has to become a single string.
var (
	DetailKeys = []string{"text", "name", "productName", "title", "value", "content"}
	TextKeys   = []string{"productName", "name", "text", "value"}
)

// ExtractJSON trims model output down to its JSON payload: markdown fences
// are stripped, then the text between the first opening and last closing
// bracket is kept.
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = TrimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// TrimCodeFence removes a surrounding ```json or ``` fence.
func TrimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// Decode extracts the JSON fragment in raw and unmarshals it into T.
func Decode[T any](raw string) (T, error) {
	var zero T
	cleaned := ExtractJSON(raw)
	if cleaned == "" {
		return zero, ErrEmptyPayload
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

// Object decodes raw into a generic JSON object.
func Object(raw string) (map[string]any, error) {
	obj, err := Decode[map[string]any](raw)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrEmptyPayload
	}
	return obj, nil
}

// ToString reduces any decoded JSON value to display text. Objects yield the
// first string found under keys, then "question: answer" when both are
// present, then their compact JSON encoding.
func ToString(v any, keys []string) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
		return strconv.FormatBool(val)
	case float64:
		if val == 0 {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case map[string]any:
		for _, key := range keys {
			if s, ok := val[key].(string); ok {
				return s
			}
		}
		q, qok := val["question"].(string)
		a, aok := val["answer"].(string)
		if qok && aok {
			return q + ": " + a
		}
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Strings maps a JSON array through ToString. Anything that is not an array
// yields nil.
func Strings(v any, keys []string) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, ToString(item, keys))
	}
	return out
}

// FirstString returns the first non-empty string stored under keys.
func FirstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Specs coerces specification lists. Strings pass through, name/value
// objects become "name: value", and a plain object becomes one line per key
// in key order.
func Specs(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if line := specLine(item); line != "" {
				out = append(out, line)
			}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			if text := ToString(val[k], DetailKeys); text != "" {
				out = append(out, k+": "+text)
			}
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}

func specLine(item any) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return strings.TrimSpace(ToString(item, TextKeys))
	}
	name := FirstString(obj, "name", "key", "label", "title")
	value := ToString(FirstValue(obj, "value", "detail", "text"), DetailKeys)
	switch {
	case name != "" && value != "":
		return name + ": " + value
	case value != "":
		return value
	default:
		return ToString(obj, TextKeys)
	}
}

// FirstValue returns the first value under keys that is not empty, zero,
// false or null.
func FirstValue(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		if Present(obj[key]) {
			return obj[key]
		}
	}
	return nil
}

// Present reports whether v carries a non-empty value.
func Present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	default:
		return true
	}
}

// Reviews coerces an array of strings or review-like objects.
func Reviews(v any) []domain.Review {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Review, 0, len(items))
	for _, item := range items {
		switch val := item.(type) {
		case string:
			out = append(out, domain.Review{Text: val, Rating: DefaultRating})
		case map[string]any:
			rating := float64(DefaultRating)
			if r, ok := val["rating"].(float64); ok {
				rating = r
			}
			text := FirstValue(val, "text", "content", "review")
			if text == nil {
				text = val
			}
			out = append(out, domain.Review{Text: ToString(text, DetailKeys), Rating: rating})
		default:
			out = append(out, domain.Review{Text: ToString(val, DetailKeys), Rating: DefaultRating})
		}
	}
	return out
}

// FAQ coerces an array of strings or question/answer objects.
func FAQ(v any) []domain.FAQ {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.FAQ, 0, len(items))
	for _, item := range items {
		switch val := item.(type) {
		case string:
			out = append(out, domain.FAQ{Question: val})
		case map[string]any:
			out = append(out, domain.FAQ{
				Question: ToString(FirstValue(val, "question", "q"), DetailKeys),
				Answer:   ToString(FirstValue(val, "answer", "a"), DetailKeys),
			})
		default:
			out = append(out, domain.FAQ{Question: ToString(val, DetailKeys)})
		}
	}
	return out
}
