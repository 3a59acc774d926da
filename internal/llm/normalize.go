package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New()

const previewLen = 200

// Normalize parses raw model text into T and validates its range tags. On a
// JSON syntax error it makes one repair pass (strip code fences, slice to
// the outermost braces) and parses once more. A validation failure is never
// repaired: one out-of-range field rejects the whole output.
func Normalize[T any](log zerolog.Logger, raw string) (*T, error) {
	out, err := parseAndValidate[T](raw)
	if err == nil {
		return out, nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		if repaired, ok := repairJSON(raw); ok {
			out, repairErr := parseAndValidate[T](repaired)
			if repairErr == nil {
				log.Info().Msg("recovered structured output on repair pass")
				return out, nil
			}
			err = repairErr
		}
	}

	log.Error().
		Err(err).
		Str("preview", preview(raw)).
		Msg("structured output rejected")
	return nil, fmt.Errorf("normalize output: %w", err)
}

func parseAndValidate[T any](text string) (*T, error) {
	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, err
	}
	if err := validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	return &out, nil
}

// repairJSON strips markdown fences and slices the text down to the span
// between the first opening and last closing brace.
func repairJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func preview(raw string) string {
	if len(raw) > previewLen {
		return raw[:previewLen] + "..."
	}
	return raw
}
