package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/justsurfingit/brand-theme-generator/internal/theme"
)

// ErrNoJSONObject means the model output contains no parseable {...} block.
var ErrNoJSONObject = errors.New("no JSON object in model output")

// ParseError is a model response that did not match the expected shape.
type ParseError struct {
	Stage  string
	Reason error
	// Excerpt is the start of the offending output, for logs.
	Excerpt string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unusable model output: %v", e.Stage, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Reason }

func newParseError(stage, raw string, reason error) *ParseError {
	excerpt := raw
	if len(excerpt) > 200 {
		excerpt = excerpt[:200] + "..."
	}
	return &ParseError{Stage: stage, Reason: reason, Excerpt: excerpt}
}

// ExtractJSONObject returns the first balanced {...} block in text that is valid JSON.
// Models often wrap their answer in prose or markdown fences.
func ExtractJSONObject(text string) (string, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end > 0 {
			if candidate := text[start : end+1]; gjson.Valid(candidate) {
				return candidate, nil
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSONObject
}

// matchingBrace returns the index of the '}' closing the '{' at open, skipping braces
// inside string literals, or -1.
func matchingBrace(s string, open int) int {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ParseTokens reads the token stage's answer. Known keys with scalar values are kept;
// a nested "designTokens" object is unwrapped. The required color keys must be present.
func ParseTokens(text string) (theme.DesignTokens, error) {
	block, err := ExtractJSONObject(text)
	if err != nil {
		return nil, newParseError(stageTokens, text, err)
	}

	root := gjson.Parse(block)
	if nested := root.Get("designTokens"); nested.IsObject() {
		root = nested
	}

	known := make(map[string]bool, len(theme.Keys))
	for _, k := range theme.Keys {
		known[k] = true
	}

	tokens := make(theme.DesignTokens)
	root.ForEach(func(key, value gjson.Result) bool {
		if !known[key.String()] {
			return true
		}
		switch value.Type {
		case gjson.String:
			tokens[key.String()] = strings.TrimSpace(value.String())
		case gjson.Number:
			tokens[key.String()] = value.Raw
		}
		return true
	})

	if missing := tokens.Missing(); len(missing) > 0 {
		return nil, newParseError(stageTokens, text, fmt.Errorf("missing tokens %s", strings.Join(missing, ", ")))
	}
	return tokens, nil
}

// GeneratedTemplate is the stylesheet stage's answer.
type GeneratedTemplate struct {
	Name    string `json:"name" validate:"required"`
	CSS     string `json:"css" validate:"required"`
	FontURL string `json:"fontUrl"`
	Layout  string `json:"layout"`
}

var templateValidator = validator.New()

// ParseTemplate reads the stylesheet stage's answer.
func ParseTemplate(text string) (GeneratedTemplate, error) {
	var out GeneratedTemplate
	block, err := ExtractJSONObject(text)
	if err != nil {
		return out, newParseError(stageTemplate, text, err)
	}
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return out, newParseError(stageTemplate, text, err)
	}
	out.Name = strings.TrimSpace(out.Name)
	out.CSS = strings.TrimSpace(out.CSS)
	out.FontURL = strings.TrimSpace(out.FontURL)
	if err := templateValidator.Struct(out); err != nil {
		return out, newParseError(stageTemplate, text, err)
	}
	return out, nil
}
