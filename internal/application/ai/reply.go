package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/recipebox/recipebox/internal/domain/recipe"
	"github.com/recipebox/recipebox/pkg/errors"
)

var codeFence = regexp.MustCompile("```(?:json)?\n?")

// modelReply is the loose shape the model is asked to produce.
type modelReply struct {
	Title       flexText    `json:"title"`
	Category    flexText    `json:"category"`
	Cuisine     flexText    `json:"cuisine"`
	Servings    flexText    `json:"servings"`
	PrepTime    flexMinutes `json:"prep_time_minutes"`
	CookTime    flexMinutes `json:"cook_time_minutes"`
	Ingredients flexText    `json:"ingredients"`
	Steps       flexText    `json:"steps"`
	SourceURL   flexText    `json:"source_url"`
	Notes       flexText    `json:"notes"`
	Error       flexText    `json:"error"`
}

// StripCodeFences removes markdown fences the model wraps around JSON.
func StripCodeFences(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// DecodeReply parses a raw model reply into a record. It fails with a schema
// error when the reply is not a JSON object carrying a title, and with a
// no-recipe error when the model reports that the content holds no recipe.
func DecodeReply(text string) (*recipe.Record, error) {
	cleaned := StripCodeFences(text)

	var reply modelReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return nil, errors.NewSchemaError(fmt.Errorf("decode model reply: %w", err))
	}

	title := strings.TrimSpace(string(reply.Title))
	if title == "" {
		if reason := strings.TrimSpace(string(reply.Error)); reason != "" {
			return nil, errors.NewNoRecipeError(reason)
		}
		return nil, errors.NewSchemaError(fmt.Errorf("model reply has no title"))
	}

	record := &recipe.Record{
		Title:           title,
		Category:        recipe.ParseCategory(string(reply.Category)),
		Cuisine:         reply.Cuisine.optional(),
		Servings:        reply.Servings.optional(),
		PrepTimeMinutes: reply.PrepTime.value,
		CookTimeMinutes: reply.CookTime.value,
		Ingredients:     strings.TrimSpace(string(reply.Ingredients)),
		Steps:           strings.TrimSpace(string(reply.Steps)),
		SourceURL:       reply.SourceURL.optional(),
		Notes:           strings.TrimSpace(string(reply.Notes)),
	}
	record.ComputeTotalTime()

	return record, nil
}

// flexText accepts a string, a number, a list of strings (joined by
// newlines) or null.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = flexText(s)
	case '[':
		var items []flexText
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			if s := strings.TrimSpace(string(item)); s != "" {
				lines = append(lines, s)
			}
		}
		*t = flexText(strings.Join(lines, "\n"))
	case '{':
		return fmt.Errorf("expected text, got object")
	default:
		// numbers and booleans keep their literal form
		*t = flexText(data)
	}
	return nil
}

// optional maps blank and placeholder values to nil.
func (t flexText) optional() *string {
	s := strings.TrimSpace(string(t))
	switch strings.ToLower(s) {
	case "", "null", "undefined", "n/a", "none":
		return nil
	}
	return &s
}

// flexMinutes accepts a number, a numeric string or null. Anything else,
// including negative or implausibly large values, is treated as absent.
type flexMinutes struct {
	value *int
}

func (m *flexMinutes) UnmarshalJSON(data []byte) error {
	m.value = nil

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > recipe.MaxDurationMinutes {
		return nil
	}
	minutes := int(math.Round(f))
	m.value = &minutes
	return nil
}
