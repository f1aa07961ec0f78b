package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"potluck/internal/models"
)

const (
	maxTitleLen    = 255
	maxLocationLen = 255
	maxSharedToLen = 255
)

// requireText trims v and records an error when it is empty or longer than max
// runes. A max of zero means unbounded.
func requireText(fe models.FieldErrors, field, v string, max int) string {
	v = strings.TrimSpace(v)
	if v == "" {
		fe.Add(field, fmt.Sprintf("The %s field is required.", field))
		return v
	}
	if max > 0 && utf8.RuneCountInString(v) > max {
		fe.Add(field, fmt.Sprintf("The %s may not be greater than %d characters.", field, max))
	}
	return v
}

// optionalText trims v, returning nil for blank values, and records an error
// when the value is longer than max runes.
func optionalText(fe models.FieldErrors, field string, v *string, max int) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	if max > 0 && utf8.RuneCountInString(trimmed) > max {
		fe.Add(field, fmt.Sprintf("The %s may not be greater than %d characters.", field, max))
	}
	return &trimmed
}

func checkCategory(fe models.FieldErrors, v string) models.Category {
	c := models.Category(strings.TrimSpace(v))
	if c == "" {
		fe.Add("category", "The category field is required.")
		return c
	}
	if !c.Valid() {
		fe.Add("category", "The selected category is invalid.")
	}
	return c
}
