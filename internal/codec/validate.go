// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package codec

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for category titles and word lists.
const (
	MaxTitleLen   = 16
	MinWords      = 10
	MaxWords      = 100
	MaxWordLetter = 12
)

var (
	// titlePattern allows letters, digits, hyphen, underscore and space.
	titlePattern = regexp.MustCompile(`^[A-Za-z0-9\-_ ]+$`)
	// wordPattern allows uppercase letters with single internal spaces.
	wordPattern = regexp.MustCompile(`^[A-Z]+( [A-Z]+)*$`)
)

// ValidationError reports why a title or word list was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateTitle checks a category title and returns it trimmed.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Reason: "Title is required."}
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", &ValidationError{Field: "title", Reason: fmt.Sprintf("Title is too long (max %d characters).", MaxTitleLen)}
	}
	if !titlePattern.MatchString(title) {
		return "", &ValidationError{Field: "title", Reason: "Title may only contain letters, numbers, spaces, - and _."}
	}
	return title, nil
}

// NormalizeWords validates a comma-separated word list and returns the
// words upper-cased with internal whitespace collapsed.
func NormalizeWords(csv string) ([]string, error) {
	var words []string
	seen := make(map[string]bool)
	for _, raw := range strings.Split(csv, ",") {
		w := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
		if w == "" {
			continue
		}
		if !wordPattern.MatchString(w) {
			return nil, &ValidationError{Field: "words", Reason: fmt.Sprintf("%q may only contain letters and spaces.", w)}
		}
		if letters := len(w) - strings.Count(w, " "); letters > MaxWordLetter {
			return nil, &ValidationError{Field: "words", Reason: fmt.Sprintf("%q is too long (max %d letters).", w, MaxWordLetter)}
		}
		if seen[w] {
			return nil, &ValidationError{Field: "words", Reason: fmt.Sprintf("%q appears more than once.", w)}
		}
		seen[w] = true
		words = append(words, w)
	}
	if len(words) < MinWords || len(words) > MaxWords {
		return nil, &ValidationError{Field: "words", Reason: fmt.Sprintf("Provide between %d and %d words (got %d).", MinWords, MaxWords, len(words))}
	}
	return words, nil
}

// EncodeWords joins normalized words into the stored CSV payload.
func EncodeWords(words []string) string {
	return strings.Join(words, ",")
}

// DecodeWords splits a stored CSV payload.
func DecodeWords(csv string) []string {
	if csv == "" {
		return nil
	}
	return strings.Split(csv, ",")
}
