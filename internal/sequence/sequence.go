// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sequence generates category codes. A code is a fixed-width
// odometer over the alphabet 0-9A-Za-z: the rightmost symbol advances, and
// rolling past the last symbol resets it and carries left. Since the
// alphabet is in ASCII order, later codes compare greater as plain strings.
package sequence

import (
	"errors"
	"fmt"
	"strings"

	"wordcats/internal/models"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ErrInvalidCode is returned for codes of the wrong width or with symbols
// outside the alphabet.
var ErrInvalidCode = errors.New("invalid category code")

// Initial is the sequence value before any category has been created.
var Initial = strings.Repeat(alphabet[:1], models.CodeLength)

// Next returns the code that follows current. Overflow of the leftmost
// position wraps to Initial.
func Next(current string) (string, error) {
	if err := Validate(current); err != nil {
		return "", err
	}
	b := []byte(current)
	for i := len(b) - 1; i >= 0; i-- {
		pos := strings.IndexByte(alphabet, b[i])
		if pos < len(alphabet)-1 {
			b[i] = alphabet[pos+1]
			return string(b), nil
		}
		b[i] = alphabet[0]
	}
	return string(b), nil
}

// Validate checks that code has the fixed width and only alphabet symbols.
func Validate(code string) error {
	if len(code) != models.CodeLength {
		return fmt.Errorf("%w: %q has length %d", ErrInvalidCode, code, len(code))
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(alphabet, code[i]) < 0 {
			return fmt.Errorf("%w: %q has symbol %q", ErrInvalidCode, code, code[i])
		}
	}
	return nil
}
