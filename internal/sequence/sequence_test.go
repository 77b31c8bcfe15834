// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sequence

import (
	"errors"
	"testing"
)

func TestNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0000000", "0000001"},
		{"0000009", "000000A"},
		{"000000Z", "000000a"},
		{"000000z", "0000010"},
		{"00000zz", "0000100"},
		{"0A0zzzz", "0A10000"},
		{"zzzzzzz", "0000000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Next(tt.in)
			if err != nil {
				t.Fatalf("Next(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Next(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNextIsStrictlyIncreasing(t *testing.T) {
	code := Initial
	seen := map[string]bool{code: true}
	for i := 0; i < 10000; i++ {
		next, err := Next(code)
		if err != nil {
			t.Fatalf("Next(%q): %v", code, err)
		}
		if next <= code {
			t.Fatalf("Next(%q) = %q is not greater", code, next)
		}
		if seen[next] {
			t.Fatalf("code %q issued twice", next)
		}
		seen[next] = true
		code = next
	}
}

func TestNextRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "000000", "00000000", "000-000", "000 000"} {
		if _, err := Next(in); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("Next(%q) err = %v, want ErrInvalidCode", in, err)
		}
	}
}

func TestInitial(t *testing.T) {
	if Initial != "0000000" {
		t.Errorf("Initial = %q", Initial)
	}
}
