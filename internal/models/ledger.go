// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "slices"

// Ledger is the per-user record of categories created and categories where
// the user currently holds the high score. Both lists hold each code at most
// once and keep insertion order.
type Ledger struct {
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	Created    []string `json:"created"`
	HighScores []string `json:"high_scores"`
}

// NewLedger returns an empty ledger for the given user.
func NewLedger(userID, username string) *Ledger {
	return &Ledger{UserID: userID, Username: username}
}

// Empty reports whether both lists are empty.
func (l *Ledger) Empty() bool {
	return len(l.Created) == 0 && len(l.HighScores) == 0
}

// HasCreated reports whether the user created the given code.
func (l *Ledger) HasCreated(code string) bool {
	return slices.Contains(l.Created, code)
}

// HoldsHighScore reports whether the user holds the high score on code.
func (l *Ledger) HoldsHighScore(code string) bool {
	return slices.Contains(l.HighScores, code)
}

// AddCreated appends code to the created list unless already present.
// It reports whether the list changed.
func (l *Ledger) AddCreated(code string) bool {
	return addUnique(&l.Created, code)
}

// RemoveCreated drops code from the created list.
func (l *Ledger) RemoveCreated(code string) bool {
	return removeAll(&l.Created, code)
}

// AddHighScore appends code to the high-score list unless already present.
func (l *Ledger) AddHighScore(code string) bool {
	return addUnique(&l.HighScores, code)
}

// RemoveHighScore drops code from the high-score list.
func (l *Ledger) RemoveHighScore(code string) bool {
	return removeAll(&l.HighScores, code)
}

func addUnique(list *[]string, code string) bool {
	if slices.Contains(*list, code) {
		return false
	}
	*list = append(*list, code)
	return true
}

func removeAll(list *[]string, code string) bool {
	before := len(*list)
	*list = slices.DeleteFunc(*list, func(c string) bool { return c == code })
	return len(*list) != before
}
