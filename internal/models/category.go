// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the typed records persisted in Valkey. The flat
// string encodings live in the codec package and never leave the storage
// boundary; everything above the store works with these structs.
package models

import "time"

const (
	// CodeLength is the fixed width of a category code.
	CodeLength = 7

	// DeletedUsername replaces the display name of an account that no
	// longer exists on the host platform.
	DeletedUsername = "[deleted]"

	// DeletedUserID replaces the user id of an account that no longer
	// exists on the host platform.
	DeletedUserID = "deleted"
)

// Category is a themed word list created by a player. The words payload is
// stored separately under the same code to keep the record compact.
type Category struct {
	Code              string `json:"code"`
	CreatorUsername   string `json:"creator_username"`
	Title             string `json:"title"`
	PlayCount         int64  `json:"play_count"`
	HighScore         int64  `json:"high_score"`
	HighScoreUsername string `json:"high_score_username"`
	HighScoreUserID   string `json:"high_score_user_id"`
	PostID            string `json:"post_id"`
	CreatedAtSeconds  int64  `json:"created_at"`
}

// CreatedAt returns the creation timestamp as a time.Time.
func (c *Category) CreatedAt() time.Time {
	return time.Unix(c.CreatedAtSeconds, 0).UTC()
}

// HasHighScore reports whether anyone has set a score on the category yet.
func (c *Category) HasHighScore() bool {
	return c.HighScore > 0
}

// AnonymizeCreator replaces the creator with the deleted-account placeholder.
func (c *Category) AnonymizeCreator() {
	c.CreatorUsername = DeletedUsername
}

// AnonymizeHolder replaces the high-score holder with the deleted-account
// placeholder. The numeric score is kept.
func (c *Category) AnonymizeHolder() {
	c.HighScoreUsername = DeletedUsername
	c.HighScoreUserID = DeletedUserID
}

// PostLink maps a hosted post back to the category it presents.
type PostLink struct {
	PostID        string `json:"post_id"`
	Code          string `json:"code"`
	CreatorUserID string `json:"creator_user_id"`
}
