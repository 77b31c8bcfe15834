// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package platform defines the host platform services the game consumes:
// account identity and hosted posts/comments. The Postgres type implements
// both against a local database so the game can run outside the host.
package platform

import (
	"context"
	"errors"
)

// ErrUnknownUser is returned when an account id does not resolve.
var ErrUnknownUser = errors.New("unknown user")

// User is an account on the host platform.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Identity resolves host accounts and checks that they exist.
type Identity interface {
	// User returns the account for id, or nil if it does not exist.
	User(ctx context.Context, id string) (*User, error)

	// Exists reports whether the account still exists on the host.
	Exists(ctx context.Context, id string) (bool, error)
}

// Content creates and moderates hosted posts and comments.
type Content interface {
	CreatePost(ctx context.Context, title string) (string, error)
	ApprovePost(ctx context.Context, postID string) error
	RemovePost(ctx context.Context, postID string) error
	AddComment(ctx context.Context, postID, text string) (string, error)
	ApproveComment(ctx context.Context, commentID string) error
}
