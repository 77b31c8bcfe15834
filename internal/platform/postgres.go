// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package platform

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Postgres implements Identity and Content on the local accounts, posts and
// comments tables. Deleted accounts keep their row with deleted_at set.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a platform backed by db.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// User returns the live account for id. Returns nil if not found.
func (p *Postgres) User(ctx context.Context, id string) (*User, error) {
	u := &User{}
	err := p.db.QueryRowContext(ctx, `
		SELECT id, username FROM accounts WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&u.ID, &u.Username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account %s: %w", id, err)
	}
	return u, nil
}

func (p *Postgres) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1 AND deleted_at IS NULL)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup account %s: %w", id, err)
	}
	return exists, nil
}

// CreateAccount registers a new account and returns its id.
func (p *Postgres) CreateAccount(ctx context.Context, username string) (*User, error) {
	u := &User{ID: "t2_" + uuid.NewString(), Username: username}
	if _, err := p.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username) VALUES ($1, $2)
	`, u.ID, u.Username); err != nil {
		return nil, fmt.Errorf("create account %s: %w", username, err)
	}
	return u, nil
}

// DeleteAccount marks an account as gone. The janitor anonymizes its game
// records on the next pass.
func (p *Postgres) DeleteAccount(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, `
		UPDATE accounts SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL
	`, id); err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	return nil
}

func (p *Postgres) CreatePost(ctx context.Context, title string) (string, error) {
	id := "t3_" + uuid.NewString()
	if _, err := p.db.ExecContext(ctx, `
		INSERT INTO posts (id, title) VALUES ($1, $2)
	`, id, title); err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return id, nil
}

func (p *Postgres) ApprovePost(ctx context.Context, postID string) error {
	return p.update(ctx, "approve post", `UPDATE posts SET approved = true WHERE id = $1`, postID)
}

func (p *Postgres) RemovePost(ctx context.Context, postID string) error {
	return p.update(ctx, "remove post", `UPDATE posts SET removed = true WHERE id = $1`, postID)
}

func (p *Postgres) AddComment(ctx context.Context, postID, text string) (string, error) {
	id := "t1_" + uuid.NewString()
	if _, err := p.db.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, body) VALUES ($1, $2, $3)
	`, id, postID, text); err != nil {
		return "", fmt.Errorf("add comment to %s: %w", postID, err)
	}
	return id, nil
}

func (p *Postgres) ApproveComment(ctx context.Context, commentID string) error {
	return p.update(ctx, "approve comment", `UPDATE comments SET approved = true WHERE id = $1`, commentID)
}

// update runs a single-row update and fails if no row matched.
func (p *Postgres) update(ctx context.Context, op, query, id string) error {
	res, err := p.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: not found", op, id)
	}
	return nil
}

// PostState reports whether a post is approved and removed. Used by the
// development console and tests.
func (p *Postgres) PostState(ctx context.Context, postID string) (approved, removed bool, err error) {
	err = p.db.QueryRowContext(ctx, `
		SELECT approved, removed FROM posts WHERE id = $1
	`, postID).Scan(&approved, &removed)
	if err != nil {
		return false, false, fmt.Errorf("post state %s: %w", postID, err)
	}
	return approved, removed, nil
}
