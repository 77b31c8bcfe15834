// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Post is a hosted post as tracked by the platform implementations.
type Post struct {
	ID       string
	Title    string
	Approved bool
	Removed  bool
	Comments []Comment
}

// Comment is a hosted comment.
type Comment struct {
	ID       string
	Text     string
	Approved bool
}

// Memory is an in-process platform for development and tests. Calls can be
// made to fail with FailOn.
type Memory struct {
	mu       sync.Mutex
	users    map[string]*User
	posts    map[string]*Post
	comments map[string]string // comment id -> post id
	failures map[string]error
}

// NewMemory returns an empty in-memory platform.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]*User),
		posts:    make(map[string]*Post),
		comments: make(map[string]string),
		failures: make(map[string]error),
	}
}

// AddUser registers an account.
func (m *Memory) AddUser(id, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &User{ID: id, Username: username}
}

// RemoveUser deletes an account, as if the user left the host.
func (m *Memory) RemoveUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// FailOn makes the named call ("create_post", "remove_post", ...) return
// err until cleared with a nil err.
func (m *Memory) FailOn(call string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, call)
		return
	}
	m.failures[call] = err
}

// Post returns a copy of the post with id, or nil.
func (m *Memory) Post(id string) *Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil
	}
	cp := *p
	cp.Comments = append([]Comment(nil), p.Comments...)
	return &cp
}

// Posts returns the number of posts ever created.
func (m *Memory) Posts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

func (m *Memory) fail(call string) error {
	if err, ok := m.failures[call]; ok {
		return fmt.Errorf("%s: %w", call, err)
	}
	return nil
}

func (m *Memory) User(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("user"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("exists"); err != nil {
		return false, err
	}
	_, ok := m.users[id]
	return ok, nil
}

func (m *Memory) CreatePost(_ context.Context, title string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("create_post"); err != nil {
		return "", err
	}
	id := "t3_" + uuid.NewString()
	m.posts[id] = &Post{ID: id, Title: title}
	return id, nil
}

func (m *Memory) ApprovePost(_ context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("approve_post"); err != nil {
		return err
	}
	p, ok := m.posts[postID]
	if !ok {
		return fmt.Errorf("approve post %s: not found", postID)
	}
	p.Approved = true
	return nil
}

func (m *Memory) RemovePost(_ context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("remove_post"); err != nil {
		return err
	}
	p, ok := m.posts[postID]
	if !ok {
		return fmt.Errorf("remove post %s: not found", postID)
	}
	p.Removed = true
	return nil
}

func (m *Memory) AddComment(_ context.Context, postID, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("add_comment"); err != nil {
		return "", err
	}
	p, ok := m.posts[postID]
	if !ok {
		return "", fmt.Errorf("add comment to %s: post not found", postID)
	}
	id := "t1_" + uuid.NewString()
	p.Comments = append(p.Comments, Comment{ID: id, Text: text})
	m.comments[id] = postID
	return id, nil
}

func (m *Memory) ApproveComment(_ context.Context, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("approve_comment"); err != nil {
		return err
	}
	postID, ok := m.comments[commentID]
	if !ok {
		return fmt.Errorf("approve comment %s: not found", commentID)
	}
	p := m.posts[postID]
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments[i].Approved = true
		}
	}
	return nil
}
