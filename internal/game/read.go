// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package game

import (
	"context"

	"wordcats/internal/index"
	"wordcats/internal/models"
)

// CategoryView is a category record together with its words.
type CategoryView struct {
	*models.Category
	Words []string `json:"words"`
}

// Get returns a category and its words. Returns nil if not found. Reads
// are not transactional and may trail an in-flight write.
func (s *Service) Get(ctx context.Context, code string) (*CategoryView, error) {
	rec, err := s.store.Category(ctx, code)
	if err != nil || rec == nil {
		return nil, err
	}
	words, err := s.store.Words(ctx, code)
	if err != nil {
		return nil, err
	}
	return &CategoryView{Category: rec, Words: words}, nil
}

// List returns a page of categories ordered by the named index, highest
// first. Codes removed between the index read and the record read are
// skipped.
func (s *Service) List(ctx context.Context, by index.Name, offset, limit int64) ([]*models.Category, error) {
	entries, err := s.index.Page(ctx, by, offset, limit)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(entries))
	for i, e := range entries {
		codes[i] = e.Code
	}
	return s.store.Categories(ctx, codes)
}

// Stats returns the number of categories in each index.
func (s *Service) Stats(ctx context.Context) (map[index.Name]int64, error) {
	return s.index.Counts(ctx)
}
