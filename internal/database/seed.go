// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// devAccounts are created by Seed in development.
var devAccounts = []struct{ id, username string }{
	{"t2_dev_alice", "alice"},
	{"t2_dev_bob", "bob"},
	{"t2_dev_carol", "carol"},
}

// Seed populates an empty accounts table with development players so the
// API can be exercised with X-User-ID right after startup.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return fmt.Errorf("seed check accounts: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	for _, a := range devAccounts {
		if _, err := db.Exec(`INSERT INTO accounts (id, username) VALUES ($1, $2)`, a.id, a.username); err != nil {
			return fmt.Errorf("seed insert account %s: %w", a.username, err)
		}
	}

	slog.Info("database seeded with development accounts", "count", len(devAccounts))
	return nil
}
