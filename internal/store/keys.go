// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

// Keys names every Valkey key the game uses. An optional prefix namespaces
// them so several deployments can share one instance.
type Keys struct {
	prefix string
}

// NewKeys returns the key set for the given prefix (may be empty).
func NewKeys(prefix string) Keys {
	return Keys{prefix: prefix}
}

// Sequence is the string holding the last issued category code. Every
// mutating transaction watches it.
func (k Keys) Sequence() string { return k.prefix + "sequence" }

// Categories is the hash of code -> encoded category record.
func (k Keys) Categories() string { return k.prefix + "categories" }

// Words is the hash of code -> words CSV.
func (k Keys) Words() string { return k.prefix + "words" }

// Users is the hash of user id -> encoded ledger.
func (k Keys) Users() string { return k.prefix + "users" }

// Posts is the hash of post id -> code:creatorUserID.
func (k Keys) Posts() string { return k.prefix + "posts" }

// Index is the sorted set for the named index.
func (k Keys) Index(name string) string { return k.prefix + "idx:" + name }
