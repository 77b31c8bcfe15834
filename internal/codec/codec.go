// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package codec converts category records and user ledgers to and from the
// flat colon-delimited strings stored in Valkey. The layouts are fixed for
// compatibility with data already on disk:
//
//	category: creator:title:plays:score:hsUser:hsUserID:postID:timestamp
//	ledger:   username[:c:code1:code2...][:h:code1:code2...]
//	post:     code:creatorUserID
//
// Free-text fields (usernames, user ids, post ids) are escaped so a value
// holding the separator cannot shift the layout: "%" becomes "%25" and ":"
// becomes "%3A". Values without either character are stored unchanged.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"wordcats/internal/models"
)

const (
	separator = ":"

	// categoryFields is the number of fields in an encoded category.
	categoryFields = 8

	createdMarker   = "c"
	highScoreMarker = "h"
)

var (
	escaper   = strings.NewReplacer("%", "%25", ":", "%3A")
	unescaper = strings.NewReplacer("%3A", ":", "%25", "%")
)

// escape makes a free-text field safe to join with the separator.
func escape(s string) string { return escaper.Replace(s) }

// unescape reverses escape. Stray "%" sequences are kept as they are.
func unescape(s string) string { return unescaper.Replace(s) }

var (
	// ErrMalformedCategory is returned when an encoded category cannot be parsed.
	ErrMalformedCategory = errors.New("malformed category record")

	// ErrMalformedLedger is returned when an encoded ledger violates the
	// section grammar.
	ErrMalformedLedger = errors.New("malformed user ledger")

	// ErrMalformedPostLink is returned when a post link is not code:userID.
	ErrMalformedPostLink = errors.New("malformed post link")
)

// EncodeCategory serializes a category record. The code is the hash field
// and is not part of the value.
func EncodeCategory(c *models.Category) string {
	return strings.Join([]string{
		escape(c.CreatorUsername),
		escape(c.Title),
		strconv.FormatInt(c.PlayCount, 10),
		strconv.FormatInt(c.HighScore, 10),
		escape(c.HighScoreUsername),
		escape(c.HighScoreUserID),
		escape(c.PostID),
		strconv.FormatInt(c.CreatedAtSeconds, 10),
	}, separator)
}

// DecodeCategory parses a category record. Missing trailing fields decode
// to their zero value so records written before the timestamp field existed
// still load.
func DecodeCategory(code, raw string) (*models.Category, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty value for %s", ErrMalformedCategory, code)
	}
	fields := strings.Split(raw, separator)
	if len(fields) > categoryFields {
		return nil, fmt.Errorf("%w: %s has %d fields", ErrMalformedCategory, code, len(fields))
	}
	for len(fields) < categoryFields {
		fields = append(fields, "")
	}

	plays, err := parseCount(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %s play count: %v", ErrMalformedCategory, code, err)
	}
	score, err := parseCount(fields[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %s high score: %v", ErrMalformedCategory, code, err)
	}
	created, err := parseCount(fields[7])
	if err != nil {
		return nil, fmt.Errorf("%w: %s timestamp: %v", ErrMalformedCategory, code, err)
	}

	return &models.Category{
		Code:              code,
		CreatorUsername:   unescape(fields[0]),
		Title:             unescape(fields[1]),
		PlayCount:         plays,
		HighScore:         score,
		HighScoreUsername: unescape(fields[4]),
		HighScoreUserID:   unescape(fields[5]),
		PostID:            unescape(fields[6]),
		CreatedAtSeconds:  created,
	}, nil
}

// parseCount reads a non-negative integer field. Empty means zero.
func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

// EncodeLedger serializes a ledger. Empty sections are omitted, and the
// created section always precedes the high-score section.
func EncodeLedger(l *models.Ledger) string {
	var b strings.Builder
	b.WriteString(escape(l.Username))
	writeSection(&b, createdMarker, l.Created)
	writeSection(&b, highScoreMarker, l.HighScores)
	return b.String()
}

func writeSection(b *strings.Builder, marker string, codes []string) {
	if len(codes) == 0 {
		return
	}
	b.WriteString(separator + marker)
	for _, code := range codes {
		b.WriteString(separator + code)
	}
}

// ledgerSection tracks which part of an encoded ledger the parser is in.
type ledgerSection int

const (
	sectionUsername ledgerSection = iota
	sectionCreated
	sectionHighScores
)

// DecodeLedger parses an encoded ledger for userID. A bare username with no
// section markers is a legacy ledger with no categories. Duplicate codes
// within a section collapse to one entry.
func DecodeLedger(userID, raw string) (*models.Ledger, error) {
	tokens := strings.Split(raw, separator)
	l := models.NewLedger(userID, unescape(tokens[0]))

	section := sectionUsername
	for _, tok := range tokens[1:] {
		switch tok {
		case createdMarker:
			if section != sectionUsername {
				return nil, fmt.Errorf("%w: unexpected created section for %s", ErrMalformedLedger, userID)
			}
			section = sectionCreated
		case highScoreMarker:
			if section == sectionHighScores {
				return nil, fmt.Errorf("%w: repeated high-score section for %s", ErrMalformedLedger, userID)
			}
			section = sectionHighScores
		case "":
			// Tolerate empty sections such as "name:c:".
		default:
			if len(tok) != models.CodeLength {
				return nil, fmt.Errorf("%w: bad code %q for %s", ErrMalformedLedger, tok, userID)
			}
			switch section {
			case sectionCreated:
				l.AddCreated(tok)
			case sectionHighScores:
				l.AddHighScore(tok)
			default:
				return nil, fmt.Errorf("%w: code %q outside a section for %s", ErrMalformedLedger, tok, userID)
			}
		}
	}
	return l, nil
}

// EncodePostLink serializes the post -> category lookup value.
func EncodePostLink(link *models.PostLink) string {
	return link.Code + separator + escape(link.CreatorUserID)
}

// DecodePostLink parses the post -> category lookup value.
func DecodePostLink(postID, raw string) (*models.PostLink, error) {
	code, creator, ok := strings.Cut(raw, separator)
	if !ok || code == "" {
		return nil, fmt.Errorf("%w: %q for post %s", ErrMalformedPostLink, raw, postID)
	}
	return &models.PostLink{PostID: postID, Code: code, CreatorUserID: unescape(creator)}, nil
}
