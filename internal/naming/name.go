// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package naming derives flat-directory artifact filenames.
// Implements: prd006-naming (R1-R3);
//
//	docs/ARCHITECTURE § Naming & Layout.
package naming

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/filings-engine/pkg/types"
)

const (
	// descBudget caps the description segment so full paths stay well
	// under common filesystem limits.
	descBudget = 60

	// unknownDate is the date segment for documents whose publication
	// date could not be determined.
	unknownDate = "undated"
)

// Filename derives the base name for one document:
// {date}_{category}_{symbol}_{description}.{ext}. It carries no collision
// handling; use a Namer when naming a whole run.
func Filename(date time.Time, dateKnown bool, cat types.Category, symbol, desc, ext string) string {
	datePart := unknownDate
	if dateKnown {
		datePart = date.Format("2006-01-02")
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s",
		datePart, cat, sanitize(symbol), sanitize(desc), strings.TrimPrefix(ext, "."))
}

// Namer assigns collision-free filenames within one run directory. The
// second document that derives an already-taken name gets a "_2" suffix,
// the third "_3", and so on, in assignment order. Safe for concurrent use;
// category tags in the name keep cross-category assignments from ever
// colliding, so per-category sequential assignment stays deterministic.
type Namer struct {
	mu   sync.Mutex
	seen map[string]int
}

// NewNamer returns an empty Namer.
func NewNamer() *Namer {
	return &Namer{seen: make(map[string]int)}
}

// Assign returns the filename for ref, unique among all names this Namer
// has handed out.
func (n *Namer) Assign(ref types.DocumentReference, ext string) string {
	base := Filename(ref.Date, ref.DateKnown, ref.Category, ref.Symbol, ref.Description, ext)

	n.mu.Lock()
	defer n.mu.Unlock()

	n.seen[base]++
	if n.seen[base] == 1 {
		return base
	}

	stem := strings.TrimSuffix(base, "."+strings.TrimPrefix(ext, "."))
	return fmt.Sprintf("%s_%d.%s", stem, n.seen[base], strings.TrimPrefix(ext, "."))
}

// sanitize lower-cases s and collapses every run of path-unsafe characters
// to a single hyphen, truncating to the description budget.
func sanitize(s string) string {
	var b strings.Builder
	lastHyphen := true // trims leading separators
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > descBudget {
		out = strings.TrimRight(out[:descBudget], "-")
	}
	if out == "" {
		return "document"
	}
	return out
}
