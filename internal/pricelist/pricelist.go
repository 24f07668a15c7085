package pricelist

import (
	"io"
)

// Format names a supplier export layout.
type Format string

const (
	// FormatGeneric is the semicolon-separated sheet most local parts
	// distributors export from their desktop tooling.
	FormatGeneric Format = "generic"
)

// Kind says where an entry lands after import.
type Kind string

const (
	KindService Kind = "service" // labor, priced catalog entry
	KindProduct Kind = "product" // untracked goods, priced catalog entry
	KindPart    Kind = "part"    // stock-tracked, goes to inventory
)

// Entry is one usable row of a supplier price list, normalized to minor
// currency units.
type Entry struct {
	Reference   string
	Description string
	UnitPrice   int64
	Kind        Kind

	// Stock is set only for KindPart rows.
	Stock    int64
	MinStock int64
	Unit     string
}

// Parser turns one supplier format into entries.
type Parser interface {
	Parse(r io.Reader) ([]Entry, error)
}
