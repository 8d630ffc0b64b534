// Package category repairs mis-decoded category labels and maps free-text
// upstream categories onto the fixed taxonomy used by the catalog.
package category

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Default is the bucket for labels that match no table entry.
const Default = "Andet"

// mojibake covers the Danish letters whose double-encoded form contains a
// rune outside Latin-1, so the round trip in RepairEncoding cannot undo it.
var mojibake = strings.NewReplacer(
	"Ã¸", "ø",
	"Ã¦", "æ",
	"Ã¥", "å",
	"Ã˜", "Ø",
	"Ã†", "Æ",
	"Ã…", "Å",
)

// RepairEncoding recovers text whose UTF-8 bytes were read as Latin-1. Input
// that cannot be round-tripped is kept as is. It never fails.
func RepairEncoding(raw string) string {
	repaired := raw
	if latin1, err := charmap.ISO8859_1.NewEncoder().String(raw); err == nil && utf8.ValidString(latin1) {
		repaired = latin1
	}
	return mojibake.Replace(repaired)
}

// MapCategory returns the canonical bucket for an upstream label. Matching is
// exact after lower-casing and trimming.
func MapCategory(label string) string {
	if bucket, ok := index[strings.ToLower(strings.TrimSpace(label))]; ok {
		return bucket
	}
	return Default
}

// Normalize repairs the label and maps it in one step.
func Normalize(label string) (repaired, mapping string) {
	repaired = RepairEncoding(label)
	return repaired, MapCategory(repaired)
}

// Buckets lists the taxonomy in declared order followed by the default bucket.
func Buckets() []string {
	out := make([]string, 0, len(taxonomy)+1)
	for _, b := range taxonomy {
		out = append(out, b.name)
	}
	return append(out, Default)
}
