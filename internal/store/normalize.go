package store

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// normalizeQuery puts user input into NFC so composed and decomposed
// accents match the stored names.
func normalizeQuery(q string) string {
	return norm.NFC.String(strings.TrimSpace(q))
}

// likePattern escapes LIKE wildcards in q and wraps it with prefix/suffix.
func likePattern(prefix, q, suffix string) string {
	return prefix + likeEscaper.Replace(q) + suffix
}
