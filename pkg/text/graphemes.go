package text

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Graphemes splits s into user-perceived characters. Truncation never cuts
// inside a cluster, so combining marks and emoji sequences stay whole.
func Graphemes(s string) []string {
	clusters := make([]string, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}
	return clusters
}

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Prefix joins the first n clusters.
func Prefix(clusters []string, n int) string {
	if n <= 0 {
		return ""
	}
	if n > len(clusters) {
		n = len(clusters)
	}
	return strings.Join(clusters[:n], "")
}

