// Package htmlutil holds small helpers over golang.org/x/net/html trees
// shared by the history and search scrapers.
package htmlutil

import (
	"strings"

	"golang.org/x/net/html"
)

// HasClass reports whether n carries class among its space-separated classes.
func HasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
