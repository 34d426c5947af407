// Package pathutil maps request paths onto a fixed set of metric and span labels.
package pathutil

import (
	"strings"
)

// Unmatched labels every path outside Routes.
const Unmatched = "/unmatched"

// Routes are the paths the API serves. They carry no path parameters.
var Routes = []string{
	"/cities",
	"/city",
	"/news",
	"/bookmarks",
	"/bookmarks/check",
	"/alerts",
	"/reader",
	"/health",
	"/ready",
	"/live",
	"/metrics",
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Routes))
	for _, r := range Routes {
		m[r] = struct{}{}
	}
	return m
}()

// NormalizePath returns path as a bounded label: a route from Routes with any
// query and trailing slash removed, or Unmatched. Scanners probing random
// paths therefore cannot grow label cardinality.
//
//	NormalizePath("/news?city=Austin")  // "/news"
//	NormalizePath("/bookmarks/")        // "/bookmarks"
//	NormalizePath("/wp-admin/login.php") // "/unmatched"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if _, ok := known[path]; ok {
		return path
	}
	return Unmatched
}

// Cardinality returns the number of distinct labels NormalizePath can produce.
func Cardinality() int {
	return len(known) + 1
}
