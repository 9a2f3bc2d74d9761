//go:build !cgo

package coverage

import "errors"

// ErrNoCGO is returned when tree-sitter matchers are unavailable due to missing CGO.
var ErrNoCGO = errors.New("tree-sitter matchers require CGO")

// TreeSitterMatchers is unavailable without CGO.
func TreeSitterMatchers() (map[string]Matcher, error) {
	return nil, ErrNoCGO
}
