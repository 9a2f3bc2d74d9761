//go:build cgo

package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSharpTreeSitterMatcher(t *testing.T) {
	decl := NewCSharpTreeSitterMatcher().Match([]byte(csharpSource))

	assert.Equal(t, "Basket", decl.TypeName)
	assert.Contains(t, decl.Methods, "Total")
	assert.Contains(t, decl.Methods, "CheckoutAsync")
	assert.Contains(t, decl.Methods, "ToString")
	assert.NotContains(t, decl.Methods, "Hidden")
	assert.NotContains(t, decl.Methods, "Internal")
}

func TestCSharpTreeSitterMatcher_IgnoresComments(t *testing.T) {
	src := "// public int Ghost() { }\npublic class A { public int Real() { return 1; } }\n"
	decl := NewCSharpTreeSitterMatcher().Match([]byte(src))

	assert.Equal(t, []string{"Real"}, decl.Methods)
	assert.Equal(t, "A", decl.TypeName)
}

func TestJavaTreeSitterMatcher(t *testing.T) {
	decl := NewJavaTreeSitterMatcher().Match([]byte(javaSource))

	assert.Equal(t, "Basket", decl.TypeName)
	assert.ElementsMatch(t, []string{"total", "filter", "counts"}, decl.Methods)
}
