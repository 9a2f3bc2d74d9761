//go:build cgo

package coverage

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/java"
)

// TreeSitterMatcher finds public method declarations with a real parser.
// It never reports constructors, and ignores text in comments and strings.
type TreeSitterMatcher struct {
	lang       *sitter.Language
	typeNodes  map[string]struct{}
	methodNode string
}

var _ Matcher = &TreeSitterMatcher{} // Compile-time check

// NewCSharpTreeSitterMatcher returns a parser backed matcher for C#.
func NewCSharpTreeSitterMatcher() *TreeSitterMatcher {
	return &TreeSitterMatcher{
		lang:       csharp.GetLanguage(),
		typeNodes:  map[string]struct{}{"class_declaration": {}},
		methodNode: "method_declaration",
	}
}

// NewJavaTreeSitterMatcher returns a parser backed matcher for Java.
func NewJavaTreeSitterMatcher() *TreeSitterMatcher {
	return &TreeSitterMatcher{
		lang: java.GetLanguage(),
		typeNodes: map[string]struct{}{
			"class_declaration":     {},
			"interface_declaration": {},
			"enum_declaration":      {},
			"record_declaration":    {},
		},
		methodNode: "method_declaration",
	}
}

// TreeSitterMatchers returns the parser backed matcher for every supported extension.
func TreeSitterMatchers() (map[string]Matcher, error) {
	return map[string]Matcher{
		".cs":   NewCSharpTreeSitterMatcher(),
		".java": NewJavaTreeSitterMatcher(),
	}, nil
}

// Match implements the Matcher interface. Unparseable input yields nothing.
func (m *TreeSitterMatcher) Match(src []byte) Declarations {
	// Parsers are not safe for concurrent use, so each call gets its own
	parser := sitter.NewParser()
	parser.SetLanguage(m.lang)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return Declarations{}
	}

	var decl Declarations
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		switch t := node.Type(); {
		case t == m.methodNode && isPublic(node, src):
			if name := node.ChildByFieldName("name"); name != nil {
				decl.Methods = append(decl.Methods, name.Content(src))
			}
		case decl.TypeName == "":
			if _, ok := m.typeNodes[t]; ok {
				if name := node.ChildByFieldName("name"); name != nil {
					decl.TypeName = name.Content(src)
				}
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	return decl
}

// isPublic looks for a public keyword among the declaration's modifiers.
// C# lists each modifier as its own child, Java groups them in one node.
func isPublic(node *sitter.Node, src []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "modifier", "modifiers":
			for _, word := range strings.Fields(child.Content(src)) {
				if word == "public" {
					return true
				}
			}
		}
	}
	return false
}
