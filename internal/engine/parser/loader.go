// # internal/engine/parser/loader.go
package parser

import (
	"ivrit/internal/shared/util"
	"path/filepath"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

const LanguagePython = "python"

// GrammarLoader owns the compiled tree-sitter grammars and the extension
// routing table. Declaration files (.pyi) are deliberately not routed: the
// generator never reads its own output.
type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string
}

func NewGrammarLoader() *GrammarLoader {
	return &GrammarLoader{
		languages: map[string]*sitter.Language{
			LanguagePython: sitter.NewLanguage(tree_sitter_python.Language()),
		},
		extensions: map[string]string{
			".py": LanguagePython,
		},
	}
}

func (gl *GrammarLoader) Language(name string) (*sitter.Language, bool) {
	lang, ok := gl.languages[name]
	return lang, ok
}

// LanguageForPath returns the language routed for path, or "" when the
// extension is not supported. Matching is case-sensitive: `.PY` files are not
// Python modules to the import system either.
func (gl *GrammarLoader) LanguageForPath(path string) string {
	return gl.extensions[filepath.Ext(path)]
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	return util.SortedStringKeys(gl.extensions)
}

// Languages returns the loaded language names, sorted.
func (gl *GrammarLoader) Languages() []string {
	return util.SortedStringKeys(gl.languages)
}
