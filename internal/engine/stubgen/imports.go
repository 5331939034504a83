package stubgen

import (
	"ivrit/internal/engine/pyast"
	"ivrit/internal/shared/util"
)

// ResolveImports returns the sorted, distinct module paths that must be
// imported for the fully qualified type names in needed to resolve. Bare
// names need no import.
func ResolveImports(needed []string) []string {
	modules := make(map[string]bool)
	for _, fq := range needed {
		for _, name := range dottedNames(fq) {
			if module, _ := SplitQualified(name); module != "" {
				modules[module] = true
			}
		}
	}
	return util.SortedStringKeys(modules)
}

// InsertImports prepends one `import <module>` per module to body. Leading
// `from __future__` imports stay first.
func InsertImports(body []pyast.Stmt, modules []string) []pyast.Stmt {
	if len(modules) == 0 {
		return body
	}

	at := 0
	for at < len(body) {
		imp, ok := body[at].(*pyast.Import)
		if !ok || !imp.Future {
			break
		}
		at++
	}

	out := make([]pyast.Stmt, 0, len(body)+len(modules))
	out = append(out, body[:at]...)
	for _, module := range modules {
		out = append(out, &pyast.Import{Source: "import " + module})
	}
	return append(out, body[at:]...)
}
