// # internal/engine/parser/parser.go
package parser

import (
	"fmt"
	"ivrit/internal/core/errors"
	"ivrit/internal/engine/pyast"
	"ivrit/internal/shared/observability"
	"time"
)

// Parser turns source files into pyast modules. It is safe for concurrent use:
// every call leases its own tree-sitter parser from a per-language pool.
type Parser struct {
	loader *GrammarLoader
	pools  map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader: loader,
		pools:  make(map[string]*ParserPool),
	}
	for _, name := range loader.Languages() {
		lang, _ := loader.Language(name)
		p.pools[name] = NewParserPool(lang)
	}
	return p
}

func (p *Parser) ParseFile(path string, content []byte) (*pyast.Module, error) {
	lang := p.loader.LanguageForPath(path)
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}
	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	start := time.Now()
	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()
	observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())

	root := tree.RootNode()
	if root.HasError() {
		perr := syntaxError(root)
		de := &errors.DomainError{Code: errors.CodeParse, Message: "syntax error", Err: perr}
		de.WithContext(errors.CtxPath, path).
			WithContext(errors.CtxLine, perr.Line).
			WithContext(errors.CtxColumn, perr.Column)
		return nil, de
	}

	return newBuilder(content).module(root), nil
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.loader.LanguageForPath(path) != ""
}
