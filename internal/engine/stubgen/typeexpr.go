package stubgen

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

type ExprKind int

const (
	// ExprName is a possibly dotted name with optional subscript arguments.
	ExprName ExprKind = iota
	// ExprList is a bracketed list such as the parameter list of Callable.
	ExprList
	ExprUnion
	// ExprLiteral is anything that names no type: strings, numbers, `...`.
	ExprLiteral
)

// TypeExpr is the structured form of a type expression such as
// `typing.Mapping[str, decimal.Decimal] | None`.
type TypeExpr struct {
	Kind ExprKind
	// Module is the owning module path of a dotted name, empty for bare names.
	Module  string
	Name    string
	Args    []TypeExpr
	Literal string
}

// Qualified returns the dotted name of an ExprName.
func (t TypeExpr) Qualified() string {
	if t.Module == "" {
		return t.Name
	}
	return t.Module + "." + t.Name
}

// DottedNames returns every dotted name in the expression, depth first.
func (t TypeExpr) DottedNames() []string {
	var out []string
	t.walk(func(e TypeExpr) {
		if e.Kind == ExprName {
			out = append(out, e.Qualified())
		}
	})
	return out
}

// Modules returns the module paths of every qualified name in the expression.
func (t TypeExpr) Modules() []string {
	var out []string
	t.walk(func(e TypeExpr) {
		if e.Kind == ExprName && e.Module != "" {
			out = append(out, e.Module)
		}
	})
	return out
}

func (t TypeExpr) walk(fn func(TypeExpr)) {
	fn(t)
	for _, arg := range t.Args {
		arg.walk(fn)
	}
}

func (t TypeExpr) String() string {
	switch t.Kind {
	case ExprLiteral:
		return t.Literal
	case ExprUnion:
		return joinExprs(t.Args, " | ")
	case ExprList:
		return "[" + joinExprs(t.Args, ", ") + "]"
	}
	if len(t.Args) == 0 {
		return t.Qualified()
	}
	return t.Qualified() + "[" + joinExprs(t.Args, ", ") + "]"
}

func joinExprs(exprs []TypeExpr, sep string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, sep)
}

// SplitQualified splits a dotted name into its module path and bare name.
func SplitQualified(name string) (module, bare string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

// ParseTypeExpr parses s into a TypeExpr. Comma separated parameter lists,
// nested subscripts and `|` unions are handled explicitly.
func ParseTypeExpr(s string) (TypeExpr, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return TypeExpr{}, err
	}
	p := &typeParser{tokens: tokens, src: s}
	expr, err := p.union()
	if err != nil {
		return TypeExpr{}, err
	}
	if p.peek().kind != tokEOF {
		return TypeExpr{}, p.errorf("unexpected %q", p.peek().text)
	}
	return expr, nil
}

var dottedNamePattern = regexp.MustCompile(`[\p{L}_][\p{L}\p{N}_]*(?:\.[\p{L}_][\p{L}\p{N}_]*)*`)

// dottedNames extracts every dotted name from a type expression, falling back
// to a lexical scan when the expression does not parse.
func dottedNames(s string) []string {
	expr, err := ParseTypeExpr(s)
	if err == nil {
		return expr.DottedNames()
	}
	var out []string
	for _, quoted := range splitOutsideQuotes(s) {
		out = append(out, dottedNamePattern.FindAllString(quoted, -1)...)
	}
	return out
}

// splitOutsideQuotes returns the segments of s that are not inside string
// literals.
func splitOutsideQuotes(s string) []string {
	var out []string
	var cur strings.Builder
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokDot
	tokLBracket
	tokRBracket
	tokComma
	tokPipe
	tokLiteral
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case strings.HasPrefix(string(runes[i:]), "..."):
			tokens = append(tokens, token{kind: tokLiteral, text: "...", pos: i})
			i += 3
		case r == '.':
			tokens = append(tokens, token{kind: tokDot, text: ".", pos: i})
			i++
		case r == '[':
			tokens = append(tokens, token{kind: tokLBracket, text: "[", pos: i})
			i++
		case r == ']':
			tokens = append(tokens, token{kind: tokRBracket, text: "]", pos: i})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++
		case r == '|':
			tokens = append(tokens, token{kind: tokPipe, text: "|", pos: i})
			i++
		case r == '\'' || r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != r {
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated string at %d in %q", i, s)
			}
			tokens = append(tokens, token{kind: tokLiteral, text: string(runes[i : j+1]), pos: i})
			i = j + 1
		case isIdentRune(r, true):
			j := i + 1
			for j < len(runes) && isIdentRune(runes[j], false) {
				j++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[i:j]), pos: i})
			i = j
		case unicode.IsDigit(r) || r == '-':
			j := i + 1
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.' || runes[j] == '_') {
				j++
			}
			tokens = append(tokens, token{kind: tokLiteral, text: string(runes[i:j]), pos: i})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at %d in %q", r, i, s)
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}

type typeParser struct {
	tokens []token
	pos    int
	src    string
}

func (p *typeParser) peek() token {
	return p.tokens[p.pos]
}

func (p *typeParser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type expression %q at %d: %s", p.src, p.peek().pos, fmt.Sprintf(format, args...))
}

// union := primary ('|' primary)*
func (p *typeParser) union() (TypeExpr, error) {
	first, err := p.primary()
	if err != nil {
		return TypeExpr{}, err
	}
	if p.peek().kind != tokPipe {
		return first, nil
	}
	alternatives := []TypeExpr{first}
	for p.peek().kind == tokPipe {
		p.next()
		alt, err := p.primary()
		if err != nil {
			return TypeExpr{}, err
		}
		alternatives = append(alternatives, alt)
	}
	return TypeExpr{Kind: ExprUnion, Args: alternatives}, nil
}

// primary := dotted ('[' list ']')? | '[' list ']' | literal
func (p *typeParser) primary() (TypeExpr, error) {
	switch tok := p.peek(); tok.kind {
	case tokLiteral:
		p.next()
		return TypeExpr{Kind: ExprLiteral, Literal: tok.text}, nil
	case tokLBracket:
		p.next()
		items, err := p.list()
		if err != nil {
			return TypeExpr{}, err
		}
		return TypeExpr{Kind: ExprList, Args: items}, nil
	case tokIdent:
		return p.name()
	default:
		return TypeExpr{}, p.errorf("expected a type, got %q", tok.text)
	}
}

func (p *typeParser) name() (TypeExpr, error) {
	parts := []string{p.next().text}
	for p.peek().kind == tokDot {
		p.next()
		tok := p.next()
		if tok.kind != tokIdent {
			return TypeExpr{}, p.errorf("expected identifier after '.'")
		}
		parts = append(parts, tok.text)
	}
	module, bare := SplitQualified(strings.Join(parts, "."))
	expr := TypeExpr{Kind: ExprName, Module: module, Name: bare}

	if p.peek().kind == tokLBracket {
		p.next()
		args, err := p.list()
		if err != nil {
			return TypeExpr{}, err
		}
		expr.Args = args
	}
	return expr, nil
}

// list := (union (',' union)* ','?)? ']'
func (p *typeParser) list() ([]TypeExpr, error) {
	var items []TypeExpr
	for {
		if p.peek().kind == tokRBracket {
			p.next()
			return items, nil
		}
		item, err := p.union()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		switch p.peek().kind {
		case tokComma:
			p.next()
		case tokRBracket:
			p.next()
			return items, nil
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}
