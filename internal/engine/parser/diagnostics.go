package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParseError locates the first syntax error of a file. Line and Column are
// 1-based.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func syntaxError(root *sitter.Node) *ParseError {
	node := findFirstBroken(root)
	if node == nil {
		node = root
	}
	message := "syntax error"
	if node.IsMissing() {
		message = fmt.Sprintf("syntax error: missing %s", node.Kind())
	}
	pos := node.StartPosition()
	return &ParseError{
		Message: message,
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
	}
}

// findFirstBroken returns the first ERROR or MISSING node in document order,
// only descending into subtrees that report errors.
func findFirstBroken(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsMissing() || node.IsError() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := findFirstBroken(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
