package pyast

import "strings"

// Dedent removes up to width leading blanks from every continuation line of
// src. Lines that start inside a string literal are left as they are, since
// their leading blanks belong to the literal's value.
func Dedent(src string, width int) string {
	if width == 0 || !strings.Contains(src, "\n") {
		return src
	}
	lines := strings.Split(src, "\n")
	literal := literalLines(src)
	for i := 1; i < len(lines); i++ {
		if literal[i] {
			continue
		}
		lines[i] = trimIndent(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

func trimIndent(line string, width int) string {
	n := 0
	for n < width && n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return line[n:]
}

// literalLines reports for each line of src whether it begins inside a
// string literal. The first line never does.
func literalLines(src string) []bool {
	out := make([]bool, 1, strings.Count(src, "\n")+1)
	quote := ""
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\n':
			// An unescaped newline ends a single-quoted string.
			if len(quote) == 1 {
				quote = ""
			}
			out = append(out, quote != "")
		case quote == "" && c == '#':
			for i+1 < len(src) && src[i+1] != '\n' {
				i++
			}
		case quote == "" && (c == '"' || c == '\''):
			quote = string(c)
			if triple := strings.Repeat(quote, 3); strings.HasPrefix(src[i:], triple) {
				quote = triple
				i += 2
			}
		case quote == "":
		case c == '\\':
			// Escapes apply in raw strings too as far as termination goes.
			if i+1 < len(src) && src[i+1] == '\n' {
				out = append(out, true)
			}
			i++
		case strings.HasPrefix(src[i:], quote):
			i += len(quote) - 1
			quote = ""
		}
	}
	return out
}
