package policy

import "strings"

// The strippers below remove string literals and comments before any token
// search, so banned words hidden inside them never match and comment-embedded
// delimiters cannot confuse the search. Both are single-pass scanners with no
// backtracking; input size is capped by the validator.

// stripCLike removes //-comments, /* */ comments and quoted literals from
// C-family source. Stripped regions collapse to one space so word
// boundaries survive; newlines outside literals are preserved.
func stripCLike(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		switch {
		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			i += 2
			for i < n {
				if src[i] == '*' && i+1 < n && src[i+1] == '/' {
					i += 2
					break
				}
				if src[i] == '\n' {
					b.WriteByte('\n')
				}
				i++
			}
			b.WriteByte(' ')
		case c == '"' || c == '\'':
			i = skipQuoted(src, i)
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// stripPythonLike removes #-comments, triple-quoted blocks and quoted
// literals from Python-family source.
func stripPythonLike(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		switch {
		case c == '#':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '"' || c == '\'':
			if i+2 < n && src[i+1] == c && src[i+2] == c {
				i += 3
				for i < n {
					if src[i] == c && i+2 < n && src[i+1] == c && src[i+2] == c {
						i += 3
						break
					}
					if src[i] == '\n' {
						b.WriteByte('\n')
					}
					i++
				}
				b.WriteByte(' ')
				continue
			}
			i = skipQuoted(src, i)
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// skipQuoted consumes a quoted literal starting at i and returns the index
// past its closing quote. An unterminated literal ends at the newline.
func skipQuoted(src string, i int) int {
	quote := src[i]
	n := len(src)
	i++
	for i < n {
		switch {
		case src[i] == '\\' && i+1 < n:
			i += 2
		case src[i] == quote:
			return i + 1
		case src[i] == '\n':
			return i
		default:
			i++
		}
	}
	return i
}
