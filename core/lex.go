package core

import (
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokComma
	tokColon
	tokOp
	tokWord
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// lex splits a media query into tokens. Words are runs of anything that is
// not whitespace or punctuation, so "100px", "16/9" and "-ms-foo" are
// single words. Offsets are byte positions in src.
func lex(src string) []token {
	var toks []token
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", offset: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", offset: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", offset: i})
			i++
		case r == ':':
			toks = append(toks, token{kind: tokColon, text: ":", offset: i})
			i++
		case r == '<' || r == '>' || r == '=':
			op := string(r)
			if r != '=' && i+1 < len(src) && src[i+1] == '=' {
				op += "="
			}
			toks = append(toks, token{kind: tokOp, text: op, offset: i})
			i += len(op)
		default:
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if unicode.IsSpace(r) || isPunct(r) {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokWord, text: src[start:i], offset: start})
		}
	}
	toks = append(toks, token{kind: tokEOF, text: "end of query", offset: len(src)})
	return toks
}

func isPunct(r rune) bool {
	switch r {
	case '(', ')', ',', ':', '<', '>', '=':
		return true
	}
	return false
}
