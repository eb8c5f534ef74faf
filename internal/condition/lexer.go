package condition

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent  tokenKind = iota // column name or keyword
	tokOp                      // ==, !=, >=, <=, >, <
	tokString                  // "…" or '…'
	tokNumber                  // 42 | -3.5
	tokBool                    // true | false
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	val  string
	pos  int
}

type lexer struct {
	src    string
	pos    int
	tokens []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			break
		}
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	l.emit(tokEOF, "", l.pos)
	return l.tokens, nil
}

func (l *lexer) emit(kind tokenKind, val string, pos int) {
	l.tokens = append(l.tokens, token{kind: kind, val: val, pos: pos})
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(rune(l.src[l.pos])) {
		l.pos++
	}
}

func (l *lexer) next() error {
	start := l.pos
	ch := l.src[l.pos]
	switch {
	case ch == '(':
		l.pos++
		l.emit(tokLParen, "(", start)
	case ch == ')':
		l.pos++
		l.emit(tokRParen, ")", start)
	case ch == '"' || ch == '\'':
		return l.quoted(ch)
	case isDigit(ch) || (ch == '-' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		l.number()
	case strings.IndexByte("=!<>", ch) >= 0:
		return l.operator()
	case ch == '_' || unicode.IsLetter(rune(ch)):
		l.ident()
	default:
		return fmt.Errorf("unexpected character %q at position %d", ch, start)
	}
	return nil
}

func (l *lexer) operator() error {
	start := l.pos
	ch := l.src[l.pos]
	if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
		l.pos += 2
		l.emit(tokOp, l.src[start:l.pos], start)
		return nil
	}
	if ch == '=' || ch == '!' {
		return fmt.Errorf("incomplete operator %q at position %d", ch, start)
	}
	l.pos++
	l.emit(tokOp, string(ch), start)
	return nil
}

func (l *lexer) quoted(quote byte) error {
	start := l.pos
	var sb strings.Builder
	for l.pos++; l.pos < len(l.src); l.pos++ {
		ch := l.src[l.pos]
		if ch == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			sb.WriteByte(l.src[l.pos])
			continue
		}
		if ch == quote {
			l.pos++
			l.emit(tokString, sb.String(), start)
			return nil
		}
		sb.WriteByte(ch)
	}
	return fmt.Errorf("unterminated string starting at position %d", start)
}

func (l *lexer) number() {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	l.emit(tokNumber, l.src[start:l.pos], start)
}

func (l *lexer) ident() {
	start := l.pos
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch != '_' && ch != '.' && !isDigit(ch) && !unicode.IsLetter(rune(ch)) {
			break
		}
		l.pos++
	}
	word := l.src[start:l.pos]
	switch strings.ToLower(word) {
	case "true", "false":
		l.emit(tokBool, strings.ToLower(word), start)
	default:
		l.emit(tokIdent, word, start)
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
