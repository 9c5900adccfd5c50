package gml

import (
	"bufio"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokKey
	tokInt
	tokReal
	tokString
	tokOpen
	tokClose
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokKey:
		return "key"
	case tokInt:
		return "integer"
	case tokReal:
		return "real"
	case tokString:
		return "string"
	case tokOpen:
		return "'['"
	case tokClose:
		return "']'"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer splits a GML stream into tokens. It reads byte by byte so large
// memory-mapped inputs are never copied in full.
type lexer struct {
	r    *bufio.Reader
	line int
}

type lexError struct {
	line int
	msg  string
}

func (e *lexError) Error() string { return e.msg }

func newLexer(r io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(r), line: 1}
}

func (l *lexer) errorf(format string, args ...any) error {
	return &lexError{line: l.line, msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (token, error) {
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return token{kind: tokEOF, line: l.line}, nil
			}
			return token{}, err
		}

		switch {
		case c == '\n':
			l.line++
		case c == ' ' || c == '\t' || c == '\r':
		case c == '#':
			if err := l.skipComment(); err != nil {
				return token{}, err
			}
		case c == '[':
			return token{kind: tokOpen, text: "[", line: l.line}, nil
		case c == ']':
			return token{kind: tokClose, text: "]", line: l.line}, nil
		case c == '"':
			return l.readString()
		case isLetter(c) || c == '_':
			return l.readKey(c)
		case isDigit(c) || c == '+' || c == '-' || c == '.':
			return l.readNumber(c)
		default:
			return token{}, l.errorf("unexpected character %q", c)
		}
	}
}

func (l *lexer) skipComment() error {
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if c == '\n' {
			l.line++
			return nil
		}
	}
}

func (l *lexer) readString() (token, error) {
	start := l.line
	var sb strings.Builder
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return token{}, &lexError{line: start, msg: "unterminated string"}
			}
			return token{}, err
		}
		if c == '"' {
			return token{kind: tokString, text: html.UnescapeString(sb.String()), line: start}, nil
		}
		if c == '\n' {
			l.line++
		}
		sb.WriteByte(c)
	}
}

func (l *lexer) readKey(first byte) (token, error) {
	var sb strings.Builder
	sb.WriteByte(first)
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return token{}, err
		}
		if !isLetter(c) && !isDigit(c) && c != '_' {
			if err := l.r.UnreadByte(); err != nil {
				return token{}, err
			}
			break
		}
		sb.WriteByte(c)
	}
	return token{kind: tokKey, text: sb.String(), line: l.line}, nil
}

func (l *lexer) readNumber(first byte) (token, error) {
	var sb strings.Builder
	sb.WriteByte(first)
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return token{}, err
		}
		if !isDigit(c) && !isLetter(c) && c != '.' && c != '+' && c != '-' {
			if err := l.r.UnreadByte(); err != nil {
				return token{}, err
			}
			break
		}
		sb.WriteByte(c)
	}

	text := sb.String()
	unsigned := strings.TrimLeft(text, "+-")
	switch {
	case unsigned == "INF" || unsigned == "NAN":
		return token{kind: tokReal, text: text, line: l.line}, nil
	case unsigned == "" || strings.IndexFunc(unsigned, notNumeric) >= 0:
		return token{}, l.errorf("malformed number %q", text)
	case strings.ContainsAny(unsigned, ".eE"):
		return token{kind: tokReal, text: text, line: l.line}, nil
	default:
		return token{kind: tokInt, text: text, line: l.line}, nil
	}
}

// notNumeric reports runes that may not appear in a numeric literal
func notNumeric(r rune) bool {
	return !(r >= '0' && r <= '9') && r != '.' && r != 'e' && r != 'E' && r != '+' && r != '-'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
