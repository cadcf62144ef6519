package jsonvalue

import (
	"bytes"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/xdg-go/jsonvalue/internal/jsonnum"
)

// TokenKind identifies a lexical token.
type TokenKind uint8

// Token kinds.
const (
	TokenEOF TokenKind = iota
	TokenBeginObject
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenColon
	TokenComma
	TokenString
	TokenNumber
	TokenTrue
	TokenFalse
	TokenNull
)

var tokenNames = [...]string{
	TokenEOF:         "end of input",
	TokenBeginObject: "'{'",
	TokenEndObject:   "'}'",
	TokenBeginArray:  "'['",
	TokenEndArray:    "']'",
	TokenColon:       "':'",
	TokenComma:       "','",
	TokenString:      "string",
	TokenNumber:      "number",
	TokenTrue:        "true",
	TokenFalse:       "false",
	TokenNull:        "null",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(k))
}

// Token is one lexical element of JSON text.  For TokenString, Text holds the
// decoded string; for TokenNumber, Text holds the literal exactly as written.
// Offset is the byte offset of the token's first byte.
type Token struct {
	Kind   TokenKind
	Offset int
	Text   string
}

// Lexer splits JSON text into tokens on demand.  A Lexer holds no state
// besides its input and cursor, so independent Lexers may run concurrently.
type Lexer struct {
	data    []byte
	pos     int
	scratch []byte
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16BEBOM = []byte{0xFE, 0xFF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf32BEBOM = []byte{0x00, 0x00, 0xFE, 0xFF}
	utf32LEBOM = []byte{0xFF, 0xFE, 0x00, 0x00}
)

// NewLexer returns a Lexer positioned at the start of data.  A leading UTF-8
// byte-order mark is skipped.  Because only UTF-8 is supported, other BOMs
// are reported as errors by the first call to Next.
func NewLexer(data []byte) *Lexer {
	l := &Lexer{}
	l.reset(data)
	return l
}

func (l *Lexer) reset(data []byte) {
	l.data = data
	l.pos = 0
	if bytes.HasPrefix(data, utf8BOM) {
		l.pos = len(utf8BOM)
	}
}

// Offset returns the byte offset of the next unread byte.
func (l *Lexer) Offset() int { return l.pos }

// Next returns the next token.  At end of input it returns a TokenEOF token
// and a nil error, repeatedly.  Errors are *ParseError values.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.data) {
		return Token{Kind: TokenEOF, Offset: len(l.data)}, nil
	}

	start := l.pos
	switch c := l.data[start]; c {
	case '{':
		l.pos++
		return Token{Kind: TokenBeginObject, Offset: start}, nil
	case '}':
		l.pos++
		return Token{Kind: TokenEndObject, Offset: start}, nil
	case '[':
		l.pos++
		return Token{Kind: TokenBeginArray, Offset: start}, nil
	case ']':
		l.pos++
		return Token{Kind: TokenEndArray, Offset: start}, nil
	case ':':
		l.pos++
		return Token{Kind: TokenColon, Offset: start}, nil
	case ',':
		l.pos++
		return Token{Kind: TokenComma, Offset: start}, nil
	case '"':
		return l.lexString()
	case 't':
		return l.lexLiteral(TokenTrue, "true")
	case 'f':
		return l.lexLiteral(TokenFalse, "false")
	case 'n':
		return l.lexLiteral(TokenNull, "null")
	default:
		if c == '-' || isDigit(c) {
			return l.lexNumber()
		}
		if start == 0 && hasUnsupportedBOM(l.data) {
			return Token{}, l.errorf(UnexpectedCharacter, start, "detected unsupported UTF-16 or UTF-32 byte-order mark")
		}
		return Token{}, l.errorf(UnexpectedCharacter, start, "unexpected character %s", quoteChar(l.data[start:]))
	}
}

// atEOF reports whether only white space remains.
func (l *Lexer) atEOF() bool {
	l.skipWhitespace()
	return l.pos >= len(l.data)
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) lexLiteral(kind TokenKind, lit string) (Token, error) {
	start := l.pos
	rest := l.data[start:]
	if len(rest) >= len(lit) && string(rest[:len(lit)]) == lit {
		l.pos += len(lit)
		return Token{Kind: kind, Offset: start}, nil
	}
	for i := 1; i < len(lit); i++ {
		if i == len(rest) {
			return Token{}, l.errorf(UnexpectedEOF, len(l.data), "unexpected end of input, expecting %s", lit)
		}
		if rest[i] != lit[i] {
			break
		}
	}
	return Token{}, l.errorf(UnexpectedCharacter, start, "expecting %s", lit)
}

func (l *Lexer) lexNumber() (Token, error) {
	start := l.pos
	n, ok := jsonnum.Scan(l.data[start:])
	end := start + n
	// A valid prefix glued to more number-like bytes (01, 123abc, 1.5.2) is
	// one malformed number, not two tokens.
	if !ok || end < len(l.data) && isNumberTail(l.data[end]) {
		excerpt := l.data[start:]
		if end+1-start < len(excerpt) {
			excerpt = excerpt[:end+1-start]
		}
		return Token{}, l.errorf(InvalidNumber, end, "malformed number %s", quoteText(excerpt))
	}
	l.pos = end
	return Token{Kind: TokenNumber, Offset: start, Text: string(l.data[start:end])}, nil
}

func (l *Lexer) lexString() (Token, error) {
	start := l.pos
	// Fast path: plain ASCII without escapes is copied in one step.
	for i := start + 1; i < len(l.data); i++ {
		c := l.data[i]
		if c == '"' {
			l.pos = i + 1
			return Token{Kind: TokenString, Offset: start, Text: string(l.data[start+1 : i])}, nil
		}
		if c == '\\' || c < ' ' || c >= utf8.RuneSelf {
			return l.lexComplexString(start, i)
		}
	}
	return Token{}, l.errorf(UnterminatedString, start, "string not terminated")
}

// lexComplexString decodes a string whose bytes from start+1 up to i need no
// processing.
func (l *Lexer) lexComplexString(start, i int) (Token, error) {
	buf := append(l.scratch[:0], l.data[start+1:i]...)
	var err error
	for i < len(l.data) {
		c := l.data[i]
		switch {
		case c == '"':
			l.pos = i + 1
			l.scratch = buf
			return Token{Kind: TokenString, Offset: start, Text: string(buf)}, nil
		case c == '\\':
			buf, i, err = l.appendEscape(buf, start, i)
			if err != nil {
				return Token{}, err
			}
		case c < ' ':
			return Token{}, l.errorf(UnterminatedString, i, "unescaped control character U+%04X in string", c)
		case c < utf8.RuneSelf:
			buf = append(buf, c)
			i++
		default:
			r, size := utf8.DecodeRune(l.data[i:])
			if r == utf8.RuneError && size == 1 {
				buf = append(buf, "\ufffd"...)
			} else {
				buf = append(buf, l.data[i:i+size]...)
			}
			i += size
		}
	}
	l.scratch = buf
	return Token{}, l.errorf(UnterminatedString, start, "string not terminated")
}

// appendEscape decodes the escape sequence at l.data[i] (a backslash) and
// returns the position after it.
func (l *Lexer) appendEscape(buf []byte, start, i int) ([]byte, int, error) {
	if i+1 >= len(l.data) {
		return nil, i, l.errorf(UnterminatedString, start, "string not terminated")
	}
	switch c := l.data[i+1]; c {
	case '"', '\\', '/':
		return append(buf, c), i + 2, nil
	case 'b':
		return append(buf, '\b'), i + 2, nil
	case 'f':
		return append(buf, '\f'), i + 2, nil
	case 'n':
		return append(buf, '\n'), i + 2, nil
	case 'r':
		return append(buf, '\r'), i + 2, nil
	case 't':
		return append(buf, '\t'), i + 2, nil
	case 'u':
		r, err := l.hex4(start, i)
		if err != nil {
			return nil, i, err
		}
		i += 6
		if !utf16.IsSurrogate(r) {
			return utf8.AppendRune(buf, r), i, nil
		}
		// A high surrogate must be followed by an escaped low surrogate;
		// anything else leaves a lone surrogate, which becomes U+FFFD.
		if r < 0xDC00 && i+1 < len(l.data) && l.data[i] == '\\' && l.data[i+1] == 'u' {
			if r2, err := l.hex4(start, i); err == nil {
				if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
					return utf8.AppendRune(buf, dec), i + 6, nil
				}
			}
		}
		return utf8.AppendRune(buf, utf8.RuneError), i, nil
	default:
		return nil, i, l.errorf(InvalidEscape, i, "unknown escape %s", quoteText(l.data[i:i+2]))
	}
}

// hex4 decodes the four hex digits of the \u escape at l.data[i].
func (l *Lexer) hex4(start, i int) (rune, error) {
	digits := l.data[i+2:]
	if len(digits) > 4 {
		digits = digits[:4]
	}
	var r rune
	for j, c := range digits {
		switch {
		case '0' <= c && c <= '9':
			r = r<<4 | rune(c-'0')
		case 'a' <= c && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case 'A' <= c && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, l.errorf(InvalidEscape, i, "invalid unicode escape %s", quoteText(l.data[i:i+3+j]))
		}
	}
	if len(digits) < 4 {
		return 0, l.errorf(UnterminatedString, start, "string not terminated")
	}
	return r, nil
}

func (l *Lexer) errorf(kind ErrorKind, offset int, format string, args ...interface{}) *ParseError {
	return newParseError(l.data, kind, offset, fmt.Sprintf(format, args...))
}

func hasUnsupportedBOM(data []byte) bool {
	return bytes.HasPrefix(data, utf32BEBOM) || bytes.HasPrefix(data, utf32LEBOM) ||
		bytes.HasPrefix(data, utf16BEBOM) || bytes.HasPrefix(data, utf16LEBOM)
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isNumberTail(c byte) bool {
	switch {
	case isDigit(c), 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	}
	return c == '.' || c == '+' || c == '-'
}

// quoteChar quotes the rune at the start of b for error messages.
func quoteChar(b []byte) string {
	r, _ := utf8.DecodeRune(b)
	if r == utf8.RuneError {
		return fmt.Sprintf("byte %#x", b[0])
	}
	return fmt.Sprintf("%q", r)
}

// quoteText quotes an excerpt of input for error messages, truncating long
// excerpts.
func quoteText(b []byte) string {
	const max = 20
	if len(b) > max {
		return fmt.Sprintf("%q...", b[:max])
	}
	return fmt.Sprintf("%q", b)
}
