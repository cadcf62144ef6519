package jsonvalue

import (
	"errors"

	"github.com/xdg-go/jsonvalue/internal/jsonnum"
)

// parser is a recursive-descent parser over a Lexer.  Recursion depth is
// bounded by maxDepth, which is checked on entry to every container.
type parser struct {
	lex      Lexer
	curDepth int
	maxDepth int
}

// parseValue converts the value that starts with tok.
func (p *parser) parseValue(tok Token) (Value, error) {
	switch tok.Kind {
	case TokenBeginObject:
		return p.parseObject(tok)
	case TokenBeginArray:
		return p.parseArray(tok)
	case TokenString:
		return String(tok.Text), nil
	case TokenNumber:
		return p.parseNumber(tok)
	case TokenTrue:
		return Bool(true), nil
	case TokenFalse:
		return Bool(false), nil
	case TokenNull:
		return Null(), nil
	case TokenEOF:
		return Value{}, p.unexpectedEOF("expecting value")
	}
	return Value{}, p.lex.errorf(ExpectedValue, tok.Offset, "expecting value, found %s", tok.Kind)
}

func (p *parser) parseObject(open Token) (Value, error) {
	if err := p.enter(open); err != nil {
		return Value{}, err
	}
	defer func() { p.curDepth-- }()

	members := []Member{}

	tok, err := p.lex.Next()
	if err != nil {
		return Value{}, err
	}
	if tok.Kind == TokenEndObject {
		return Value{kind: KindObject, obj: members}, nil
	}

	for {
		// Key
		switch tok.Kind {
		case TokenString:
		case TokenEOF:
			return Value{}, p.unexpectedEOF("expecting key")
		default:
			return Value{}, p.lex.errorf(ExpectedKey, tok.Offset, "expecting key, found %s", tok.Kind)
		}
		key := tok.Text

		// Name separator
		tok, err = p.lex.Next()
		if err != nil {
			return Value{}, err
		}
		switch tok.Kind {
		case TokenColon:
		case TokenEOF:
			return Value{}, p.unexpectedEOF("expecting ':'")
		default:
			return Value{}, p.lex.errorf(ExpectedColon, tok.Offset, "expecting ':', found %s", tok.Kind)
		}

		// Value
		tok, err = p.lex.Next()
		if err != nil {
			return Value{}, err
		}
		val, err := p.parseValue(tok)
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: val})

		// Value separator or end of object
		tok, err = p.lex.Next()
		if err != nil {
			return Value{}, err
		}
		switch tok.Kind {
		case TokenComma:
		case TokenEndObject:
			return Value{kind: KindObject, obj: members}, nil
		case TokenEOF:
			return Value{}, p.unexpectedEOF("expecting ',' or '}'")
		default:
			return Value{}, p.lex.errorf(ExpectedCommaOrBrace, tok.Offset, "expecting ',' or '}', found %s", tok.Kind)
		}

		tok, err = p.lex.Next()
		if err != nil {
			return Value{}, err
		}
	}
}

func (p *parser) parseArray(open Token) (Value, error) {
	if err := p.enter(open); err != nil {
		return Value{}, err
	}
	defer func() { p.curDepth-- }()

	elems := []Value{}

	tok, err := p.lex.Next()
	if err != nil {
		return Value{}, err
	}
	if tok.Kind == TokenEndArray {
		return Value{kind: KindArray, arr: elems}, nil
	}

	for {
		val, err := p.parseValue(tok)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, val)

		tok, err = p.lex.Next()
		if err != nil {
			return Value{}, err
		}
		switch tok.Kind {
		case TokenComma:
		case TokenEndArray:
			return Value{kind: KindArray, arr: elems}, nil
		case TokenEOF:
			return Value{}, p.unexpectedEOF("expecting ',' or ']'")
		default:
			return Value{}, p.lex.errorf(ExpectedCommaOrBracket, tok.Offset, "expecting ',' or ']', found %s", tok.Kind)
		}

		tok, err = p.lex.Next()
		if err != nil {
			return Value{}, err
		}
	}
}

// enter records one more level of nesting for the container opened by tok.
func (p *parser) enter(open Token) error {
	p.curDepth++
	if p.curDepth > p.maxDepth {
		p.curDepth--
		return p.lex.errorf(MaxDepthExceeded, open.Offset, "maximum depth of %d exceeded", p.maxDepth)
	}
	return nil
}

func (p *parser) parseNumber(tok Token) (Value, error) {
	n, err := parseNumber(tok.Text)
	if err != nil {
		if errors.Is(err, jsonnum.ErrRange) {
			return Value{}, p.lex.errorf(InvalidNumber, tok.Offset, "number out of range %s", quoteText([]byte(tok.Text)))
		}
		return Value{}, p.lex.errorf(InvalidNumber, tok.Offset, "malformed number %s", quoteText([]byte(tok.Text)))
	}
	return NumberValue(n), nil
}

func (p *parser) unexpectedEOF(expecting string) error {
	return p.lex.errorf(UnexpectedEOF, len(p.lex.data), "unexpected end of input, %s", expecting)
}
