package jsonvalue

import (
	"fmt"
	"strings"
)

// SyntaxKind identifies a node of a syntax tree.
type SyntaxKind uint8

// Syntax node kinds.  Root, Object, Array and Member nodes have children;
// Whitespace and Token nodes are leaves that carry source text.
const (
	SyntaxRoot SyntaxKind = iota
	SyntaxObject
	SyntaxArray
	SyntaxMember
	SyntaxWhitespace
	SyntaxToken
)

func (k SyntaxKind) String() string {
	switch k {
	case SyntaxRoot:
		return "Root"
	case SyntaxObject:
		return "Object"
	case SyntaxArray:
		return "Array"
	case SyntaxMember:
		return "Member"
	case SyntaxWhitespace:
		return "Whitespace"
	case SyntaxToken:
		return "Token"
	}
	return fmt.Sprintf("SyntaxKind(%d)", uint8(k))
}

// SyntaxNode is one node of a lossless syntax tree.  Every byte of the parsed
// input belongs to exactly one leaf, and leaves appear in source order, so
// String reproduces the input exactly.
//
// White space, including a leading UTF-8 byte-order mark, is kept as
// SyntaxWhitespace leaves in the node that encloses it.  A member's key,
// colon and value are children of its SyntaxMember node; the commas between
// members and elements are children of the container.
type SyntaxNode struct {
	Kind SyntaxKind

	// Token is the lexical kind of a SyntaxToken leaf.
	Token TokenKind

	// Offset is the byte offset where the node's text starts.
	Offset int

	// Text is the source text of a leaf.  String tokens keep their quotes and
	// escapes.
	Text string

	Children []*SyntaxNode
}

// ParseSyntax parses data into a lossless syntax tree.  It accepts exactly the
// inputs Parse accepts, under the same ParseOptions, and reports the same
// errors.
func ParseSyntax(data []byte, opts ParseOptions) (*SyntaxNode, error) {
	if opts.MaxSize > 0 && len(data) > opts.MaxSize {
		return nil, newParseError(data, MaxSizeExceeded, opts.MaxSize,
			fmt.Sprintf("input of %d bytes exceeds maximum size of %d bytes", len(data), opts.MaxSize))
	}

	p := syntaxParser{parser: parser{maxDepth: opts.maxDepth()}}
	p.lex.reset(data)

	root := &SyntaxNode{Kind: SyntaxRoot}
	tok, err := p.next(root)
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokenEOF {
		return nil, p.lex.errorf(UnexpectedEOF, tok.Offset, "empty input")
	}
	if err := p.parseValue(root, tok); err != nil {
		return nil, err
	}

	if !p.lex.atEOF() {
		return nil, p.lex.errorf(TrailingData, p.lex.pos, "unexpected data after top-level value, starting with %s", quoteText(data[p.lex.pos:]))
	}
	if p.end < len(data) {
		root.Children = append(root.Children, &SyntaxNode{Kind: SyntaxWhitespace, Offset: p.end, Text: string(data[p.end:])})
	}
	return root, nil
}

// syntaxParser follows the grammar of parser but records every token and the
// white space before it instead of building Values.
type syntaxParser struct {
	parser
	end int
}

// next reads a token and appends the white space before it to parent.
func (p *syntaxParser) next(parent *SyntaxNode) (Token, error) {
	tok, err := p.lex.Next()
	if err != nil {
		return tok, err
	}
	if tok.Offset > p.end {
		parent.Children = append(parent.Children, &SyntaxNode{
			Kind:   SyntaxWhitespace,
			Offset: p.end,
			Text:   string(p.lex.data[p.end:tok.Offset]),
		})
	}
	p.end = p.lex.pos
	if tok.Kind == TokenEOF {
		p.end = tok.Offset
	}
	return tok, nil
}

// leaf appends tok, with its source text, to parent.
func (p *syntaxParser) leaf(parent *SyntaxNode, tok Token) {
	parent.Children = append(parent.Children, &SyntaxNode{
		Kind:   SyntaxToken,
		Token:  tok.Kind,
		Offset: tok.Offset,
		Text:   string(p.lex.data[tok.Offset:p.end]),
	})
}

func (p *syntaxParser) parseValue(parent *SyntaxNode, tok Token) error {
	switch tok.Kind {
	case TokenBeginObject:
		return p.parseObject(parent, tok)
	case TokenBeginArray:
		return p.parseArray(parent, tok)
	case TokenNumber:
		if _, err := p.parser.parseNumber(tok); err != nil {
			return err
		}
	case TokenString, TokenTrue, TokenFalse, TokenNull:
	case TokenEOF:
		return p.unexpectedEOF("expecting value")
	default:
		return p.lex.errorf(ExpectedValue, tok.Offset, "expecting value, found %s", tok.Kind)
	}
	p.leaf(parent, tok)
	return nil
}

func (p *syntaxParser) parseObject(parent *SyntaxNode, open Token) error {
	if err := p.enter(open); err != nil {
		return err
	}
	defer func() { p.curDepth-- }()

	obj := &SyntaxNode{Kind: SyntaxObject, Offset: open.Offset}
	parent.Children = append(parent.Children, obj)
	p.leaf(obj, open)

	tok, err := p.next(obj)
	if err != nil {
		return err
	}
	if tok.Kind == TokenEndObject {
		p.leaf(obj, tok)
		return nil
	}

	for {
		switch tok.Kind {
		case TokenString:
		case TokenEOF:
			return p.unexpectedEOF("expecting key")
		default:
			return p.lex.errorf(ExpectedKey, tok.Offset, "expecting key, found %s", tok.Kind)
		}
		member := &SyntaxNode{Kind: SyntaxMember, Offset: tok.Offset}
		obj.Children = append(obj.Children, member)
		p.leaf(member, tok)

		tok, err = p.next(member)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokenColon:
		case TokenEOF:
			return p.unexpectedEOF("expecting ':'")
		default:
			return p.lex.errorf(ExpectedColon, tok.Offset, "expecting ':', found %s", tok.Kind)
		}
		p.leaf(member, tok)

		tok, err = p.next(member)
		if err != nil {
			return err
		}
		if err := p.parseValue(member, tok); err != nil {
			return err
		}

		tok, err = p.next(obj)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokenComma:
		case TokenEndObject:
			p.leaf(obj, tok)
			return nil
		case TokenEOF:
			return p.unexpectedEOF("expecting ',' or '}'")
		default:
			return p.lex.errorf(ExpectedCommaOrBrace, tok.Offset, "expecting ',' or '}', found %s", tok.Kind)
		}
		p.leaf(obj, tok)

		tok, err = p.next(obj)
		if err != nil {
			return err
		}
	}
}

func (p *syntaxParser) parseArray(parent *SyntaxNode, open Token) error {
	if err := p.enter(open); err != nil {
		return err
	}
	defer func() { p.curDepth-- }()

	arr := &SyntaxNode{Kind: SyntaxArray, Offset: open.Offset}
	parent.Children = append(parent.Children, arr)
	p.leaf(arr, open)

	tok, err := p.next(arr)
	if err != nil {
		return err
	}
	if tok.Kind == TokenEndArray {
		p.leaf(arr, tok)
		return nil
	}

	for {
		if err := p.parseValue(arr, tok); err != nil {
			return err
		}

		tok, err = p.next(arr)
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokenComma:
		case TokenEndArray:
			p.leaf(arr, tok)
			return nil
		case TokenEOF:
			return p.unexpectedEOF("expecting ',' or ']'")
		default:
			return p.lex.errorf(ExpectedCommaOrBracket, tok.Offset, "expecting ',' or ']', found %s", tok.Kind)
		}
		p.leaf(arr, tok)

		tok, err = p.next(arr)
		if err != nil {
			return err
		}
	}
}

// Walk visits n and its descendants in preorder.  If fn returns false for a
// node, that node's children are skipped.
func (n *SyntaxNode) Walk(fn func(*SyntaxNode) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// String returns the source text covered by n.  For a root node this is the
// complete input.
func (n *SyntaxNode) String() string {
	var sb strings.Builder
	n.Walk(func(c *SyntaxNode) bool {
		sb.WriteString(c.Text)
		return true
	})
	return sb.String()
}

// Value converts the tree rooted at n to a Value.  Whitespace is dropped and
// strings and numbers are decoded as Parse would decode them.
func (n *SyntaxNode) Value() (Value, error) {
	switch n.Kind {
	case SyntaxRoot, SyntaxMember:
		// The value is the last child that holds one; a member's key comes
		// first.
		for i := len(n.Children) - 1; i >= 0; i-- {
			if c := n.Children[i]; c.holdsValue() && (n.Kind == SyntaxRoot || i > 0) {
				return c.Value()
			}
		}
		return Value{}, fmt.Errorf("%s node has no value", n.Kind)
	case SyntaxArray:
		elems := []Value{}
		for _, c := range n.Children {
			if !c.holdsValue() {
				continue
			}
			v, err := c.Value()
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return Value{kind: KindArray, arr: elems}, nil
	case SyntaxObject:
		members := []Member{}
		for _, c := range n.Children {
			if c.Kind != SyntaxMember || len(c.Children) == 0 {
				continue
			}
			key, err := c.Children[0].Value()
			if err != nil {
				return Value{}, err
			}
			val, err := c.Value()
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: key.str, Value: val})
		}
		return Value{kind: KindObject, obj: members}, nil
	case SyntaxToken:
		if n.holdsValue() {
			return Unmarshal([]byte(n.Text))
		}
		return Value{}, fmt.Errorf("%s token is not a value", n.Token)
	}
	return Value{}, fmt.Errorf("%s node is not a value", n.Kind)
}

// holdsValue reports whether n is a container or a scalar token.
func (n *SyntaxNode) holdsValue() bool {
	switch n.Kind {
	case SyntaxObject, SyntaxArray:
		return true
	case SyntaxToken:
		switch n.Token {
		case TokenString, TokenNumber, TokenTrue, TokenFalse, TokenNull:
			return true
		}
	}
	return false
}
