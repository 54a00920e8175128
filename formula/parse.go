package formula

import (
	"io"
	"strings"
	"text/scanner"

	"github.com/pkg/errors"
)

// Parse parses an LTL formula from r. Grammar (lowest to highest
// precedence): <-> , -> , U , | , & , unary (! X G F), atom | ( expr ).
// Atoms are scanner identifiers; "true" and "false" are the constants.
// Grounded on crillab-gophersat/bf/parser.go's text/scanner-based
// recursive descent, extended with the temporal unary operators.
func Parse(r io.Reader) (*Formula, error) {
	var s scanner.Scanner
	s.Init(r)
	s.Mode = scanner.ScanIdents | scanner.ScanInts
	p := &parser{s: s}
	p.scan()
	f, err := p.parseIff()
	if err != nil {
		return nil, errors.Wrap(err, "parse LTL formula")
	}
	if !p.eof {
		return nil, errors.Errorf("unexpected trailing token %q at %s", p.token, p.s.Pos())
	}
	return f, nil
}

// ParseString is a convenience wrapper around Parse for formula literals.
func ParseString(s string) (*Formula, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	s     scanner.Scanner
	eof   bool
	token string
}

func (p *parser) scan() {
	if p.eof {
		return
	}
	p.eof = p.s.Scan() == scanner.EOF
	p.token = p.s.TokenText()
	// text/scanner returns one token per punctuation character, so the
	// "->" and "<->" arrows are reassembled here.
	switch {
	case p.token == "-" && p.s.Peek() == '>':
		p.s.Next()
		p.token = "->"
	case p.token == "<" && p.s.Peek() == '-':
		p.s.Next()
		p.token = "<-"
		if p.s.Peek() == '>' {
			p.s.Next()
			p.token = "<->"
		}
	}
}

func isOperator(tok string) bool {
	switch tok {
	case "<->", "->", "|", "&", "!", "X", "G", "F", "U", ")":
		return true
	}
	return false
}

func (p *parser) parseIff() (*Formula, error) {
	f, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "<->" {
		return f, nil
	}
	p.scan()
	if p.eof {
		return nil, errors.New("unexpected EOF after '<->'")
	}
	g, err := p.parseIff()
	if err != nil {
		return nil, err
	}
	return Iff(f, g), nil
}

func (p *parser) parseImplies() (*Formula, error) {
	f, err := p.parseUntil()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "->" {
		return f, nil
	}
	p.scan()
	if p.eof {
		return nil, errors.New("unexpected EOF after '->'")
	}
	g, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	return Implies(f, g), nil
}

func (p *parser) parseUntil() (*Formula, error) {
	f, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "U" {
		return f, nil
	}
	p.scan()
	if p.eof {
		return nil, errors.New("unexpected EOF after 'U'")
	}
	g, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	return Until(f, g), nil
}

func (p *parser) parseOr() (*Formula, error) {
	f, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for !p.eof && p.token == "|" {
		p.scan()
		if p.eof {
			return nil, errors.New("unexpected EOF after '|'")
		}
		g, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		f = Or(f, g)
	}
	return f, nil
}

func (p *parser) parseAnd() (*Formula, error) {
	f, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for !p.eof && p.token == "&" {
		p.scan()
		if p.eof {
			return nil, errors.New("unexpected EOF after '&'")
		}
		g, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		f = And(f, g)
	}
	return f, nil
}

func (p *parser) parseUnary() (*Formula, error) {
	switch p.token {
	case "!":
		p.scan()
		if p.eof {
			return nil, errors.New("unexpected EOF after '!'")
		}
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not(f), nil
	case "X":
		p.scan()
		f, err := p.parseParenOrUnary()
		if err != nil {
			return nil, err
		}
		return Next(f), nil
	case "G":
		p.scan()
		f, err := p.parseParenOrUnary()
		if err != nil {
			return nil, err
		}
		return Always(f), nil
	case "F":
		p.scan()
		f, err := p.parseParenOrUnary()
		if err != nil {
			return nil, err
		}
		return Eventually(f), nil
	default:
		return p.parseBasic()
	}
}

// parseParenOrUnary lets X/G/F bind either to a parenthesized
// subformula or to another unary expression, e.g. "G F p" or "G(F p)".
func (p *parser) parseParenOrUnary() (*Formula, error) {
	if p.eof {
		return nil, errors.New("unexpected EOF, expected operand")
	}
	return p.parseUnary()
}

func (p *parser) parseBasic() (*Formula, error) {
	if p.eof {
		return nil, errors.New("unexpected EOF, expected expression")
	}
	if isOperator(p.token) {
		return nil, errors.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	if p.token == "(" {
		p.scan()
		f, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		if p.eof || p.token != ")" {
			return nil, errors.Errorf("expected closing parenthesis at %s", p.s.Pos())
		}
		p.scan()
		return f, nil
	}
	switch p.token {
	case "true":
		p.scan()
		return True, nil
	case "false":
		p.scan()
		return False, nil
	default:
		name := p.token
		p.scan()
		return Atom(name), nil
	}
}
