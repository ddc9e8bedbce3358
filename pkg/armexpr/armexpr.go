// Package armexpr recognises the small subset of ARM template expressions that
// appear in resource names: parameter references and format() calls whose
// arguments are string literals.
package armexpr

import (
	"strconv"
	"strings"
)

type Kind int

const (
	KindLiteral Kind = iota
	KindParameterRef
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindParameterRef:
		return "ParameterRef"
	case KindFormat:
		return "Format"
	default:
		return "Literal"
	}
}

// Expr is the parse result. Value holds the raw text for literals and the
// parameter name for parameter references. Template and Args are set for
// format expressions only.
type Expr struct {
	Kind     Kind
	Value    string
	Template string
	Args     []string
}

// Render substitutes {0}, {1}, ... in the template with args.
func (e Expr) Render(args []string) string {
	out := e.Template
	for i, a := range args {
		out = strings.ReplaceAll(out, "{"+strconv.Itoa(i)+"}", a)
	}
	return out
}

// IsExpression reports whether raw is a bracketed template expression.
// A leading "[[" is the ARM escape for a literal bracket.
func IsExpression(raw string) bool {
	s := strings.TrimSpace(raw)
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' && !strings.HasPrefix(s, "[[")
}

// Parse never fails: anything that is not a recognised parameter reference or
// literal-only format call is returned as a literal.
func Parse(raw string) Expr {
	literal := Expr{Kind: KindLiteral, Value: raw}
	if !IsExpression(raw) {
		return literal
	}

	s := strings.TrimSpace(raw)
	p := &parser{src: s[1 : len(s)-1]}
	call, ok := p.call()
	if !ok || !p.atEnd() || call.accessed {
		return literal
	}

	switch strings.ToLower(call.fn) {
	case "parameters":
		if len(call.args) == 1 && call.args[0].isString {
			return Expr{Kind: KindParameterRef, Value: call.args[0].str}
		}
	case "format":
		if len(call.args) < 2 {
			return literal
		}
		strs := make([]string, 0, len(call.args))
		for _, a := range call.args {
			if !a.isString {
				return literal
			}
			strs = append(strs, a.str)
		}
		return Expr{Kind: KindFormat, Template: strs[0], Args: strs[1:]}
	}
	return literal
}

type argument struct {
	isString bool
	str      string
}

type callExpr struct {
	fn       string
	args     []argument
	accessed bool // followed by .prop or [index]
}

// parser is a tiny recursive-descent reader over the expression body.
// Nested calls are consumed but reported as non-string arguments.
type parser struct {
	src string
	pos int
}

func (p *parser) atEnd() bool {
	p.skipSpace()
	return p.pos >= len(p.src)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) ident() (string, bool) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9' && p.pos > start) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos], p.pos > start
}

// str reads a single-quoted literal; a doubled quote is an escaped quote.
func (p *parser) str() (string, bool) {
	p.skipSpace()
	if p.peek() != '\'' {
		return "", false
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\'' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
				b.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return b.String(), true
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", false
}

func (p *parser) call() (callExpr, bool) {
	fn, ok := p.ident()
	if !ok {
		return callExpr{}, false
	}
	p.skipSpace()
	if p.peek() != '(' {
		return callExpr{}, false
	}
	p.pos++

	c := callExpr{fn: fn}
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return p.finish(c)
	}
	for {
		arg, ok := p.argument()
		if !ok {
			return callExpr{}, false
		}
		c.args = append(c.args, arg)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return p.finish(c)
		default:
			return callExpr{}, false
		}
	}
}

func (p *parser) argument() (argument, bool) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '\'':
		s, ok := p.str()
		return argument{isString: true, str: s}, ok
	case c == '-' || (c >= '0' && c <= '9'):
		start := p.pos
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		return argument{str: p.src[start:p.pos]}, true
	default:
		_, ok := p.call()
		return argument{}, ok
	}
}

// finish consumes trailing ".prop" and "[expr]" accessors such as
// resourceGroup().location or parameters('x')[0].
func (p *parser) finish(c callExpr) (callExpr, bool) {
	for {
		p.skipSpace()
		switch p.peek() {
		case '.':
			p.pos++
			if _, ok := p.ident(); !ok {
				return callExpr{}, false
			}
		case '[':
			p.pos++
			if _, ok := p.argument(); !ok {
				return callExpr{}, false
			}
			p.skipSpace()
			if p.peek() != ']' {
				return callExpr{}, false
			}
			p.pos++
		default:
			return c, true
		}
		c.accessed = true
	}
}
