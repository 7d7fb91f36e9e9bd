package pathexp

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"
)

// ErrSyntax is matched by every template compilation error.
var ErrSyntax = errors.New("pathexp: invalid template")

// SyntaxError describes a template that cannot be compiled.
type SyntaxError struct {
	Template string
	// Offset is the byte offset of the problem within Template.
	Offset int
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pathexp: %s at offset %d in %q", e.Msg, e.Offset, e.Template)
}

// Is reports ErrSyntax as a match.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Options control how a template is compiled.
type Options struct {
	CaseSensitive bool
	Strict        bool
}

// Group describes one capturing group of a compiled template.
type Group struct {
	// Name is empty for positional groups.
	Name     string
	Optional bool
}

// Positional reports whether the group has no name.
func (g Group) Positional() bool {
	return g.Name == ""
}

// Capture is the value of one group in a match.
type Capture struct {
	Value string
	// Matched is false when an optional group did not participate.
	Matched bool
}

// Matcher is a compiled template. It is immutable and safe for concurrent use.
type Matcher struct {
	template string
	re       *regexp.Regexp
	groups   []Group
}

// Compile turns a template into a Matcher.
func Compile(template string, opts Options) (*Matcher, error) {
	c := &compiler{src: template}
	expr, err := c.compile(opts)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &SyntaxError{Template: template, Msg: "invalid expression", Err: err}
	}
	if re.NumSubexp() != len(c.groups) {
		return nil, &SyntaxError{
			Template: template,
			Msg:      fmt.Sprintf("expected %d capturing groups, got %d", len(c.groups), re.NumSubexp()),
		}
	}

	return &Matcher{template: template, re: re, groups: c.groups}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(template string, opts Options) *Matcher {
	m, err := Compile(template, opts)
	if err != nil {
		panic(err)
	}
	return m
}

// Exec matches s against the template. It returns nil when s does not match.
func (m *Matcher) Exec(s string) []Capture {
	idx := m.re.FindStringSubmatchIndex(s)
	if idx == nil {
		return nil
	}

	caps := make([]Capture, len(idx)/2)
	for i := range caps {
		lo, hi := idx[2*i], idx[2*i+1]
		if lo < 0 {
			continue
		}
		caps[i] = Capture{Value: s[lo:hi], Matched: true}
	}
	return caps
}

// MatchString reports whether s matches the template.
func (m *Matcher) MatchString(s string) bool {
	return m.re.MatchString(s)
}

// Groups returns the capturing groups in template order.
func (m *Matcher) Groups() []Group {
	out := make([]Group, len(m.groups))
	copy(out, m.groups)
	return out
}

// Names returns the names of the named groups in template order.
func (m *Matcher) Names() []string {
	var names []string
	for _, g := range m.groups {
		if !g.Positional() {
			names = append(names, g.Name)
		}
	}
	return names
}

// Template returns the source template.
func (m *Matcher) Template() string {
	return m.template
}

// String returns the compiled regular expression.
func (m *Matcher) String() string {
	return m.re.String()
}

type compiler struct {
	src    string
	pos    int
	out    strings.Builder
	lit    []byte
	groups []Group
}

func (c *compiler) compile(opts Options) (string, error) {
	if !opts.CaseSensitive {
		c.out.WriteString("(?i)")
	}
	c.out.WriteString("^")

	for c.pos < len(c.src) {
		ch := c.src[c.pos]
		switch ch {
		case '\\':
			if c.pos+1 >= len(c.src) {
				return "", c.errorf(c.pos, "trailing backslash")
			}
			c.flush()
			c.out.WriteString(regexp.QuoteMeta(c.src[c.pos+1 : c.pos+2]))
			c.pos += 2

		case ':':
			if c.pos+1 < len(c.src) && isNameByte(c.src[c.pos+1]) {
				if err := c.param(); err != nil {
					return "", err
				}
				continue
			}
			c.lit = append(c.lit, ch)
			c.pos++

		case '(':
			body, err := c.group()
			if err != nil {
				return "", err
			}
			optional := c.consume('?')
			c.flush()
			c.out.WriteString("(" + body + ")")
			if optional {
				c.out.WriteString("?")
			}
			c.groups = append(c.groups, Group{Optional: optional})

		case ')':
			return "", c.errorf(c.pos, "unbalanced ')'")

		case '*':
			c.flush()
			c.out.WriteString("(.*)")
			c.groups = append(c.groups, Group{})
			c.pos++

		default:
			c.lit = append(c.lit, ch)
			c.pos++
		}
	}

	if !opts.Strict {
		if n := len(c.lit); n > 0 && c.lit[n-1] == '/' {
			c.lit = c.lit[:n-1]
		}
		c.flush()
		c.out.WriteString("/?")
	} else {
		c.flush()
	}
	c.out.WriteString("$")

	return c.out.String(), nil
}

// param compiles ":name", ":name(re)" and their optional "?" forms. The "/"
// and "." directly before the colon belong to the parameter so an optional
// parameter takes its separator with it.
func (c *compiler) param() error {
	c.pos++ // ':'
	start := c.pos
	for c.pos < len(c.src) && isNameByte(c.src[c.pos]) {
		c.pos++
	}
	name := c.src[start:c.pos]

	var format, slash string
	if n := len(c.lit); n > 0 && c.lit[n-1] == '.' {
		format = `\.`
		c.lit = c.lit[:n-1]
	}
	if n := len(c.lit); n > 0 && c.lit[n-1] == '/' {
		slash = "/"
		c.lit = c.lit[:n-1]
	}

	capture := `([^/]+?)`
	if format != "" {
		capture = `([^/.]+?)`
	}
	if c.pos < len(c.src) && c.src[c.pos] == '(' {
		body, err := c.group()
		if err != nil {
			return err
		}
		capture = "(" + body + ")"
	}
	optional := c.consume('?')

	c.flush()
	if optional {
		c.out.WriteString("(?:" + slash + format + capture + ")?")
	} else {
		c.out.WriteString(slash + "(?:" + format + capture + ")")
	}
	c.groups = append(c.groups, Group{Name: name, Optional: optional})
	return nil
}

// group reads a parenthesized expression starting at c.pos and returns its
// body. Nested parentheses must be non-capturing.
func (c *compiler) group() (string, error) {
	open := c.pos
	depth := 0
	inClass := false

	for c.pos < len(c.src) {
		ch := c.src[c.pos]
		switch {
		case ch == '\\':
			c.pos++
		case inClass:
			if ch == ']' {
				inClass = false
			}
		case ch == '[':
			inClass = true
		case ch == '(':
			depth++
		case ch == ')':
			depth--
			if depth == 0 {
				body := c.src[open+1 : c.pos]
				c.pos++
				return body, c.checkGroup(body, open)
			}
		}
		c.pos++
	}

	return "", c.errorf(open, "unterminated group")
}

func (c *compiler) checkGroup(body string, offset int) error {
	if body == "" {
		return c.errorf(offset, "empty group")
	}
	re, err := syntax.Parse(body, syntax.Perl)
	if err != nil {
		return &SyntaxError{Template: c.src, Offset: offset, Msg: "invalid group expression", Err: err}
	}
	if re.MaxCap() > 0 {
		return c.errorf(offset, "capturing group inside group; use (?:...)")
	}
	return nil
}

func (c *compiler) consume(ch byte) bool {
	if c.pos < len(c.src) && c.src[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *compiler) flush() {
	if len(c.lit) == 0 {
		return
	}
	c.out.WriteString(regexp.QuoteMeta(string(c.lit)))
	c.lit = c.lit[:0]
}

func (c *compiler) errorf(offset int, format string, args ...any) error {
	return &SyntaxError{Template: c.src, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func isNameByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}
