package router

// Params holds the parameters captured during one dispatch.
//
// Named captures are looked up by name and follow first-writer-wins.
// Positional captures, from unnamed groups and wildcards, are kept in the
// order they were captured.
type Params struct {
	named      map[string]string
	order      []string
	positional []string
}

// Get returns the named parameter, or "" when it is not bound.
func (p *Params) Get(name string) string {
	return p.named[name]
}

// Lookup returns the named parameter and whether it is bound.
func (p *Params) Lookup(name string) (string, bool) {
	v, ok := p.named[name]
	return v, ok
}

// Bind sets a named parameter unless it is already bound. It reports whether
// the value was stored.
func (p *Params) Bind(name, value string) bool {
	if _, ok := p.named[name]; ok {
		return false
	}
	if p.named == nil {
		p.named = make(map[string]string)
	}
	p.named[name] = value
	p.order = append(p.order, name)
	return true
}

// Append adds a positional capture.
func (p *Params) Append(value string) {
	p.positional = append(p.positional, value)
}

// At returns the i-th positional capture.
func (p *Params) At(i int) (string, bool) {
	if i < 0 || i >= len(p.positional) {
		return "", false
	}
	return p.positional[i], true
}

// Positional returns a copy of the positional captures.
func (p *Params) Positional() []string {
	out := make([]string, len(p.positional))
	copy(out, p.positional)
	return out
}

// Named returns a copy of the named captures.
func (p *Params) Named() map[string]string {
	out := make(map[string]string, len(p.named))
	for k, v := range p.named {
		out[k] = v
	}
	return out
}

// Names returns the bound names in the order they were bound.
func (p *Params) Names() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Len returns the number of named plus positional captures.
func (p *Params) Len() int {
	return len(p.named) + len(p.positional)
}
