package router

import "testing"

func TestParams(t *testing.T) {
	var p Params

	if p.Get("missing") != "" {
		t.Error("zero Params should return empty values")
	}
	if _, ok := p.Lookup("missing"); ok {
		t.Error("Lookup on zero Params reported bound")
	}

	if !p.Bind("id", "1") {
		t.Error("first Bind should store")
	}
	if p.Bind("id", "2") {
		t.Error("second Bind should not store")
	}
	if p.Get("id") != "1" {
		t.Errorf("id = %q, want 1", p.Get("id"))
	}
	p.Bind("empty", "")
	if v, ok := p.Lookup("empty"); !ok || v != "" {
		t.Errorf("Lookup(empty) = %q, %v", v, ok)
	}
	if p.Bind("empty", "late") {
		t.Error("empty string binding should still count as bound")
	}

	p.Append("a")
	p.Append("b")
	if v, ok := p.At(1); !ok || v != "b" {
		t.Errorf("At(1) = %q, %v", v, ok)
	}
	if _, ok := p.At(2); ok {
		t.Error("At(2) out of range reported ok")
	}
	if _, ok := p.At(-1); ok {
		t.Error("At(-1) reported ok")
	}

	if p.Len() != 4 {
		t.Errorf("Len() = %d, want 4", p.Len())
	}

	named := p.Named()
	named["id"] = "mutated"
	if p.Get("id") != "1" {
		t.Error("Named() should return a copy")
	}
	pos := p.Positional()
	pos[0] = "mutated"
	if v, _ := p.At(0); v != "a" {
		t.Error("Positional() should return a copy")
	}
	if names := p.Names(); len(names) != 2 || names[0] != "id" || names[1] != "empty" {
		t.Errorf("Names() = %v", names)
	}
}

func TestContextQuery(t *testing.T) {
	tests := []struct {
		path string
		key  string
		want string
	}{
		{"/a?x=1", "x", "1"},
		{"/a?x=1&x=2", "x", "1"},
		{"/a", "x", ""},
		{"/a?q=hello%20world", "q", "hello world"},
		{"/a?bad=%zz", "bad", ""},
	}

	for _, tt := range tests {
		c := &Context{Path: tt.path}
		if got := c.Query().Get(tt.key); got != tt.want {
			t.Errorf("Query(%q).Get(%q) = %q, want %q", tt.path, tt.key, got, tt.want)
		}
	}
}
