package strings

import "testing"

func TestValueBuilder_JoinsWithSeparator(t *testing.T) {
	b := NewValueBuilder("|", 0)
	b.Add("a")
	b.Add("b")
	b.Add("c")
	if got := b.String(); got != "a|b|c" {
		t.Fatalf("got %q", got)
	}
	if b.Truncated() {
		t.Fatalf("unexpected truncation")
	}
}

func TestValueBuilder_StopsAtLimit(t *testing.T) {
	b := NewValueBuilder(",", 5)
	if !b.Add("ab") {
		t.Fatalf("expected first add to fit")
	}
	if b.Add("cdefgh") {
		t.Fatalf("expected second add to overflow the limit")
	}
	if !b.Truncated() {
		t.Fatalf("expected builder to report truncation")
	}
	if got := b.String(); got != "ab" {
		t.Fatalf("expected buffer to retain only the fitting value, got %q", got)
	}
}

func TestValueBuilder_Empty(t *testing.T) {
	b := NewValueBuilder(",", 0)
	if b.String() != "" || b.Len() != 0 {
		t.Fatalf("expected empty builder to start blank")
	}
}
