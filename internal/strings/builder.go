package strings

import "strings"

// ValueBuilder accumulates decoded value strings into a caller-supplied
// buffer, reporting whether the buffer was big enough rather than growing
// without bound (spec.md's get_values_string/write_values_string need a
// bounded write with an explicit "did it fit" signal, mirroring the
// collection reads elsewhere in this module that reject silent truncation).
type ValueBuilder struct {
	sb        strings.Builder
	separator string
	limit     int
	truncated bool
}

// NewValueBuilder creates a builder that joins values with separator and
// refuses to grow past limit bytes (limit <= 0 means unbounded).
func NewValueBuilder(separator string, limit int) *ValueBuilder {
	return &ValueBuilder{separator: separator, limit: limit}
}

// Add appends value, preceded by the separator if this isn't the first
// entry. It returns false (and stops appending further bytes) once adding
// value would exceed the configured limit.
func (b *ValueBuilder) Add(value string) bool {
	if b.truncated {
		return false
	}
	addition := value
	if b.sb.Len() > 0 {
		addition = b.separator + value
	}
	if b.limit > 0 && b.sb.Len()+len(addition) > b.limit {
		b.truncated = true
		return false
	}
	b.sb.WriteString(addition)
	return true
}

// Truncated reports whether at least one Add call was rejected for
// exceeding the configured limit.
func (b *ValueBuilder) Truncated() bool { return b.truncated }

// String returns everything accumulated so far.
func (b *ValueBuilder) String() string { return b.sb.String() }

// Len returns the number of bytes accumulated so far.
func (b *ValueBuilder) Len() int { return b.sb.Len() }
