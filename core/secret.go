package core

// Secret holds an API key and keeps it out of logs and rendered output.
// String, GoString, JSON and text marshaling all produce a placeholder.
//
// Use Expose() only where the raw value is required, such as the
// Authorization header:
//
//	key := NewSecret("sk-abc123")
//	fmt.Println(key)  // [REDACTED]
//	key.Expose()      // "sk-abc123"
type Secret struct {
	value string
}

const redacted = "[REDACTED]"

// NewSecret wraps value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	if s.value == "" {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer.
func (s Secret) GoString() string {
	return "core.Secret{" + redacted + "}"
}

// MarshalJSON renders the placeholder, or an empty string when unset.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// MarshalText renders the placeholder. yaml.v3 uses this as well.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Expose returns the raw value.
func (s Secret) Expose() string {
	return s.value
}

// IsZero reports whether no value is set. Encoders use it for omitempty.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// IsEmpty reports whether no value is set.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}
