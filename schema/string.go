package schema

// String is a plain text schema
type String string

// NewString returns a new String pointer
func NewString(v string) *String {
	s := String(v)
	return &s
}

func (String) schema() {}

func (s String) String() string {
	return string(s)
}
