package schema

import "encoding/json"

// Schema is implemented by every structured LLM input and output.
// Embed Base in a struct to satisfy it.
type Schema interface {
	schema()
}

// Stringify renders a Schema as prompt text
func Stringify(s Schema) string {
	if v, ok := s.(String); ok {
		return string(v)
	}
	if v, ok := s.(*String); ok && v != nil {
		return string(*v)
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}
