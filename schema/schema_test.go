package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringify(t *testing.T) {
	type Answer struct {
		Base
		Text   string   `json:"text"`
		Points []string `json:"points,omitempty"`
	}
	tests := []struct {
		name  string
		input Schema
		want  string
	}{
		{name: "string", input: String("plain text"), want: "plain text"},
		{name: "string pointer", input: NewString("pointer text"), want: "pointer text"},
		{name: "struct", input: Answer{Text: "ok", Points: []string{"a"}}, want: `{"text":"ok","points":["a"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.input))
		})
	}
}
