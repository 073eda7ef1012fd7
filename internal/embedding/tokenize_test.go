package embedding

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \t\n ", nil},
		{"lowercases", "Paris FRANCE", []string{"paris", "france"}},
		{"drops short tokens", "it is an egg", []string{"egg"}},
		{"splits on punctuation", "what's the capital-city of France?", []string{"what", "the", "capital", "city", "france"}},
		{"digits kept", "room 1234 open", []string{"1234", "open"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
