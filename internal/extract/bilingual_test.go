package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBilingual(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		local string
		latin string
	}{
		{"separated", "A | B", "A", "B"},
		{"no separator", "A", "A", "A"},
		{"empty", "", "", ""},
		{"amharic", "አበበ ቀለሙ | Abebe Kelemu", "አበበ ቀለሙ", "Abebe Kelemu"},
		{"tight pipe", "አበበ|Abebe", "አበበ", "Abebe"},
		{"broken bar", "አበበ ¦ Abebe", "አበበ", "Abebe"},
		{"empty latin half", "A |", "A", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, latin := SplitBilingual(tt.in)
			assert.Equal(t, tt.local, local)
			assert.Equal(t, tt.latin, latin)
		})
	}
}
