package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLinesEmpty(t *testing.T) {
	assert.Empty(t, NormalizeLines(""))
	assert.Empty(t, NormalizeLines("   \n\n\t\n  "))
}

func TestNormalizeLinesTrimsAndFilters(t *testing.T) {
	raw := "  Full Name  \n\n\t\nABC   | John Doe\r\n  \r\nlast"

	lines := NormalizeLines(raw)
	assert.Equal(t, []string{"Full Name", "ABC | John Doe", "last"}, lines)
}

func TestNormalizeLinesPreservesOrder(t *testing.T) {
	raw := "b\na\nc\na"

	lines := NormalizeLines(raw)
	assert.Equal(t, []string{"b", "a", "c", "a"}, lines)
}

func TestNormalizeLinesEthiopicPunctuation(t *testing.T) {
	lines := NormalizeLines("ጾታ፥ ወንድ\nሙሉ፡ስም")
	assert.Equal(t, []string{"ጾታ: ወንድ", "ሙሉ ስም"}, lines)
}
