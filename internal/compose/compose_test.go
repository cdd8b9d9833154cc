package compose

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/mgetnet/faydagen/internal/errors"
	"github.com/mgetnet/faydagen/internal/extract"
)

// writeTestImage writes a deterministic gradient so pixel comparisons can
// detect any drawing.
func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 251), G: uint8(y % 241), B: 200, A: 255})
		}
	}
	require.NoError(t, imaging.Save(img, path))
}

func newTestCompositor(t *testing.T) (*Compositor, string) {
	t.Helper()
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.png")
	writeTestImage(t, templatePath, 1011, 639)

	layout, err := DefaultLayout()
	require.NoError(t, err)

	c, err := New(templatePath, filepath.Join(dir, "no-font.ttf"), layout, zap.NewNop())
	require.NoError(t, err)
	return c, templatePath
}

func imagesEqual(a, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	bounds := a.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				return false
			}
		}
	}
	return true
}

func TestNewMissingTemplate(t *testing.T) {
	layout, err := DefaultLayout()
	require.NoError(t, err)

	_, err = New(filepath.Join(t.TempDir(), "absent.png"), "font.ttf", layout, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTemplateMissing.Code, apperrors.GetCode(err))
}

func TestComposeEmptySchemaLeavesTemplateUntouched(t *testing.T) {
	c, templatePath := newTestCompositor(t)
	outPath := filepath.Join(t.TempDir(), "out.png")

	// Nonexistent photo source: cosmetic regions are skipped, so nothing
	// at all should be drawn.
	result, err := c.Compose(extract.Fields{}, filepath.Join(t.TempDir(), "absent.png"), outPath)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"photo", "qr"}, result.SkippedRegions)

	template, err := imaging.Open(templatePath)
	require.NoError(t, err)
	out, err := imaging.Open(outPath)
	require.NoError(t, err)

	assert.True(t, imagesEqual(template, out), "empty schema must not alter the template")
}

func TestComposePartialDegradation(t *testing.T) {
	c, templatePath := newTestCompositor(t)
	dir := t.TempDir()

	// Source too small for the crop rectangles.
	photoPath := filepath.Join(dir, "photo.png")
	writeTestImage(t, photoPath, 64, 64)

	fields := extract.Fields{
		FullName:        "አበበ ቀለሙ | Abebe Kelemu",
		IDNumberPrimary: "5035928936970958",
		DateOfBirth:     "12/03/1985",
		IssueDate:       "01/06/2022",
	}

	outPath := filepath.Join(dir, "out.png")
	result, err := c.Compose(fields, photoPath, outPath)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"photo", "qr"}, result.SkippedRegions)

	template, err := imaging.Open(templatePath)
	require.NoError(t, err)
	out, err := imaging.Open(outPath)
	require.NoError(t, err)

	assert.Equal(t, template.Bounds(), out.Bounds())
	assert.False(t, imagesEqual(template, out), "text fields must still be drawn")
}

func TestComposePastesCrops(t *testing.T) {
	c, templatePath := newTestCompositor(t)
	dir := t.TempDir()

	photoPath := filepath.Join(dir, "photo.png")
	writeTestImage(t, photoPath, 900, 720)

	outPath := filepath.Join(dir, "out.png")
	result, err := c.Compose(extract.Fields{}, photoPath, outPath)
	require.NoError(t, err)
	assert.Empty(t, result.SkippedRegions)

	template, err := imaging.Open(templatePath)
	require.NoError(t, err)
	out, err := imaging.Open(outPath)
	require.NoError(t, err)

	assert.False(t, imagesEqual(template, out), "photo and qr regions must be pasted")
}

func TestComposeOutputMatchesTemplateSize(t *testing.T) {
	c, templatePath := newTestCompositor(t)
	outPath := filepath.Join(t.TempDir(), "out.png")

	_, err := c.Compose(extract.SampleFields(), filepath.Join(t.TempDir(), "absent.png"), outPath)
	require.NoError(t, err)

	template, err := imaging.Open(templatePath)
	require.NoError(t, err)
	out, err := imaging.Open(outPath)
	require.NoError(t, err)
	assert.Equal(t, template.Bounds(), out.Bounds())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcde", truncate("abcdefgh", 5))
	assert.Equal(t, "abcdefgh", truncate("abcdefgh", 0))
	assert.Equal(t, "አበበ", truncate("አበበ ቀለሙ", 3))
}

func TestWrapWords(t *testing.T) {
	lines := wrapWords("Addis Ababa Bole Subcity Woreda 03", 12, 5)
	assert.Equal(t, []string{"Addis Ababa", "Bole Subcity", "Woreda 03"}, lines)
}

func TestWrapWordsCapsLines(t *testing.T) {
	lines := wrapWords("a b c d e f g h i j k l", 1, 5)
	assert.Len(t, lines, 5)
}

func TestWrapWordsLongWordAlone(t *testing.T) {
	lines := wrapWords("supercalifragilistic ab", 8, 5)
	assert.Equal(t, []string{"supercalifragilistic", "ab"}, lines)
}
