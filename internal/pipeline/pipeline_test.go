package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mgetnet/faydagen/internal/compose"
	"github.com/mgetnet/faydagen/internal/metrics"
	"github.com/mgetnet/faydagen/internal/ocr"
)

func writeTemplate(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1011, 639))
	for y := 0; y < 639; y++ {
		for x := 0; x < 1011; x++ {
			img.Set(x, y, color.NRGBA{R: 240, G: 240, B: 235, A: 255})
		}
	}
	path := filepath.Join(dir, "template.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func newTestPipeline(t *testing.T, provider ocr.Provider, opts Options) *Pipeline {
	t.Helper()
	dir := t.TempDir()
	layout, err := compose.DefaultLayout()
	require.NoError(t, err)
	compositor, err := compose.New(writeTemplate(t, dir), filepath.Join(dir, "no-font.ttf"), layout, zap.NewNop())
	require.NoError(t, err)
	return New(provider, compositor, opts, zap.NewNop(), metrics.New())
}

func dummyImages(t *testing.T) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 3)
	for i, name := range []string{"front.png", "back.png", "photo.png"} {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte("img"), 0644))
	}
	return paths[0], paths[1], paths[2]
}

func TestRunExtractsAndComposes(t *testing.T) {
	front, back, photo := dummyImages(t)
	provider := &ocr.MockProvider{Texts: map[string]string{
		front: "Full Name\nABC | John Doe\nDate of Birth: 12/03/1985",
		back:  "FCN 5035 9289 3697 0958\nPhone: 0911 223 344",
	}}

	p := newTestPipeline(t, provider, Options{})
	outPath := filepath.Join(t.TempDir(), "card.png")

	result, err := p.Run(context.Background(), front, back, photo, outPath)
	require.NoError(t, err)

	assert.Equal(t, "ABC | John Doe", result.Fields.FullName)
	assert.Equal(t, "5035928936970958", result.Fields.IDNumberPrimary)
	assert.Equal(t, "12/03/1985", result.Fields.DateOfBirth)
	assert.Equal(t, "0911223344", result.Fields.Phone)
	assert.False(t, result.Synthetic)

	_, statErr := os.Stat(outPath)
	assert.NoError(t, statErr, "output card must exist")

	// The photo page is not a decodable image: cosmetic regions skipped,
	// run still succeeds.
	assert.ElementsMatch(t, []string{"photo", "qr"}, result.SkippedRegions)
}

func TestRunFrontBackOrderPreserved(t *testing.T) {
	front, back, photo := dummyImages(t)
	// The same field appears on both pages; the front page value must win.
	provider := &ocr.MockProvider{Texts: map[string]string{
		front: "Date of Birth: 01/02/1990",
		back:  "Date of Birth: 03/04/1991",
	}}

	p := newTestPipeline(t, provider, Options{})
	result, err := p.Run(context.Background(), front, back, photo, filepath.Join(t.TempDir(), "card.png"))
	require.NoError(t, err)
	assert.Equal(t, "01/02/1990", result.Fields.DateOfBirth)
}

func TestRunOCRFailureIsFatal(t *testing.T) {
	front, back, photo := dummyImages(t)
	provider := &ocr.MockProvider{Err: errors.New("service down")}

	p := newTestPipeline(t, provider, Options{})
	outPath := filepath.Join(t.TempDir(), "card.png")

	_, err := p.Run(context.Background(), front, back, photo, outPath)
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no partial output on failure")
}

func TestRunEmptyOCRTextIsNotFatal(t *testing.T) {
	front, back, photo := dummyImages(t)
	provider := &ocr.MockProvider{}

	p := newTestPipeline(t, provider, Options{})
	result, err := p.Run(context.Background(), front, back, photo, filepath.Join(t.TempDir(), "card.png"))
	require.NoError(t, err)
	assert.Zero(t, result.Fields.Recovered())
	assert.False(t, result.Synthetic)
}

func TestRunSampleSubstitutionRequiresOptIn(t *testing.T) {
	front, back, photo := dummyImages(t)
	provider := &ocr.MockProvider{Fallback: "nothing useful here"}

	// Default: no fabrication.
	p := newTestPipeline(t, provider, Options{})
	result, err := p.Run(context.Background(), front, back, photo, filepath.Join(t.TempDir(), "a.png"))
	require.NoError(t, err)
	assert.False(t, result.Synthetic)
	assert.Zero(t, result.Fields.Recovered())

	// Explicit opt-in: sample record, clearly flagged.
	p = newTestPipeline(t, provider, Options{UseSampleOnMiss: true})
	result, err = p.Run(context.Background(), front, back, photo, filepath.Join(t.TempDir(), "b.png"))
	require.NoError(t, err)
	assert.True(t, result.Synthetic)
	assert.Contains(t, result.Fields.FullName, "SAMPLE")
}
