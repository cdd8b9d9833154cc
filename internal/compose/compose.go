// Package compose renders extracted fields and image crops onto the card
// template.
package compose

import (
	"image"
	"os"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"go.uber.org/zap"

	apperrors "github.com/mgetnet/faydagen/internal/errors"
	"github.com/mgetnet/faydagen/internal/extract"
)

// ink is the text color drawn onto the template.
var ink = [3]int{28, 28, 32}

// Result reports what a composition run produced. Cosmetic regions may be
// skipped without failing the run.
type Result struct {
	SkippedRegions []string
}

// Compositor renders cards for one template version. It is safe for
// concurrent use: the template, layout and fonts are read-only after New.
type Compositor struct {
	layout   Layout
	template image.Image
	fonts    *FontSet
	logger   *zap.Logger
}

// New loads the template and font assets. A missing or undecodable template
// is fatal; a missing font degrades to the built-in fallback face.
func New(templatePath, fontPath string, layout Layout, logger *zap.Logger) (*Compositor, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTemplateMissing.Code, "card template missing")
	}
	template, err := imaging.Open(templatePath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTemplateMissing.Code, "card template not decodable")
	}

	bounds := template.Bounds()
	if layout.Canvas.Width > 0 && (bounds.Dx() != layout.Canvas.Width || bounds.Dy() != layout.Canvas.Height) {
		logger.Warn("Template dimensions differ from layout canvas",
			zap.Int("template_w", bounds.Dx()), zap.Int("template_h", bounds.Dy()),
			zap.Int("layout_w", layout.Canvas.Width), zap.Int("layout_h", layout.Canvas.Height))
	}

	return &Compositor{
		layout:   layout,
		template: template,
		fonts:    LoadFonts(fontPath, logger),
		logger:   logger,
	}, nil
}

// Compose draws every non-empty field at its layout position, renders the
// rotated field, pastes the photo and QR crops from photoPath, and writes
// the finished card to outPath. The canvas lives in memory until every draw
// has succeeded; a half-composited card is never written. Photo/QR failures
// are tolerated and reported in the Result.
func (c *Compositor) Compose(fields extract.Fields, photoPath, outPath string) (*Result, error) {
	dc := gg.NewContextForImage(c.template)
	dc.SetRGB255(ink[0], ink[1], ink[2])

	fieldMap := fields.Map()

	names := make([]string, 0, len(c.layout.Fields))
	for name := range c.layout.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := fieldMap[name]
		if value == "" {
			continue
		}
		c.drawField(dc, c.layout.Fields[name], value)
	}

	if value := fieldMap[c.layout.Rotated.Field]; value != "" {
		c.drawRotated(dc, value)
	}

	result := &Result{}
	c.pasteCrops(dc, photoPath, result)

	if err := imaging.Save(dc.Image(), outPath); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrOutputWrite.Code, "failed to write output image")
	}
	return result, nil
}

func (c *Compositor) drawField(dc *gg.Context, box FieldBox, value string) {
	dc.SetFontFace(c.fonts.Face(box.Size))

	if box.WrapLines > 0 {
		for i, line := range wrapWords(value, box.WrapChars, box.WrapLines) {
			dc.DrawString(line, box.X, box.Y+float64(i)*box.LineOffset)
		}
		return
	}

	value = truncate(value, box.MaxChars)

	if box.Bilingual {
		local, latin := extract.SplitBilingual(value)
		dc.DrawString(local, box.X, box.Y)
		dc.DrawString(latin, box.X, box.Y+box.LineOffset)
		return
	}

	dc.DrawString(value, box.X, box.Y)
}

// drawRotated renders the vertical field on a scratch canvas, rotates it
// 90 degrees and pastes the result through its own alpha channel. Raster
// text APIs do not draw rotated glyphs onto an existing canvas directly.
func (c *Compositor) drawRotated(dc *gg.Context, value string) {
	spec := c.layout.Rotated
	value = truncate(value, spec.MaxChars)
	face := c.fonts.Face(spec.Size)

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	w, h := measure.MeasureString(value)

	scratch := gg.NewContext(int(w)+8, int(h)+10)
	scratch.SetFontFace(face)
	scratch.SetRGB255(ink[0], ink[1], ink[2])
	scratch.DrawString(value, 4, h+2)

	rotated := imaging.Rotate90(scratch.Image())
	dc.DrawImage(rotated, spec.X, spec.Y)
}

// pasteCrops places the photo and QR regions from the third source image.
// Failures here are cosmetic: the region stays blank, the run continues.
func (c *Compositor) pasteCrops(dc *gg.Context, photoPath string, result *Result) {
	src, err := imaging.Open(photoPath)
	if err != nil {
		c.logger.Warn("Photo source unusable, leaving cosmetic regions blank",
			zap.String("path", photoPath), zap.Error(err))
		result.SkippedRegions = append(result.SkippedRegions, "photo", "qr")
		return
	}

	for _, region := range []struct {
		name string
		spec CropSpec
	}{
		{"photo", c.layout.Photo},
		{"qr", c.layout.QR},
	} {
		if err := c.pasteCrop(dc, src, region.spec); err != nil {
			c.logger.Warn("Crop failed, leaving region blank",
				zap.String("region", region.name), zap.Error(err))
			result.SkippedRegions = append(result.SkippedRegions, region.name)
		}
	}
}

func (c *Compositor) pasteCrop(dc *gg.Context, src image.Image, spec CropSpec) error {
	srcRect := spec.Src.Bounds()
	if !srcRect.In(src.Bounds()) {
		return apperrors.New(apperrors.ErrImageUndecodable.Code, "crop rectangle outside source bounds")
	}

	crop := imaging.Crop(src, srcRect)
	resized := imaging.Resize(crop, spec.Dst.W, spec.Dst.H, imaging.Lanczos)
	dc.DrawImage(resized, spec.Dst.X, spec.Dst.Y)
	return nil
}

func truncate(value string, maxChars int) string {
	if maxChars <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= maxChars {
		return value
	}
	return string(runes[:maxChars])
}

// wrapWords greedily packs words into lines of at most chars characters,
// up to maxLines lines. Words longer than a line are placed alone.
func wrapWords(value string, chars, maxLines int) []string {
	var lines []string
	current := ""

	flush := func() {
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
	}

	for _, word := range strings.Fields(value) {
		switch {
		case current == "":
			current = word
		case len([]rune(current))+1+len([]rune(word)) <= chars:
			current += " " + word
		default:
			flush()
			if len(lines) == maxLines {
				return lines
			}
			current = word
		}
	}
	flush()
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
