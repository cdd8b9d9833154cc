package compose

import (
	"os"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

var sizePixels = map[SizeClass]float64{
	SizeLarge:  34,
	SizeMedium: 26,
	SizeSmall:  20,
}

// FontSet holds one face per size class. When the bundled font cannot be
// loaded the set degrades to the built-in basicfont rather than aborting;
// the output is ugly but composition still completes.
type FontSet struct {
	faces    map[SizeClass]font.Face
	Fallback bool
}

// LoadFonts parses the font file at path and builds a face per size class.
func LoadFonts(path string, logger *zap.Logger) *FontSet {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Font asset unreadable, using built-in fallback",
			zap.String("path", path), zap.Error(err))
		return fallbackFonts()
	}

	parsed, err := truetype.Parse(data)
	if err != nil {
		logger.Warn("Font asset unparsable, using built-in fallback",
			zap.String("path", path), zap.Error(err))
		return fallbackFonts()
	}

	faces := make(map[SizeClass]font.Face, len(sizePixels))
	for class, px := range sizePixels {
		faces[class] = truetype.NewFace(parsed, &truetype.Options{Size: px})
	}
	return &FontSet{faces: faces}
}

func fallbackFonts() *FontSet {
	faces := make(map[SizeClass]font.Face, len(sizePixels))
	for class := range sizePixels {
		faces[class] = basicfont.Face7x13
	}
	return &FontSet{faces: faces, Fallback: true}
}

// Face returns the face for a size class, defaulting to small for unknown
// classes (the layout validator rejects them before this point).
func (fs *FontSet) Face(class SizeClass) font.Face {
	if face, ok := fs.faces[class]; ok {
		return face
	}
	return fs.faces[SizeSmall]
}
