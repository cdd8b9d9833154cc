package compose

import (
	_ "embed"
	"fmt"
	"image"

	"gopkg.in/yaml.v3"

	apperrors "github.com/mgetnet/faydagen/internal/errors"
)

//go:embed layout.yaml
var defaultLayoutYAML []byte

// SizeClass selects one of the pre-loaded font sizes.
type SizeClass string

const (
	SizeLarge  SizeClass = "large"
	SizeMedium SizeClass = "medium"
	SizeSmall  SizeClass = "small"
)

// FieldBox places one schema field on the canvas.
type FieldBox struct {
	X          float64   `yaml:"x"`
	Y          float64   `yaml:"y"`
	Size       SizeClass `yaml:"size"`
	Bilingual  bool      `yaml:"bilingual"`
	LineOffset float64   `yaml:"line_offset"`
	MaxChars   int       `yaml:"max_chars"`
	WrapLines  int       `yaml:"wrap_lines"`
	WrapChars  int       `yaml:"wrap_chars"`
}

// Rect is a source crop rectangle.
type Rect struct {
	X0 int `yaml:"x0"`
	Y0 int `yaml:"y0"`
	X1 int `yaml:"x1"`
	Y1 int `yaml:"y1"`
}

func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X0, r.Y0, r.X1, r.Y1)
}

// Box is a destination region on the canvas.
type Box struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// CropSpec pairs a source crop with its destination region.
type CropSpec struct {
	Src Rect `yaml:"src"`
	Dst Box  `yaml:"dst"`
}

// RotatedSpec describes the single vertically rendered field.
type RotatedSpec struct {
	Field    string    `yaml:"field"`
	X        int       `yaml:"x"`
	Y        int       `yaml:"y"`
	Size     SizeClass `yaml:"size"`
	MaxChars int       `yaml:"max_chars"`
}

// Canvas carries the expected template dimensions for validation.
type Canvas struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Layout is the static, versioned table governing where every field and
// image region lands. It is parsed once and read-only during composition.
type Layout struct {
	Version int                 `yaml:"version"`
	Canvas  Canvas              `yaml:"canvas"`
	Fields  map[string]FieldBox `yaml:"fields"`
	Photo   CropSpec            `yaml:"photo"`
	QR      CropSpec            `yaml:"qr"`
	Rotated RotatedSpec         `yaml:"rotated"`
}

// DefaultLayout parses the embedded layout table.
func DefaultLayout() (Layout, error) {
	return ParseLayout(defaultLayoutYAML)
}

// ParseLayout parses and validates a layout table.
func ParseLayout(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, apperrors.Wrap(err, apperrors.ErrLayoutInvalid.Code, "layout table parse failed")
	}
	if err := l.validate(); err != nil {
		return Layout{}, apperrors.Wrap(err, apperrors.ErrLayoutInvalid.Code, "layout table invalid")
	}
	return l, nil
}

func (l Layout) validate() error {
	if l.Version <= 0 {
		return fmt.Errorf("missing version")
	}
	if len(l.Fields) == 0 {
		return fmt.Errorf("no fields declared")
	}
	for name, box := range l.Fields {
		if box.Size == "" {
			return fmt.Errorf("field %s: missing size class", name)
		}
		switch box.Size {
		case SizeLarge, SizeMedium, SizeSmall:
		default:
			return fmt.Errorf("field %s: unknown size class %q", name, box.Size)
		}
		if box.Bilingual && box.LineOffset <= 0 {
			return fmt.Errorf("field %s: bilingual without line_offset", name)
		}
		if box.WrapLines > 0 && box.WrapChars <= 0 {
			return fmt.Errorf("field %s: wrap_lines without wrap_chars", name)
		}
	}
	if l.Rotated.Field == "" {
		return fmt.Errorf("missing rotated field")
	}
	if _, clash := l.Fields[l.Rotated.Field]; clash {
		return fmt.Errorf("rotated field %s also placed horizontally", l.Rotated.Field)
	}
	if l.Photo.Dst.W <= 0 || l.Photo.Dst.H <= 0 || l.QR.Dst.W <= 0 || l.QR.Dst.H <= 0 {
		return fmt.Errorf("photo/qr destination boxes must have positive size")
	}
	return nil
}
