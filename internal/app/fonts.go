package app

import (
	"math"

	"slate/pkg/slate"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type fontKey struct {
	size   int
	bold   bool
	italic bool
	scale  int
}

type fontBank struct {
	regular    *opentype.Font
	bold       *opentype.Font
	italic     *opentype.Font
	boldItalic *opentype.Font
	cache      map[fontKey]font.Face
}

func newFontBank() *fontBank {
	bank := &fontBank{cache: map[fontKey]font.Face{}}
	reg, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return bank
	}
	bol, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return bank
	}
	ita, err := opentype.Parse(goitalic.TTF)
	if err != nil {
		return bank
	}
	bit, err := opentype.Parse(gobolditalic.TTF)
	if err != nil {
		return bank
	}
	bank.regular = reg
	bank.bold = bol
	bank.italic = ita
	bank.boldItalic = bit
	return bank
}

// reset drops all cached faces, e.g. after a UI scale change.
func (b *fontBank) reset() {
	b.cache = map[fontKey]font.Face{}
}

// face returns a cached face at size*scale points. Falls back to the
// bitmap face when the TTFs failed to parse.
func (b *fontBank) face(size int, bold, italic bool, scale float64) font.Face {
	if size <= 0 {
		size = noteDefaultPt
	}
	scaleKey := int(math.Round(scale * 1000))
	key := fontKey{size: size, bold: bold, italic: italic, scale: scaleKey}
	if f, ok := b.cache[key]; ok {
		return f
	}
	var base *opentype.Font
	switch {
	case bold && italic:
		base = b.boldItalic
	case bold:
		base = b.bold
	case italic:
		base = b.italic
	default:
		base = b.regular
	}
	if base == nil {
		return basicfont.Face7x13
	}
	opts := &opentype.FaceOptions{Size: float64(size) * scale, DPI: 72, Hinting: font.HintingFull}
	face, err := opentype.NewFace(base, opts)
	if err != nil {
		return basicfont.Face7x13
	}
	b.cache[key] = face
	return face
}

// attrFace picks the face matching a styled run at the given scale.
func (b *fontBank) attrFace(attr slate.StyleAttr, scale float64) font.Face {
	return b.face(int(attr.FontSizePt), attr.Bold, attr.Italic, scale)
}

// measureString returns approximate pixel width of a string for a face.
func measureString(face font.Face, s string) float64 {
	if face == nil || s == "" {
		return 0
	}
	adv := font.MeasureString(face, s)
	return float64(adv) / 64
}

func faceAscent(face font.Face) float64 {
	return float64(face.Metrics().Ascent) / 64
}

func faceHeight(face font.Face) float64 {
	m := face.Metrics()
	return float64(m.Ascent+m.Descent) / 64
}
