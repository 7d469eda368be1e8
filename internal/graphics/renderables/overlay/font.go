package overlay

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph strip baked from the builtin 7x13 bitmap face: ASCII 32..126 side by
// side, one cell per advance. No font asset to load, and every glyph shares
// the same metrics, so layout is a multiply.
const (
	glyphFirst = 32
	glyphLast  = 126
	glyphCount = glyphLast - glyphFirst + 1
)

var (
	cellW  = basicfont.Face7x13.Advance
	cellH  = basicfont.Face7x13.Height
	ascent = basicfont.Face7x13.Ascent
)

// buildGlyphAtlas rasterizes the strip and uploads it as a single-channel
// texture. The fragment shader reads coverage from the red channel.
func buildGlyphAtlas() uint32 {
	w := glyphCount * cellW
	img := image.NewAlpha(image.Rect(0, 0, w, cellH))

	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
	}
	for r := rune(glyphFirst); r <= glyphLast; r++ {
		d.Dot = fixed.P(int(r-glyphFirst)*cellW, ascent)
		d.DrawString(string(r))
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(w), int32(cellH), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// appendTextQuads appends 6 vertices (x, y, u, v) per drawable character.
// Runes outside the strip advance the pen without emitting a quad.
func appendTextQuads(dst []float32, text string, x, y, scale float32) []float32 {
	stripW := float32(glyphCount * cellW)
	w := float32(cellW) * scale
	h := float32(cellH) * scale
	for _, r := range text {
		if r < glyphFirst || r > glyphLast {
			x += w
			continue
		}
		cell := int(r - glyphFirst)
		u0 := float32(cell*cellW) / stripW
		u1 := float32((cell+1)*cellW) / stripW

		dst = append(dst,
			x, y+h, u0, 1,
			x, y, u0, 0,
			x+w, y, u1, 0,

			x, y+h, u0, 1,
			x+w, y, u1, 0,
			x+w, y+h, u1, 1,
		)
		x += w
	}
	return dst
}
