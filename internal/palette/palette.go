package palette

import (
	"fmt"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// Nice is the default instance palette.
var Nice = []string{
	"#99b898",
	"#fecea8",
	"#ff847c",
	"#e84a5f",
	"#2a363b",
}

// Palette is a set of display (sRGB) colours instances are tinted from.
type Palette []colorful.Color

// Parse reads hex colours such as "#99b898".
func Parse(hexes []string) (Palette, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("palette: no colours")
	}
	p := make(Palette, 0, len(hexes))
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette: colour %q: %w", h, err)
		}
		p = append(p, c)
	}
	return p, nil
}

// MustParse is Parse for static palettes; it panics on a bad entry.
func MustParse(hexes []string) Palette {
	p, err := Parse(hexes)
	if err != nil {
		panic(err)
	}
	return p
}

// Buffer is a flat per-instance RGB array in linear colour space, three floats per instance.
// It is never modified after Generate returns.
type Buffer struct {
	data []float32
}

// Len returns the number of instances (len/3).
func (b Buffer) Len() int {
	return len(b.data) / 3
}

// At returns the linear RGB triple of instance i.
func (b Buffer) At(i int) [3]float32 {
	return [3]float32{b.data[3*i], b.data[3*i+1], b.data[3*i+2]}
}

// Floats returns a copy of the flat 3*Len() array, e.g. for uploading as a vertex attribute.
func (b Buffer) Floats() []float32 {
	out := make([]float32, len(b.data))
	copy(out, b.data)
	return out
}

// Generate draws one palette entry per instance uniformly at random and stores it converted from sRGB to linear.
// count <= 0 (or an empty palette) yields an empty buffer.
func Generate(count int, p Palette, rng *rand.Rand) Buffer {
	if count <= 0 || len(p) == 0 {
		return Buffer{}
	}
	data := make([]float32, 3*count)
	for i := 0; i < count; i++ {
		r, g, b := p[rng.IntN(len(p))].Clamped().LinearRgb()
		data[3*i] = float32(r)
		data[3*i+1] = float32(g)
		data[3*i+2] = float32(b)
	}
	return Buffer{data: data}
}

// Generator caches the buffer for the last requested count; a new buffer is drawn only when count changes.
type Generator struct {
	palette Palette
	rng     *rand.Rand
	count   int
	buf     Buffer
	valid   bool
}

// NewGenerator returns a generator over p using rng.
func NewGenerator(p Palette, rng *rand.Rand) *Generator {
	return &Generator{palette: p, rng: rng}
}

// Colors returns the buffer for count, generating it on first use or when count differs from the last call.
func (g *Generator) Colors(count int) Buffer {
	if g.valid && g.count == count {
		return g.buf
	}
	g.buf = Generate(count, g.palette, g.rng)
	g.count = count
	g.valid = true
	return g.buf
}
