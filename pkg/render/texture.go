package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp" // Register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ThumbSize is the edge length of texture thumbnails.
const ThumbSize = 8

var textureExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// Texture is a background image reduced to what the preview needs: a
// small thumbnail and its mean color.
type Texture struct {
	Name   string
	Width  int // source width
	Height int // source height
	Thumb  *image.RGBA
	Swatch Color
}

// LoadTexture decodes an image file into a Texture.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	tex := TextureFromImage(img)
	tex.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return tex, nil
}

// TextureFromImage builds a Texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	thumb := image.NewRGBA(image.Rect(0, 0, ThumbSize, ThumbSize))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, b, draw.Src, nil)

	return &Texture{
		Width:  b.Dx(),
		Height: b.Dy(),
		Thumb:  thumb,
		Swatch: meanColor(thumb),
	}
}

func meanColor(img *image.RGBA) Color {
	var r, g, b, n int
	for y := range img.Rect.Dy() {
		for x := range img.Rect.Dx() {
			c := img.RGBAAt(x, y)
			r += int(c.R)
			g += int(c.G)
			b += int(c.B)
			n++
		}
	}
	if n == 0 {
		return ColorGray
	}
	return RGB(uint8(r/n), uint8(g/n), uint8(b/n))
}

// TextureCatalog is the ordered set of background textures an appearance
// texture index refers to.
type TextureCatalog struct {
	Textures []*Texture
}

// LoadTextureDir loads every supported image in dir, sorted by file name.
// Files that fail to decode are returned as an error.
func LoadTextureDir(dir string) (*TextureCatalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read texture dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(textureExts, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	cat := &TextureCatalog{}
	for _, name := range names {
		tex, err := LoadTexture(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		cat.Textures = append(cat.Textures, tex)
	}
	return cat, nil
}

// Len returns the number of textures. A nil catalog is empty.
func (c *TextureCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Textures)
}

// Swatch returns the mean color of texture i, or fallback when i is out of
// range (including the -1 "no texture" index).
func (c *TextureCatalog) Swatch(i int, fallback Color) Color {
	if i < 0 || i >= c.Len() {
		return fallback
	}
	return c.Textures[i].Swatch
}

// HueShift rotates the hue of c by degrees in HSV space.
func HueShift(c Color, degrees float64) Color {
	if degrees == 0 {
		return c
	}
	cc, _ := colorful.MakeColor(c)
	h, s, v := cc.Hsv()
	h = math.Mod(h+degrees, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: c.A}
}
