// Package captcha generates the verification puzzles for giveaway entries.
// The image is rendered from a small bitmap font with positional jitter and
// pixel noise; enough to stop reaction macros, not a hardened captcha.
package captcha

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"sync"
	"time"

	"github.com/PancyStudios/PancySorteosGo/internal/giveaway"
)

// charset avoids lookalike characters (0/O, 1/I, B/8...).
const charset = "ACDEFHJKLMNPRTUVWXYZ234679"

// CodeLength is the number of characters in a challenge code.
const CodeLength = 5

const (
	glyphWidth  = 5
	glyphHeight = 7
	scale       = 6
	padding     = 14
)

// Provider implements giveaway.ChallengeProvider.
type Provider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewProvider creates a Provider seeded from the clock.
func NewProvider() *Provider {
	return &Provider{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Generate produces a fresh code and its rendered PNG.
func (p *Provider) Generate() (*giveaway.Challenge, error) {
	p.mu.Lock()
	code := make([]byte, CodeLength)
	for i := range code {
		code[i] = charset[p.rng.Intn(len(charset))]
	}
	seed := p.rng.Int63()
	p.mu.Unlock()

	img, err := render(string(code), rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	return &giveaway.Challenge{Image: img, Answer: string(code)}, nil
}

func render(code string, rng *rand.Rand) ([]byte, error) {
	width := padding*2 + len(code)*(glyphWidth+2)*scale
	height := padding*2 + glyphHeight*scale

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	bg := color.RGBA{R: 245, G: 245, B: 240, A: 255}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.SetRGBA(x, y, bg)
		}
	}

	// Ruido de fondo
	for i := 0; i < width*height/20; i++ {
		x, y := rng.Intn(width), rng.Intn(height)
		shade := uint8(120 + rng.Intn(100))
		img.SetRGBA(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
	}

	for i, r := range code {
		glyph, ok := font[r]
		if !ok {
			continue
		}

		ink := color.RGBA{
			R: uint8(30 + rng.Intn(90)),
			G: uint8(30 + rng.Intn(90)),
			B: uint8(30 + rng.Intn(90)),
			A: 255,
		}
		offsetX := padding + i*(glyphWidth+2)*scale + rng.Intn(scale)
		offsetY := padding + rng.Intn(scale*2) - scale

		for row := 0; row < glyphHeight; row++ {
			for col := 0; col < glyphWidth; col++ {
				if glyph[row][col] != '#' {
					continue
				}
				for dx := 0; dx < scale; dx++ {
					for dy := 0; dy < scale; dy++ {
						px := offsetX + col*scale + dx
						py := offsetY + row*scale + dy
						if px >= 0 && px < width && py >= 0 && py < height {
							img.SetRGBA(px, py, ink)
						}
					}
				}
			}
		}
	}

	// Líneas cruzadas
	for i := 0; i < 3; i++ {
		y := rng.Intn(height)
		slope := rng.Intn(5) - 2
		shade := uint8(60 + rng.Intn(120))
		ink := color.RGBA{R: shade, G: shade, B: shade, A: 255}
		for x := 0; x < width; x++ {
			py := y + (x*slope)/width
			if py >= 0 && py < height {
				img.SetRGBA(x, py, ink)
				if py+1 < height {
					img.SetRGBA(x, py+1, ink)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// font is a 5x7 bitmap per charset rune.
var font = map[rune][glyphHeight]string{
	'A': {" ### ", "#   #", "#   #", "#####", "#   #", "#   #", "#   #"},
	'C': {" ####", "#    ", "#    ", "#    ", "#    ", "#    ", " ####"},
	'D': {"#### ", "#   #", "#   #", "#   #", "#   #", "#   #", "#### "},
	'E': {"#####", "#    ", "#    ", "#### ", "#    ", "#    ", "#####"},
	'F': {"#####", "#    ", "#    ", "#### ", "#    ", "#    ", "#    "},
	'H': {"#   #", "#   #", "#   #", "#####", "#   #", "#   #", "#   #"},
	'J': {"  ###", "   # ", "   # ", "   # ", "   # ", "#  # ", " ##  "},
	'K': {"#   #", "#  # ", "# #  ", "##   ", "# #  ", "#  # ", "#   #"},
	'L': {"#    ", "#    ", "#    ", "#    ", "#    ", "#    ", "#####"},
	'M': {"#   #", "## ##", "# # #", "#   #", "#   #", "#   #", "#   #"},
	'N': {"#   #", "##  #", "# # #", "#  ##", "#   #", "#   #", "#   #"},
	'P': {"#### ", "#   #", "#   #", "#### ", "#    ", "#    ", "#    "},
	'R': {"#### ", "#   #", "#   #", "#### ", "# #  ", "#  # ", "#   #"},
	'T': {"#####", "  #  ", "  #  ", "  #  ", "  #  ", "  #  ", "  #  "},
	'U': {"#   #", "#   #", "#   #", "#   #", "#   #", "#   #", " ### "},
	'V': {"#   #", "#   #", "#   #", "#   #", " # # ", " # # ", "  #  "},
	'W': {"#   #", "#   #", "#   #", "#   #", "# # #", "## ##", "#   #"},
	'X': {"#   #", " # # ", "  #  ", "  #  ", "  #  ", " # # ", "#   #"},
	'Y': {"#   #", " # # ", "  #  ", "  #  ", "  #  ", "  #  ", "  #  "},
	'Z': {"#####", "    #", "   # ", "  #  ", " #   ", "#    ", "#####"},
	'2': {" ### ", "#   #", "    #", "   # ", "  #  ", " #   ", "#####"},
	'3': {" ### ", "#   #", "    #", "  ## ", "    #", "#   #", " ### "},
	'4': {"   # ", "  ## ", " # # ", "#  # ", "#####", "   # ", "   # "},
	'6': {" ### ", "#    ", "#    ", "#### ", "#   #", "#   #", " ### "},
	'7': {"#####", "    #", "   # ", "  #  ", "  #  ", "  #  ", "  #  "},
	'9': {" ### ", "#   #", "#   #", " ####", "    #", "    #", " ### "},
}
