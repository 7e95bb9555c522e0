package qr

import (
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// Generator encodes the public RSVP form URL for printed invitations.
type Generator struct {
	FormURL string
	Size    int
}

func NewGenerator(formURL string) *Generator {
	return &Generator{FormURL: formURL, Size: DefaultSize}
}

// PNG returns the invitation QR code as a PNG image.
func (g *Generator) PNG() ([]byte, error) {
	if g.FormURL == "" {
		return nil, errors.New("qr: form url is empty")
	}
	size := g.Size
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(g.FormURL, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode %q: %w", g.FormURL, err)
	}
	return png, nil
}
