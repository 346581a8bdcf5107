package storage

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"golang.org/x/image/webp"
)

var (
	ErrTooLarge     = errors.New("file too large")
	ErrEmpty        = errors.New("empty file")
	ErrInvalidImage = errors.New("invalid image")
	ErrUnsupported  = errors.New("unsupported media type")
)

const DefaultMaxMediaBytes = 25 * 1024 * 1024

// Probe is what we learn about an upload before storing it.
type Probe struct {
	Data     []byte
	MimeType string
	Width    *int
	Height   *int
}

func (p Probe) Size() int64 {
	return int64(len(p.Data))
}

// Detect allowed image types by magic number.
func detectMagic(header []byte) (string, error) {
	if len(header) < 12 {
		return "", ErrInvalidImage
	}
	// JPEG: FF D8 FF
	if header[0] == 0xFF && header[1] == 0xD8 && header[2] == 0xFF {
		return "image/jpeg", nil
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if header[0] == 0x89 && header[1] == 0x50 && header[2] == 0x4E && header[3] == 0x47 &&
		header[4] == 0x0D && header[5] == 0x0A && header[6] == 0x1A && header[7] == 0x0A {
		return "image/png", nil
	}
	// WebP: RIFF....WEBP
	if header[0] == 'R' && header[1] == 'I' && header[2] == 'F' && header[3] == 'F' &&
		header[8] == 'W' && header[9] == 'E' && header[10] == 'B' && header[11] == 'P' {
		return "image/webp", nil
	}
	return "", ErrUnsupported
}

// ProbeMedia reads at most maxBytes from r and sniffs the content type. For
// jpeg, png and webp the pixel dimensions are read from the header without
// decoding the whole image.
func ProbeMedia(r io.Reader, maxBytes int64) (Probe, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMediaBytes
	}

	// Read bounded.
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Probe{}, err
	}
	if int64(len(data)) > maxBytes {
		return Probe{}, ErrTooLarge
	}
	if len(data) == 0 {
		return Probe{}, ErrEmpty
	}

	p := Probe{Data: data}
	if len(data) >= 12 {
		if mime, err := detectMagic(data[:12]); err == nil {
			p.MimeType = mime
		}
	}
	if p.MimeType == "" {
		p.MimeType = strings.SplitN(http.DetectContentType(data), ";", 2)[0]
		return p, nil
	}

	var cfg image.Config
	switch p.MimeType {
	case "image/jpeg":
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	case "image/png":
		cfg, err = png.DecodeConfig(bytes.NewReader(data))
	case "image/webp":
		cfg, err = webp.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return Probe{}, ErrInvalidImage
	}
	p.Width, p.Height = &cfg.Width, &cfg.Height
	return p, nil
}
