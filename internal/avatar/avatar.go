// Package avatar validates uploaded profile pictures and normalizes them to
// a fixed-size PNG.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"regexp"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"golang.org/x/image/draw"
)

const (
	// MaxUploadSize is the largest accepted upload in bytes.
	MaxUploadSize = 1_000_000

	// Size is the width and height of every stored avatar.
	Size = 250

	// ContentType is the media type of every stored avatar.
	ContentType = "image/png"

	// maxPixels guards against images that are small on disk but huge once decoded.
	maxPixels = 50_000_000
)

// Upload errors. Each is a field-level validation error on "avatar".
var (
	ErrInvalidFile  = domain.NewValidationError("avatar", "must be a jpg, jpeg or png image", nil)
	ErrFileTooLarge = domain.NewValidationError("avatar", "must be at most 1000000 bytes", nil)
	ErrUnreadable   = domain.NewValidationError("avatar", "could not be read as an image", nil)
	ErrMissing      = domain.NewValidationError("avatar", "is required", nil)
)

var allowedName = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)

// CheckUpload rejects a file by name and declared size before it is read.
func CheckUpload(filename string, size int64) error {
	if !allowedName.MatchString(filename) {
		return ErrInvalidFile
	}
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}

// Normalize reads at most MaxUploadSize bytes from r, decodes a JPEG or PNG,
// center-crops it to a square, scales it to Size×Size and encodes it as PNG.
func Normalize(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnreadable
	}
	if format != "jpeg" && format != "png" {
		return nil, ErrInvalidFile
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, ErrUnreadable
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnreadable
	}

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, centerSquare(src.Bounds()), draw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return out.Bytes(), nil
}

// centerSquare returns the largest square centered in b.
func centerSquare(b image.Rectangle) image.Rectangle {
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
