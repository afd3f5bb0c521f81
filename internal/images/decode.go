// Package images turns uploaded photo bytes into a decoded image.Image,
// converting HEIC along the way.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/adrium/goheif"
)

// ErrUnsupportedFormat is returned for files that are not jpg, png or heic
var ErrUnsupportedFormat = errors.New("unsupported image format")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
}

var heifBrands = []string{"heic", "heix", "heim", "heis", "hevc", "hevx", "mif1", "msf1"}

// AllowedExtension reports whether filename has one of the accepted upload extensions
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// AllowedExtensions lists the accepted extensions, for error messages and the upload form
func AllowedExtensions() []string {
	return []string{"jpg", "png", "jpeg", "heic"}
}

// IsHEIF reports whether data starts with an ISO BMFF ftyp box carrying a HEIF brand
func IsHEIF(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	for _, b := range heifBrands {
		if brand == b {
			return true
		}
	}
	return false
}

// Decode reads an uploaded image. HEIC files are converted through goheif;
// everything else goes through the registered standard decoders untouched.
func Decode(r io.Reader, filename string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" && !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	if ext == ".heic" || IsHEIF(data) {
		img, err := decodeHEIC(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HEIC image: %w", err)
		}
		slog.Debug("Converted HEIC image", "filename", filename, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
		return img, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	slog.Debug("Decoded image", "filename", filename, "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

func decodeHEIC(data []byte) (img image.Image, err error) {
	// goheif walks container boxes from untrusted input and can panic on truncated files
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("malformed HEIC container: %v", r)
		}
	}()
	return goheif.Decode(bytes.NewReader(data))
}
