package barcode

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// ErrNoBarcode is returned when the image holds no readable barcode
var ErrNoBarcode = errors.New("no barcode detected")

// Detector reads the product barcode printed on a book
type Detector struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewDetector creates a detector for the EAN/UPC symbologies used on book covers
func NewDetector() *Detector {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
		gozxing.DecodeHintType_POSSIBLE_FORMATS: []gozxing.BarcodeFormat{
			gozxing.BarcodeFormat_EAN_13,
			gozxing.BarcodeFormat_UPC_A,
			gozxing.BarcodeFormat_EAN_8,
		},
	}
	return &Detector{hints: hints}
}

// Detect returns the text of the first barcode found in img.
// A single decoding pass is made; any failure is reported as ErrNoBarcode.
func (d *Detector) Detect(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to prepare image for barcode reader: %w", err)
	}

	// oned readers keep scratch buffers, so each call gets its own
	reader := oned.NewMultiFormatUPCEANReader(d.hints)
	result, err := reader.Decode(bmp, d.hints)
	if err != nil {
		slog.Debug("Barcode reader found nothing", "error", err)
		return "", ErrNoBarcode
	}

	text := strings.TrimSpace(result.GetText())
	if text == "" {
		return "", ErrNoBarcode
	}

	slog.Debug("Barcode detected", "format", result.GetBarcodeFormat().String(), "text", text)
	return text, nil
}
