package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
)

// Variant is one preprocessed rendering of the source image, written to a
// temp file for the engines to consume.
type Variant struct {
	Name string
	Path string
}

// GenerateVariants produces the preprocessed renderings that maximize OCR
// yield: the original, a contrast-boosted grayscale, a sharpened upscale,
// and a hard-thresholded black/white version. The caller must invoke the
// returned cleanup function.
func GenerateVariants(imageBytes []byte) ([]Variant, func(), error) {
	src, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var variants []Variant
	cleanup := func() {
		for _, v := range variants {
			os.Remove(v.Path)
		}
	}

	save := func(name string, img image.Image) error {
		f, err := os.CreateTemp("", "receipt-"+name+"-*.png")
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}
		f.Close()
		if err := imaging.Save(img, f.Name()); err != nil {
			os.Remove(f.Name())
			return fmt.Errorf("failed to save %s variant: %w", name, err)
		}
		variants = append(variants, Variant{Name: name, Path: f.Name()})
		return nil
	}

	if err := save("original", src); err != nil {
		cleanup()
		return nil, nil, err
	}

	gray := imaging.Grayscale(src)
	contrast := imaging.AdjustContrast(gray, 20)
	if err := save("gray-contrast", contrast); err != nil {
		cleanup()
		return nil, nil, err
	}

	sharp := imaging.Sharpen(contrast, 0.8)
	if sharp.Bounds().Dy() < 1000 {
		sharp = imaging.Resize(sharp, 0, sharp.Bounds().Dy()*2, imaging.Lanczos)
	}
	if err := save("sharp-upscale", sharp); err != nil {
		cleanup()
		return nil, nil, err
	}

	binary := binarize(contrast, 200)
	if err := save("binarized", binary); err != nil {
		cleanup()
		return nil, nil, err
	}

	return variants, cleanup, nil
}

// binarize applies a hard brightness threshold, the aggressive treatment
// Tesseract tends to like for thermal-printed receipts.
func binarize(img image.Image, threshold uint8) image.Image {
	return imaging.AdjustFunc(imaging.Clone(img), func(c color.NRGBA) color.NRGBA {
		if c.R > threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})
}
