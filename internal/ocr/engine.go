// Package ocr recognizes text inside annotated regions using Tesseract.
package ocr

import (
	"fmt"
	"image"
	"strings"

	"ocr-labeler/internal/annotation"
	"ocr-labeler/pkg/geometry"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// Engine wraps a Tesseract client tuned for label text: dictionary
// correction is disabled so document-specific tokens (codes, part
// numbers, serials) are not "corrected" into English words.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates the OCR engine. Construction fails when Tesseract or
// its language data is unavailable; callers degrade to "recognition
// unavailable" rather than aborting.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("set OCR language: %w", err)
	}

	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")
	_ = client.SetVariable("language_model_penalty_non_freq_dict_word", "0")

	return &Engine{client: client}, nil
}

// Close releases Tesseract resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// RecognizeRegion runs OCR over one region of the image.
func (e *Engine) RecognizeRegion(img gocv.Mat, bounds geometry.RectInt) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	x, y, w, h := bounds.X, bounds.Y, bounds.Width, bounds.Height
	imgH, imgW := img.Rows(), img.Cols()
	x = max(0, x)
	y = max(0, y)
	w = min(w, imgW-x)
	h = min(h, imgH-y)
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("region outside image bounds")
	}

	region := img.Region(image.Rect(x, y, x+w, y+h))
	defer region.Close()

	processed := preprocess(region)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("encode region: %w", err)
	}
	defer buf.Close()

	// Annotated regions hold one block of text.
	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text = strings.TrimSpace(text)
	text = strings.Join(strings.Fields(text), " ")
	return text, nil
}

// RecognizeShape crops the shape's bounding box out of the image and
// recognizes its text.
func (e *Engine) RecognizeShape(img gocv.Mat, shape annotation.Shape) (string, error) {
	return e.RecognizeRegion(img, geometry.RoundRect(shape.BoundingBox()))
}

// preprocess prepares a region for Tesseract: upscale small crops,
// grayscale, local contrast enhancement, then Otsu binarization. Light
// text on a dark background is inverted since Tesseract expects dark on
// light.
func preprocess(region gocv.Mat) gocv.Mat {
	h, w := region.Rows(), region.Cols()

	var scaled gocv.Mat
	if minDim := min(h, w); minDim < 150 {
		scale := 150.0 / float64(minDim)
		scaled = gocv.NewMat()
		gocv.Resize(region, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = region.Clone()
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	scaled.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
	defer clahe.Close()
	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	enhanced.Close()

	whiteCount := gocv.CountNonZero(binary)
	totalPixels := binary.Rows() * binary.Cols()
	if float64(whiteCount)/float64(totalPixels) > 0.5 {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()
	return result
}
