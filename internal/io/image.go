package ioutils

import (
	"bytes"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// CoverQuality is the JPEG quality used for pack cover art.
const CoverQuality = 90

// ImageService provides image processing operations for pack cover art.
//
// Example usage:
//
//	svc := NewImageService()
//	data, _ := os.ReadFile("artwork.png")
//	cover, err := svc.PrepareCover(data, 1000)
//	os.WriteFile("Pack_output/cover.jpg", cover, 0644)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// PrepareCover decodes data, scales it down to fit maxSize×maxSize when
// maxSize > 0 and the image is larger, and returns JPEG bytes.
func (s *ImageService) PrepareCover(data []byte, maxSize int) ([]byte, error) {
	if maxSize > 0 {
		return s.ResizeImage(data, maxSize, maxSize)
	}
	return s.ConvertToJPEG(data)
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved and images are never enlarged.
// Returns the image as JPEG-encoded bytes.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x666
//	// A 800x600 image remains 800x600 (but re-encoded)
//	resized, err := svc.ResizeImage(imageData, 1000, 1000)
func (s *ImageService) ResizeImage(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return encodeJPEG(dst)
}

// ConvertToJPEG converts an image to JPEG format without resizing.
func (s *ImageService) ConvertToJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

// fitWithin returns width and height scaled to fit the bounds, keeping the ratio.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: CoverQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
