package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var (
	ErrTooLarge     = errors.New("file too large")
	ErrInvalidImage = errors.New("invalid image")
	ErrUnsupported  = errors.New("unsupported image type")
)

// AvatarOptions bounds what the avatar pipeline accepts and produces.
type AvatarOptions struct {
	MaxBytes int64
	MaxDim   int
	Quality  int
}

func DefaultAvatarOptions() AvatarOptions {
	return AvatarOptions{
		MaxBytes: 5 * 1024 * 1024,
		MaxDim:   2048,
		Quality:  85,
	}
}

// ProcessedImage is the re-encoded output of the avatar pipeline.
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Size        int64
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
)

// sniffFormat identifies the source format from the leading bytes. The
// content type claimed by the client is ignored entirely.
func sniffFormat(data []byte) (string, error) {
	if len(data) < 12 {
		return "", ErrInvalidImage
	}
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg", nil
	case bytes.HasPrefix(data, pngMagic):
		return "image/png", nil
	case bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp", nil
	}
	return "", ErrUnsupported
}

// fitWithin scales (w, h) down so the long edge fits max. Never upscales.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	tw := int(float64(w) * scale)
	th := int(float64(h) * scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

// ProcessAvatarImage validates an upload by magic bytes, decodes it,
// downscales it to fit within MaxDim, flattens any alpha onto white, and
// re-encodes as JPEG.
func ProcessAvatarImage(r io.Reader, opts AvatarOptions) (ProcessedImage, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 * 1024 * 1024
	}
	if opts.MaxDim <= 0 {
		opts.MaxDim = 2048
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 85
	}

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxBytes+1))
	if err != nil {
		return ProcessedImage{}, err
	}
	if int64(len(data)) > opts.MaxBytes {
		return ProcessedImage{}, ErrTooLarge
	}

	format, err := sniffFormat(data)
	if err != nil {
		return ProcessedImage{}, err
	}

	var src image.Image
	switch format {
	case "image/jpeg":
		src, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		src, err = png.Decode(bytes.NewReader(data))
	case "image/webp":
		src, err = webp.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return ProcessedImage{}, fmt.Errorf("decode: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return ProcessedImage{}, ErrInvalidImage
	}

	tw, th := fitWithin(bounds.Dx(), bounds.Dy(), opts.MaxDim)
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	white := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	draw.Draw(dst, dst.Bounds(), white, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return ProcessedImage{}, fmt.Errorf("encode: %w", err)
	}
	return ProcessedImage{
		Data:        out.Bytes(),
		ContentType: "image/jpeg",
		Size:        int64(out.Len()),
	}, nil
}
