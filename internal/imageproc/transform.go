package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Crop modes
const (
	CropScale = "scale" // resize, a zero side keeps the aspect ratio
	CropFit   = "fit"   // fit inside the box, keeps aspect ratio
	CropFill  = "fill"  // cover the box and crop the center
	CropThumb = "thumb" // same as fill, tuned for small outputs
)

// Effects
const (
	EffectGrayscale = "grayscale"
	EffectSepia     = "sepia"
	EffectInvert    = "invert"
	EffectBlur      = "blur"
	EffectSharpen   = "sharpen"
)

const maxDimension = 4000

var (
	ErrNoOperations  = errors.New("no transformation requested")
	ErrInvalidOption = errors.New("invalid transformation option")
)

// Options describes one transformation. Steps run in a fixed order:
// resize/crop, rotate, effect.
type Options struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Crop      string  `json:"crop"`
	Angle     int     `json:"angle"` // clockwise degrees
	Effect    string  `json:"effect"`
	BlurSigma float64 `json:"blur_sigma"`
}

func (o Options) resizes() bool {
	return o.Width > 0 || o.Height > 0
}

func (o Options) crop() string {
	if o.Crop == "" {
		return CropScale
	}
	return o.Crop
}

// Validate checks ranges and that at least one step is requested
func (o Options) Validate() error {
	if o.Width < 0 || o.Height < 0 || o.Width > maxDimension || o.Height > maxDimension {
		return fmt.Errorf("%w: width and height must be between 0 and %d", ErrInvalidOption, maxDimension)
	}

	switch o.crop() {
	case CropScale:
	case CropFit, CropFill, CropThumb:
		if o.Width == 0 || o.Height == 0 {
			return fmt.Errorf("%w: crop %q needs both width and height", ErrInvalidOption, o.Crop)
		}
	default:
		return fmt.Errorf("%w: unknown crop %q", ErrInvalidOption, o.Crop)
	}

	switch o.Angle {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("%w: angle must be 0, 90, 180 or 270", ErrInvalidOption)
	}

	switch o.Effect {
	case "", EffectGrayscale, EffectSepia, EffectInvert, EffectBlur, EffectSharpen:
	default:
		return fmt.Errorf("%w: unknown effect %q", ErrInvalidOption, o.Effect)
	}
	if o.BlurSigma < 0 || o.BlurSigma > 50 {
		return fmt.Errorf("%w: blur_sigma must be between 0 and 50", ErrInvalidOption)
	}

	if !o.resizes() && o.Angle == 0 && o.Effect == "" {
		return ErrNoOperations
	}
	return nil
}

// Operations lists the applied steps in a compact form, e.g. "resize:300x200:fill"
func (o Options) Operations() []string {
	var ops []string
	if o.resizes() {
		ops = append(ops, fmt.Sprintf("resize:%dx%d:%s", o.Width, o.Height, o.crop()))
	}
	if o.Angle != 0 {
		ops = append(ops, fmt.Sprintf("rotate:%d", o.Angle))
	}
	switch o.Effect {
	case "":
	case EffectBlur, EffectSharpen:
		ops = append(ops, fmt.Sprintf("effect:%s:%g", o.Effect, o.sigma()))
	default:
		ops = append(ops, "effect:"+o.Effect)
	}
	return ops
}

func (o Options) sigma() float64 {
	if o.BlurSigma > 0 {
		return o.BlurSigma
	}
	if o.Effect == EffectSharpen {
		return 1
	}
	return 3
}

// Transform decodes data, applies opts and re-encodes. PNG and GIF sources
// come back as PNG, everything else as JPEG.
func Transform(data []byte, opts Options) ([]byte, string, error) {
	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	img := apply(src, opts)

	outFormat, contentType := imaging.JPEG, "image/jpeg"
	if format == "png" || format == "gif" {
		outFormat, contentType = imaging.PNG, "image/png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, outFormat, imaging.JPEGQuality(90)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), contentType, nil
}

func apply(src image.Image, o Options) image.Image {
	img := src

	if o.resizes() {
		switch o.crop() {
		case CropFill:
			img = imaging.Fill(img, o.Width, o.Height, imaging.Center, imaging.Lanczos)
		case CropThumb:
			img = imaging.Thumbnail(img, o.Width, o.Height, imaging.Lanczos)
		case CropFit:
			img = imaging.Fit(img, o.Width, o.Height, imaging.Lanczos)
		default:
			img = imaging.Resize(img, o.Width, o.Height, imaging.Lanczos)
		}
	}

	// imaging rotates counter-clockwise
	switch o.Angle {
	case 90:
		img = imaging.Rotate270(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate90(img)
	}

	switch o.Effect {
	case EffectGrayscale:
		img = imaging.Grayscale(img)
	case EffectSepia:
		img = imaging.AdjustFunc(img, sepia)
	case EffectInvert:
		img = imaging.Invert(img)
	case EffectBlur:
		img = imaging.Blur(img, o.sigma())
	case EffectSharpen:
		img = imaging.Sharpen(img, o.sigma())
	}

	return img
}

func sepia(c color.NRGBA) color.NRGBA {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	return color.NRGBA{
		R: clamp(0.393*r + 0.769*g + 0.189*b),
		G: clamp(0.349*r + 0.686*g + 0.168*b),
		B: clamp(0.272*r + 0.534*g + 0.131*b),
		A: c.A,
	}
}

func clamp(v float64) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
