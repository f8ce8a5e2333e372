package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: 120, B: uint8(y * 10), A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{name: "empty", opts: Options{}, wantErr: ErrNoOperations},
		{name: "scale width only", opts: Options{Width: 100}},
		{name: "fill needs both sides", opts: Options{Width: 100, Crop: CropFill}, wantErr: ErrInvalidOption},
		{name: "fill", opts: Options{Width: 100, Height: 50, Crop: CropFill}},
		{name: "unknown crop", opts: Options{Width: 10, Crop: "stretch"}, wantErr: ErrInvalidOption},
		{name: "too wide", opts: Options{Width: 5000}, wantErr: ErrInvalidOption},
		{name: "negative height", opts: Options{Height: -1}, wantErr: ErrInvalidOption},
		{name: "rotate only", opts: Options{Angle: 90}},
		{name: "odd angle", opts: Options{Angle: 45}, wantErr: ErrInvalidOption},
		{name: "effect only", opts: Options{Effect: EffectSepia}},
		{name: "unknown effect", opts: Options{Effect: "cartoon"}, wantErr: ErrInvalidOption},
		{name: "sigma out of range", opts: Options{Effect: EffectBlur, BlurSigma: 99}, wantErr: ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOptions_Operations(t *testing.T) {
	opts := Options{Width: 300, Height: 200, Crop: CropFill, Angle: 90, Effect: EffectBlur}
	assert.Equal(t, []string{"resize:300x200:fill", "rotate:90", "effect:blur:3"}, opts.Operations())

	opts = Options{Effect: EffectGrayscale}
	assert.Equal(t, []string{"effect:grayscale"}, opts.Operations())
}

func TestTransform(t *testing.T) {
	src := encodePNG(t, sampleImage(40, 20))

	tests := []struct {
		name  string
		opts  Options
		wantW int
		wantH int
	}{
		{name: "scale keeps aspect", opts: Options{Width: 20}, wantW: 20, wantH: 10},
		{name: "fill crops", opts: Options{Width: 10, Height: 10, Crop: CropFill}, wantW: 10, wantH: 10},
		{name: "fit inside box", opts: Options{Width: 10, Height: 10, Crop: CropFit}, wantW: 10, wantH: 5},
		{name: "rotate swaps sides", opts: Options{Angle: 90}, wantW: 20, wantH: 40},
		{name: "upside down", opts: Options{Angle: 180}, wantW: 40, wantH: 20},
		{name: "grayscale keeps size", opts: Options{Effect: EffectGrayscale}, wantW: 40, wantH: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, contentType, err := Transform(src, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "image/png", contentType)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, tt.wantW, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
		})
	}
}

func TestTransform_JPEGStaysJPEG(t *testing.T) {
	out, contentType, err := Transform(encodeJPEG(t, sampleImage(16, 16)), Options{Effect: EffectInvert})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)

	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestTransform_Errors(t *testing.T) {
	_, _, err := Transform([]byte("not an image"), Options{Width: 10})
	assert.Error(t, err)

	_, _, err = Transform(encodePNG(t, sampleImage(4, 4)), Options{})
	assert.ErrorIs(t, err, ErrNoOperations)
}

func TestSepia(t *testing.T) {
	c := sepia(color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(128), c.A)
	assert.True(t, c.R >= c.G && c.G >= c.B)
}

func TestFixOrientation(t *testing.T) {
	img := sampleImage(4, 2)

	assert.Equal(t, image.Rect(0, 0, 4, 2), FixOrientation(img, 1).Bounds())
	assert.Equal(t, image.Rect(0, 0, 4, 2), FixOrientation(img, 3).Bounds())
	assert.Equal(t, image.Rect(0, 0, 2, 4), FixOrientation(img, 6).Bounds())
	assert.Equal(t, image.Rect(0, 0, 2, 4), FixOrientation(img, 8).Bounds())
}

func TestAutoOrient_NoExif(t *testing.T) {
	data := encodeJPEG(t, sampleImage(8, 8))
	assert.Equal(t, 1, Orientation(data))

	out, err := AutoOrient(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestQRCode(t *testing.T) {
	out, err := QRCode("https://cdn.test/photoshare/transformations/abc.png")
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, QRCodeSize, cfg.Width)

	_, err = QRCode("")
	assert.Error(t, err)
}
