package imageproc

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation reads the EXIF orientation tag, 1 when absent
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orient, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orient
}

// FixOrientation rotates/flips img so that it displays upright
func FixOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// AutoOrient bakes the EXIF orientation into the pixels of a JPEG. Images
// that are already upright are returned unchanged.
func AutoOrient(data []byte) ([]byte, error) {
	orientation := Orientation(data)
	if orientation <= 1 || orientation > 8 {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, FixOrientation(img, orientation), imaging.JPEG, imaging.JPEGQuality(92)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
