// Package media wraps the image codec: parsing uploads into their basic
// attributes plus EXIF tags, and producing bounded thumbnails.
package media

import (
	"bytes"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/tomislacker/photos3/internal/errs"
	"github.com/tomislacker/photos3/internal/models"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Decoder parses image payloads. Zero value is ready to use.
type Decoder struct{}

// Decode reads the container attributes and EXIF tags out of data. A payload
// without an EXIF section is not an error; the tag map just comes back
// empty. A payload that is not an image at all fails with a decode error.
func (Decoder) Decode(data []byte) (models.ImageInfo, map[string]string, error) {
	const op = "media.Decoder.Decode"

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.ImageInfo{}, nil, errs.Wrap(errs.KindDecode, op, err)
	}

	info := models.ImageInfo{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}
	return info, decodeTags(data), nil
}

type tagCollector struct {
	tags map[string]string
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.tags[string(name)] = strings.Trim(tag.String(), `"`)
	return nil
}

func decodeTags(data []byte) map[string]string {
	tags := map[string]string{}
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		// No EXIF section. Degraded result, not a failure.
		return tags
	}
	c := &tagCollector{tags: tags}
	_ = x.Walk(c)
	return c.tags
}

// Thumbnail scales data down to fit inside a width x height box, keeping the
// aspect ratio and never upscaling, then re-encodes in the source format.
// Formats the encoder cannot write (webp) fall back to JPEG.
func Thumbnail(data []byte, width, height int) ([]byte, error) {
	const op = "media.Thumbnail"

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errs.Wrap(errs.KindDecode, op, err)
	}

	thumb := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, encodeFormat(format)); err != nil {
		return nil, errs.Wrap(errs.KindDecode, op, err)
	}
	return buf.Bytes(), nil
}

func encodeFormat(format string) imaging.Format {
	switch format {
	case "png":
		return imaging.PNG
	case "gif":
		return imaging.GIF
	case "tiff":
		return imaging.TIFF
	case "bmp":
		return imaging.BMP
	default:
		return imaging.JPEG
	}
}
