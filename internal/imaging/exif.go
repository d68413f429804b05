package imaging

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExtractExif returns every readable EXIF tag as a string. Images without
// EXIF yield an empty map.
func ExtractExif(data []byte) map[string]string {
	out := make(map[string]string)
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return out
	}
	_ = x.Walk(exifCollector(out))
	return out
}

type exifCollector map[string]string

func (c exifCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			c[string(name)] = s
			return nil
		}
	}
	c[string(name)] = tag.String()
	return nil
}
