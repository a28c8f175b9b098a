package faces

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"facerec/utils"
)

// Prepared is an image ready for the dlib loader, possibly a downscaled JPEG copy of the source
type Prepared struct {
	Path     string
	Original image.Point // source image size
	Size     image.Point // size of the image at Path
	temp     bool
}

// Close removes the temporary copy, if one was made
func (p *Prepared) Close() {
	if p.temp {
		_ = os.Remove(p.Path)
	}
}

// ToOriginal maps a rectangle found in the prepared image back to source image pixels
func (p *Prepared) ToOriginal(r image.Rectangle) image.Rectangle {
	if p.Size == p.Original || p.Size.X == 0 || p.Size.Y == 0 {
		return r
	}
	sx := float64(p.Original.X) / float64(p.Size.X)
	sy := float64(p.Original.Y) / float64(p.Size.Y)
	scale := func(v int, s float64) int {
		return int(math.Round(float64(v) * s))
	}
	return image.Rect(scale(r.Min.X, sx), scale(r.Min.Y, sy), scale(r.Max.X, sx), scale(r.Max.Y, sy))
}

// PrepareJPEG makes sure the image at path is a JPEG no larger than maxSize on either side,
// which is what the dlib loader expects. The caller must Close the result.
func PrepareJPEG(path, tmpDir string, maxSize uint) (*Prepared, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	cfg, format, err := image.DecodeConfig(in)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", filepath.Base(path), err)
	}
	original := image.Pt(cfg.Width, cfg.Height)
	if format == "jpeg" && (maxSize == 0 || (uint(cfg.Width) <= maxSize && uint(cfg.Height) <= maxSize)) {
		return &Prepared{Path: path, Original: original, Size: original}, nil
	}
	if _, err = in.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	out, err := os.CreateTemp(tmpDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"_*.jpg")
	if err != nil {
		return nil, err
	}
	result := &Prepared{Path: out.Name(), Original: original, temp: true}
	converted, err := utils.ToJPEG(maxSize, in, out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("cannot convert %s to jpeg: %w", filepath.Base(path), err)
	}
	result.Size = image.Pt(int(converted.NewX), int(converted.NewY))
	return result, nil
}
