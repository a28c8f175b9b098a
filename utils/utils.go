package utils

import (
	"bytes"
	"encoding/binary"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/nfnt/resize"
)

func Float32ArrayToByteArray(fa []float32) []byte {
	buf := bytes.Buffer{}
	_ = binary.Write(&buf, binary.LittleEndian, fa)
	return buf.Bytes()
}

func ByteArrayToFloat32Array(b []byte) (result []float32) {
	for i := 0; i+3 < len(b); i += 4 {
		ui32 := uint32(b[i+0]) +
			uint32(b[i+1])<<8 +
			uint32(b[i+2])<<16 +
			uint32(b[i+3])<<24
		result = append(result, math.Float32frombits(ui32))
	}
	return
}

type ImageConverted struct {
	Size   int64
	Format string // format of the source image
	NewX   uint16
	NewY   uint16
	OldX   uint16
	OldY   uint16
}

// ToJPEG decodes any registered image format and writes it back as JPEG.
// If maxSize > 0 the image is shrunk so that neither side exceeds it (never enlarged).
func ToJPEG(maxSize uint, reader io.Reader, writer io.Writer) (result ImageConverted, err error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return result, err
	}
	result.Format = format
	imageRect := img.Bounds().Size()
	result.OldX = uint16(imageRect.X)
	result.OldY = uint16(imageRect.Y)

	newImage := img
	if maxSize > 0 {
		newImage = resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)
	}
	var newBuf bytes.Buffer
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 95}); err != nil {
		return
	}
	imageRect = newImage.Bounds().Size()
	result.NewX = uint16(imageRect.X)
	result.NewY = uint16(imageRect.Y)

	result.Size, err = io.Copy(writer, &newBuf)
	return
}
