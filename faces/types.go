package faces

import (
	"errors"
	"image"
)

const EncodingSize = 128

type (
	// Encoding is the 128-d descriptor of a single face
	Encoding [EncodingSize]float32

	Face struct {
		Rectangle image.Rectangle
		Encoding  Encoding
	}

	// Detector finds faces in the image at path and returns their encodings.
	// An image without faces is not an error: it returns an empty slice.
	Detector interface {
		Detect(path string) ([]Face, error)
	}
)

var ErrInvalidEncoding = errors.New("invalid face encoding")

// DistanceSq returns the squared Euclidean distance between two encodings
func (e *Encoding) DistanceSq(other *Encoding) (sum float64) {
	for i := range e {
		d := float64(e[i]) - float64(other[i])
		sum += d * d
	}
	return
}

// Matches reports whether both encodings are considered the same person
func (e *Encoding) Matches(other *Encoding, maxDistanceSq float64) bool {
	return e.DistanceSq(other) <= maxDistanceSq
}

func EncodingFrom(values []float32) (e Encoding, err error) {
	if len(values) != EncodingSize {
		return e, ErrInvalidEncoding
	}
	copy(e[:], values)
	return e, nil
}
