package processing

import (
	"errors"
	"path"

	"facerec/faces"
	"facerec/index"
	"facerec/storage"
)

var (
	ErrNoFace = errors.New("no face detected")
)

// Pipeline ties together the storage of face images, the detector and the encoding index.
// All methods are synchronous and safe to call from concurrent requests.
type Pipeline struct {
	Storage       storage.StorageAPI
	Detector      faces.Detector
	Index         *index.Index
	FacesDir      string  // directory in Storage holding the face images
	ProbeDir      string  // local directory for temporary probe images
	MaxDistanceSq float64 // squared distance at which two faces are the same person
}

func (p *Pipeline) facePath(fileName string) string {
	return path.Join(p.FacesDir, fileName)
}
