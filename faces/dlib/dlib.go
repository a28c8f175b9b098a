// Package dlib implements faces.Detector on top of dlib through go-face.
// Requires the dlib models (shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat, mmod_human_face_detector.dat)
// in the models directory.
package dlib

import (
	"fmt"
	"sync"

	"facerec/faces"

	"github.com/Kagami/go-face"
	log "github.com/sirupsen/logrus"
)

type Detector struct {
	recognizer *face.Recognizer
	useCNN     bool
	tmpDir     string
	maxSize    uint
	mutex      sync.Mutex
}

func NewDetector(modelsDir, tmpDir string, maxSize uint, useCNN bool) (*Detector, error) {
	recognizer, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("cannot load face models from %s: %w", modelsDir, err)
	}
	log.Printf("Face models loaded from %s (CNN: %v)", modelsDir, useCNN)
	return &Detector{
		recognizer: recognizer,
		useCNN:     useCNN,
		tmpDir:     tmpDir,
		maxSize:    maxSize,
	}, nil
}

func (d *Detector) Detect(path string) (found []faces.Face, err error) {
	prepared, err := faces.PrepareJPEG(path, d.tmpDir, d.maxSize)
	if err != nil {
		return nil, err
	}
	defer prepared.Close()

	// dlib's recognizer is not safe for concurrent use
	d.mutex.Lock()
	var f []face.Face
	if d.useCNN {
		f, err = d.recognizer.RecognizeFileCNN(prepared.Path)
	} else {
		f, err = d.recognizer.RecognizeFile(prepared.Path)
	}
	d.mutex.Unlock()
	if err != nil {
		return nil, err
	}
	for _, cur := range f {
		found = append(found, faces.Face{
			Rectangle: prepared.ToOriginal(cur.Rectangle),
			Encoding:  faces.Encoding(cur.Descriptor),
		})
	}
	log.Debugf("Detected %d face(s) in %s", len(found), path)
	return found, nil
}

func (d *Detector) Close() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.recognizer.Close()
}
