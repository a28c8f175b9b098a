package processing

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"facerec/faces"
	"facerec/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RecognizeUpload writes the probe to a file of its own, matches it and removes it again
func (p *Pipeline) RecognizeUpload(uploadName string, reader io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(uploadName))
	probePath := filepath.Join(p.ProbeDir, "probe_"+uuid.NewString()+ext)
	defer func() {
		if err := os.Remove(probePath); err != nil && !os.IsNotExist(err) {
			log.Errorf("Removing probe %s: %v", probePath, err)
		}
	}()

	out, err := os.Create(probePath)
	if err != nil {
		return "", fmt.Errorf("cannot create probe: %w", err)
	}
	_, err = io.Copy(out, reader)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("cannot write probe: %w", err)
	}
	return p.Recognize(probePath)
}

// Recognize returns the name of the first stored face matching the first face
// found in the image at probePath, or "" when nothing matches
func (p *Pipeline) Recognize(probePath string) (string, error) {
	found, err := p.Detector.Detect(probePath)
	if err != nil {
		return "", fmt.Errorf("cannot read probe: %w", err)
	}
	if len(found) == 0 {
		return "", ErrNoFace
	}
	probe := found[0].Encoding

	names, err := p.Storage.List(p.FacesDir)
	if err != nil {
		return "", fmt.Errorf("cannot list faces: %w", err)
	}
	for _, name := range names {
		known, ok := p.encodingOf(name)
		if !ok {
			continue
		}
		if known.Matches(&probe, p.MaxDistanceSq) {
			log.WithField("file", name).Debugf("Match, distance %.4f", known.DistanceSq(&probe))
			return name, nil
		}
	}
	return "", nil
}

// encodingOf returns the indexed encoding of a stored file, encoding and
// indexing it first if it is not there yet. ok is false for files without a face.
func (p *Pipeline) encodingOf(fileName string) (enc faces.Encoding, ok bool) {
	entry, indexed := p.Index.Get(fileName)
	if !indexed {
		var err error
		entry, err = p.encodeStored(fileName)
		if err != nil {
			log.WithField("file", fileName).Warnf("Skipping: %v", err)
			return enc, false
		}
	}
	if !entry.HasFace {
		return enc, false
	}
	enc, err := entry.GetEncoding()
	if err != nil {
		log.WithField("file", fileName).Warnf("Skipping corrupted index entry: %v", err)
		return enc, false
	}
	return enc, true
}

func (p *Pipeline) encodeStored(fileName string) (entry models.Face, err error) {
	filePath := p.facePath(fileName)
	if err = p.Storage.EnsureLocalFile(filePath); err != nil {
		return
	}
	defer p.Storage.ReleaseLocalFile(filePath)

	found, err := p.Detector.Detect(p.Storage.GetFullPath(filePath))
	if err != nil {
		return
	}
	userID, _, _ := strings.Cut(fileName, "_")
	entry = models.NewFace(fileName, userID, found)
	if err = p.Index.Put(entry); err != nil {
		log.Errorf("Indexing %s: %v", fileName, err)
	}
	return entry, nil
}
