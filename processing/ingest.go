package processing

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"facerec/models"

	log "github.com/sirupsen/logrus"
)

type Upload struct {
	Name string
	Open func() (io.ReadCloser, error)
}

type IngestResult struct {
	File  string `json:"file"`
	Saved bool   `json:"saved"`
	Faces int    `json:"faces"`
	Error string `json:"error,omitempty"`
}

var pathSeparators = strings.NewReplacer("/", "-", "\\", "-")

var (
	errOpenUpload = errors.New("cannot read upload")
	errReplaced   = errors.New("replaced by a later upload with the same name")
)

// StoredName is the name a user's upload gets in the faces directory
func StoredName(userID, uploadName string) string {
	base := filepath.Base(filepath.Clean("/" + uploadName))
	if base == "/" || base == "." {
		base = "image"
	}
	return pathSeparators.Replace(userID) + "_" + base
}

// Ingest stores every upload that contains at least one face and drops the rest.
// There is no rollback: each upload gets its own result, in the same order.
// Uploads sharing a stored name overwrite each other, only the last one can end up saved.
func (p *Pipeline) Ingest(userID string, uploads []Upload) []IngestResult {
	results := make([]IngestResult, 0, len(uploads))
	for _, upload := range uploads {
		result := IngestResult{File: StoredName(userID, upload.Name)}
		n, err := p.ingestOne(userID, result.File, upload)
		if !errors.Is(err, errOpenUpload) {
			markReplaced(results, result.File)
		}
		if err != nil {
			log.WithField("file", result.File).Infof("Upload rejected: %v", err)
			result.Error = err.Error()
		} else {
			result.Saved = true
			result.Faces = n
		}
		results = append(results, result)
	}
	return results
}

// markReplaced flags earlier results whose file was just overwritten or deleted
func markReplaced(results []IngestResult, fileName string) {
	for i := range results {
		if results[i].File == fileName && results[i].Saved {
			results[i] = IngestResult{File: fileName, Error: errReplaced.Error()}
		}
	}
}

func (p *Pipeline) ingestOne(userID, fileName string, upload Upload) (int, error) {
	filePath := p.facePath(fileName)
	reader, err := upload.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errOpenUpload, err)
	}
	_, err = p.Storage.Save(filePath, reader)
	reader.Close()
	if err != nil {
		p.discard(fileName)
		return 0, fmt.Errorf("cannot save image: %w", err)
	}
	defer p.Storage.ReleaseLocalFile(filePath)

	found, err := p.Detector.Detect(p.Storage.GetFullPath(filePath))
	if err != nil {
		p.discard(fileName)
		return 0, fmt.Errorf("cannot read image: %w", err)
	}
	if len(found) == 0 {
		p.discard(fileName)
		return 0, ErrNoFace
	}
	if err = p.Storage.UpdateFile(filePath, mime.TypeByExtension(filepath.Ext(fileName))); err != nil {
		p.discard(fileName)
		return 0, fmt.Errorf("cannot store image: %w", err)
	}
	// The file is kept even if indexing fails, recognition will encode it again
	if err = p.Index.Put(models.NewFace(fileName, userID, found)); err != nil {
		log.Errorf("Indexing %s: %v", fileName, err)
	}
	return len(found), nil
}

// discard removes a rejected file and whatever an earlier upload with the same name left in the index
func (p *Pipeline) discard(fileName string) {
	if err := p.Storage.Delete(p.facePath(fileName)); err != nil {
		log.Errorf("Deleting rejected %s: %v", fileName, err)
	}
	if err := p.Index.Remove(fileName); err != nil {
		log.Errorf("Removing rejected %s from index: %v", fileName, err)
	}
}
