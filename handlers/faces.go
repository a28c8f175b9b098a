package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"facerec/processing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	noFacesDetectedMessage  = "No se detectó correctamente el rostro, intente nuevamente"
	tooManyImagesMessage    = "Límite de imágenes excedido (máximo %d)"
	savedImagesMessage      = "Se guardaron %d imágenes con rostro para el usuario %s"
	recognizedMessageFormat = "¡Rostro reconocido! Coincide con %s"
)

var (
	// Predefined errors
	MissingUserIDResponse = Response{"El campo 'user_id' es obligatorio"}
	MissingImagesResponse = Response{"No se enviaron imágenes"}
	MissingImageResponse  = Response{"No se envió ninguna imagen"}
	NoFaceInProbeResponse = Response{"No se detectó ningún rostro en la imagen"}
	ProbeFailedResponse   = Response{"No se pudo procesar la imagen"}
	NotRecognizedResponse = MessageResponse{"Rostro no reconocido"}
)

// UploadFace stores the images in "images" that contain a face, tagged with "user_id"
func UploadFace(c *gin.Context) {
	userID := c.PostForm("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, MissingUserIDResponse)
		return
	}
	var uploads []processing.Upload
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["images"] {
			uploads = append(uploads, processing.Upload{
				Name: fh.Filename,
				Open: func() (io.ReadCloser, error) {
					f, err := fh.Open()
					if err != nil {
						return nil, err
					}
					return f, nil
				},
			})
		}
	}
	if len(uploads) == 0 {
		c.JSON(http.StatusBadRequest, MissingImagesResponse)
		return
	}
	if len(uploads) > maxImages {
		c.JSON(http.StatusBadRequest, Response{fmt.Sprintf(tooManyImagesMessage, maxImages)})
		return
	}

	results := pipeline.Ingest(userID, uploads)
	files := []string{}
	for _, r := range results {
		if r.Saved {
			files = append(files, r.File)
		}
	}
	log.WithField("user_id", userID).Infof("Upload: %d of %d images kept", len(files), len(results))
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, UploadErrorResponse{noFacesDetectedMessage, results})
		return
	}
	c.JSON(http.StatusOK, UploadResponse{
		Message: fmt.Sprintf(savedImagesMessage, len(files), userID),
		Files:   files,
		Results: results,
	})
}

// RecognizeFace compares the face in "image" with all stored faces
func RecognizeFace(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, MissingImageResponse)
		return
	}
	file, err := fh.Open()
	if err != nil {
		log.Errorf("Opening probe upload: %v", err)
		c.JSON(http.StatusBadRequest, ProbeFailedResponse)
		return
	}
	defer file.Close()

	match, err := pipeline.RecognizeUpload(fh.Filename, file)
	if errors.Is(err, processing.ErrNoFace) {
		c.JSON(http.StatusBadRequest, NoFaceInProbeResponse)
		return
	}
	if err != nil {
		log.Errorf("Recognition failed: %v", err)
		c.JSON(http.StatusBadRequest, ProbeFailedResponse)
		return
	}
	if match == "" {
		c.JSON(http.StatusOK, NotRecognizedResponse)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{fmt.Sprintf(recognizedMessageFormat, match)})
}
