package handlers

import (
	"facerec/processing"
)

type Response struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UploadResponse struct {
	Message string                    `json:"message"`
	Files   []string                  `json:"files"`
	Results []processing.IngestResult `json:"results"`
}

type UploadErrorResponse struct {
	Error   string                    `json:"error"`
	Results []processing.IngestResult `json:"results"`
}

var (
	pipeline  *processing.Pipeline
	maxImages = 10
)

// Init sets what the face handlers work with
func Init(p *processing.Pipeline, maxUploadImages int) {
	pipeline = p
	maxImages = maxUploadImages
}
