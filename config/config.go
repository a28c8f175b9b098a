package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	TLS_DOMAINS          = "" // e.g. "example.com,example2.com"
	BIND_ADDRESS         = "0.0.0.0:8080"
	DEBUG_MODE           = true
	LOG_LEVEL            = "info"
	LOG_FILE             = ""        // Optional, logs go to stdout as well
	MEDIA_ROOT           = "./media" // Probes are written here, faces go to MEDIA_ROOT/FACES_DIR
	FACES_DIR            = "faces"
	TMP_DIR              = "/tmp" // Local copies of S3 objects while they are being processed
	MODELS_DIR           = "./models"
	FACE_DETECT_CNN      = false // Use Convolutional Neural Network for face detection (as opposed to HOG). Much slower, supposedly more accurate at different angles
	FACE_MAX_DISTANCE_SQ = 0.36  // Squared distance between faces to consider them the same person (0.6^2)
	FACE_MAX_IMAGE_SIZE  = 1600  // Longest side of the image passed to the detector, 0 disables resizing
	MAX_UPLOAD_IMAGES    = 10
	MAX_MULTIPART_MEMORY = 32 << 20
	MYSQL_DSN            = "" // MySQL will be used for the face index if this is set
	SQLITE_FILE          = "" // Defaults to MEDIA_ROOT/faces.db
	STORAGE_TYPE         = "disk"
	S3_BUCKET            = ""
	S3_PREFIX            = ""
	S3_REGION            = "us-east-1"
	S3_ENDPOINT          = "" // For S3 compatible services (MinIO, etc)
	S3_KEY               = ""
	S3_SECRET            = ""
	S3_SSE               = "" // e.g. "AES256"
)

func init() {
	// A missing .env is fine, real environment variables still apply
	_ = godotenv.Load()
	Load()
}

// Load re-reads all settings from the environment
func Load() {
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("LOG_LEVEL", &LOG_LEVEL)
	readEnvString("LOG_FILE", &LOG_FILE)
	readEnvString("MEDIA_ROOT", &MEDIA_ROOT)
	readEnvString("FACES_DIR", &FACES_DIR)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvString("MODELS_DIR", &MODELS_DIR)
	readEnvBool("FACE_DETECT_CNN", &FACE_DETECT_CNN)
	readEnvFloat("FACE_MAX_DISTANCE_SQ", &FACE_MAX_DISTANCE_SQ)
	readEnvInt("FACE_MAX_IMAGE_SIZE", &FACE_MAX_IMAGE_SIZE)
	readEnvInt("MAX_UPLOAD_IMAGES", &MAX_UPLOAD_IMAGES)
	readEnvInt("MAX_MULTIPART_MEMORY", &MAX_MULTIPART_MEMORY)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("STORAGE_TYPE", &STORAGE_TYPE)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("S3_PREFIX", &S3_PREFIX)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_KEY", &S3_KEY)
	readEnvString("S3_SECRET", &S3_SECRET)
	readEnvString("S3_SSE", &S3_SSE)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvFloat(name string, value *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	*value = f
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}
