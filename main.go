package main

import (
	"path/filepath"
	"strings"
	"time"

	"facerec/config"
	"facerec/db"
	"facerec/faces/dlib"
	"facerec/handlers"
	"facerec/index"
	"facerec/logger"
	"facerec/processing"
	"facerec/storage"
	"facerec/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func setupRouter() *gin.Engine {
	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	router.MaxMultipartMemory = int64(config.MAX_MULTIPART_MEMORY)
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        30 * 24 * time.Hour,
	}))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression))
	}
	router.Use(utils.NoCache)

	router.GET("/health", handlers.Health)
	router.POST("/face/upload-face", handlers.UploadFace)
	router.POST("/face/recognize-face", handlers.RecognizeFace)
	return router
}

func main() {
	logger.Init(config.LOG_LEVEL, config.LOG_FILE)

	sqliteFile := config.SQLITE_FILE
	if sqliteFile == "" {
		sqliteFile = filepath.Join(config.MEDIA_ROOT, "faces.db")
	}
	store, err := storage.Init(config.STORAGE_TYPE, config.MEDIA_ROOT, config.TMP_DIR, &storage.Bucket{
		Name:          config.S3_BUCKET,
		Path:          config.S3_PREFIX,
		Region:        config.S3_REGION,
		Endpoint:      config.S3_ENDPOINT,
		AuthDetails:   config.S3_KEY + ":" + config.S3_SECRET,
		SSEEncryption: config.S3_SSE,
	})
	if err != nil {
		log.Fatalf("Storage: %v", err)
	}
	// Probes are always local, even when faces are kept in S3
	if err = store.EnsureDirExists(config.MEDIA_ROOT); err != nil {
		log.Fatalf("Media root: %v", err)
	}
	db.Init(config.MYSQL_DSN, sqliteFile)
	faceIndex, err := index.New(db.Instance)
	if err != nil {
		log.Fatalf("Face index: %v", err)
	}
	detector, err := dlib.NewDetector(config.MODELS_DIR, config.TMP_DIR, uint(config.FACE_MAX_IMAGE_SIZE), config.FACE_DETECT_CNN)
	if err != nil {
		log.Fatalf("Face detector: %v", err)
	}
	defer detector.Close()

	handlers.Init(&processing.Pipeline{
		Storage:       store,
		Detector:      detector,
		Index:         faceIndex,
		FacesDir:      config.FACES_DIR,
		ProbeDir:      config.MEDIA_ROOT,
		MaxDistanceSq: config.FACE_MAX_DISTANCE_SQ,
	}, config.MAX_UPLOAD_IMAGES)

	router := setupRouter()
	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
