package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type errorLogWriter struct {
	gin.ResponseWriter
	gc *gin.Context
}

func (w errorLogWriter) Write(b []byte) (int, error) {
	status := w.gc.Writer.Status()
	if status >= 400 {
		fields := log.Fields{
			"status": status,
			"route":  w.gc.Request.Method + " " + w.gc.FullPath(),
		}
		if userID, ok := formUserID(w.gc.Request); ok {
			fields["user_id"] = userID
		}
		log.WithFields(fields).Warnf("Request failed: %s", string(b))
	}
	return w.ResponseWriter.Write(b)
}

// formUserID returns user_id from a multipart form the handler already parsed.
// The body is never read here.
func formUserID(r *http.Request) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	v := r.MultipartForm.Value["user_id"]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// ErrorLogMiddleware logs the body of every failed response along with the route
// and, for uploads, the user it was for. Doesn't work with GZIP.
func ErrorLogMiddleware(c *gin.Context) {
	blw := &errorLogWriter{gc: c, ResponseWriter: c.Writer}
	c.Writer = blw
	c.Next()
}
