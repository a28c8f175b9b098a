package utils

import "github.com/gin-gonic/gin"

// NoCache marks every response as not cacheable, recognition results depend on the current store
func NoCache(c *gin.Context) {
	c.Header("cache-control", "no-cache")
	c.Next()
}
