package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var HelloResponse = MessageResponse{"Hello!"}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, HelloResponse)
}
