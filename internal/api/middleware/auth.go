package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowcore-ai/flowcore/internal/pkg/response"
)

// Auth exige o header apikey com a chave compartilhada. É o mesmo esquema
// de autenticação que a Evolution usa, então o cliente fala os dois lados
// com o mesmo header.
func Auth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("apikey")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized())
			return
		}
		c.Next()
	}
}
