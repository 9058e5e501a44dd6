package response

import "github.com/gin-gonic/gin"

// Envelope é o formato de toda resposta da API: {success, data?, error?}.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

// Unauthorized monta o corpo usado pelo middleware de autenticação.
func Unauthorized() Envelope {
	return Envelope{Success: false, Error: &ErrorBody{Code: "UNAUTHORIZED", Message: "Invalid API key"}}
}
