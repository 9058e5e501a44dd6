package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error carrega a resposta não-2xx da Evolution sem retry e sem tradução:
// o corpo fica verbatim em Body e Message é a melhor extração possível.
type Error struct {
	StatusCode int
	Path       string
	Message    string
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider: %s respondeu %d: %s", e.Path, e.StatusCode, e.Message)
}

// As extrai um *Error da cadeia de erros.
func As(err error) (*Error, bool) {
	var perr *Error
	ok := errors.As(err, &perr)
	return perr, ok
}

func newError(statusCode int, path string, body []byte) *Error {
	return &Error{
		StatusCode: statusCode,
		Path:       path,
		Message:    extractMessage(body),
		Body:       string(body),
	}
}

// extractMessage tenta os shapes de erro conhecidos da Evolution:
// {response:{message:[...]}}, {message:"..."}, {error:"..."}.
func extractMessage(body []byte) string {
	var shape struct {
		Response struct {
			Message json.RawMessage `json:"message"`
		} `json:"response"`
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &shape); err == nil {
		if msg := rawToString(shape.Response.Message); msg != "" {
			return msg
		}
		if msg := rawToString(shape.Message); msg != "" {
			return msg
		}
		if shape.Error != "" {
			return shape.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.Join(list, "; ")
	}
	return ""
}
