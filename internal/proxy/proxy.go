// Package proxy repassa para a Evolution qualquer rota que o gateway não
// implementa, preservando método, corpo e headers. É o fallback do NoRoute:
// o cliente enxerga a API completa da provider através do mesmo host.
package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flowcore-ai/flowcore/internal/config"
)

func New(cfg config.EvolutionConfig, log *zap.Logger) (gin.HandlerFunc, error) {
	target, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	rp := httputil.NewSingleHostReverseProxy(target)

	director := rp.Director
	rp.Director = func(req *http.Request) {
		director(req)
		// Equivalente ao changeOrigin: o upstream valida o Host.
		req.Host = target.Host
	}

	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("proxy: upstream indisponível",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UPSTREAM_UNAVAILABLE","message":"Evolution API indisponível"}}`))
	}

	return func(c *gin.Context) {
		log.Debug("proxy: repassando requisição",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		rp.ServeHTTP(c.Writer, c.Request)
	}, nil
}
