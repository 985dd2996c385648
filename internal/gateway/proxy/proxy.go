package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Route maps a gateway path prefix to a backend service.
type Route struct {
	// Prefix is the gin wildcard route, e.g. "/api/videos/*path".
	Prefix string
	// Target is the backend base URL.
	Target string
}

// Handler returns a gin handler that forwards the request to the route's
// backend. Identity reaches the backend only through the headers the
// authentication filter injected; by the time a request gets here the
// raw bearer token is already stripped.
func Handler(target string, log *zap.Logger) (gin.HandlerFunc, error) {
	backend, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	rp := httputil.NewSingleHostReverseProxy(backend)
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("backend unreachable",
			zap.String("target", target),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"bad_gateway","message":"backend service unavailable"}`))
	}

	return func(c *gin.Context) {
		rp.ServeHTTP(c.Writer, c.Request)
	}, nil
}
