package middleware

import (
	"fmt"
	"net/http"

	"jsoncrud/pkg/logger"
	"jsoncrud/pkg/response"

	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"
)

// Logging logs one line per request with its status, size and latency.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		logger.Log.Info("handled",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.Int("status", m.Code),
			zap.Int64("bytes", m.Written),
			zap.Duration("duration", m.Duration),
		)
	})
}

// Recovery turns a panic into the 500 envelope.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Sugar.Errorf("Server error: %v", rec)
			response.JSON(w, http.StatusInternalServerError, response.Envelope{
				Success: false,
				Message: "Internal server error",
				Error:   fmt.Sprint(rec),
			})
		}()
		next.ServeHTTP(w, r)
	})
}

// CORS allows browser clients from origin ("*" for any).
func CORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
