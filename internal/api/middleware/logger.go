package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

var stripNewlines = strings.NewReplacer("\n", "", "\r", "").Replace

// Logger logs one line per request: request id, method, path, status,
// response size and duration. Method and path are stripped of CR/LF.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		prefix := ""
		if id := chimiddleware.GetReqID(r.Context()); id != "" {
			prefix = "[" + id + "] "
		}
		//nolint:gosec // G706: method and path have CR/LF removed.
		log.Printf("%s%s %s %d %dB %s",
			prefix,
			stripNewlines(r.Method),
			stripNewlines(r.URL.Path),
			rec.status,
			rec.bytes,
			time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
