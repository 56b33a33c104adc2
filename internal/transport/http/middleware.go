package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"runtime/debug"
	"time"

	"github.com/YusovID/donor-match-service/pkg/logger/sl"
	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = contextKey("requestID")

	// maxLoggedCallerID bounds the header text copied into a log line.
	maxLoggedCallerID = 64
)

// requestIDRe admits gateway trace ids and UUIDs. Other values are replaced.
var requestIDRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// requestID reuses the caller's X-Request-ID when it is well formed and
// mints a UUID otherwise. The id is echoed back and stored in the context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if !requestIDRe.MatchString(requestID) {
			requestID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequest writes one line when a request arrives and one when it is
// answered. The closing line carries the status and is logged at warn for
// 4xx and at error for 5xx answers.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.log.With(
			slog.String("request_id", getRequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("caller_id", loggedCallerID(r)),
			slog.String("remote_addr", r.RemoteAddr),
		)
		log.Debug("request started", slog.String("user_agent", r.UserAgent()))

		start := time.Now()
		rw := newResponseWriterWrapper(w)

		next.ServeHTTP(rw, r)

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= http.StatusInternalServerError:
			level = slog.LevelError
		case rw.statusCode >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		log.Log(r.Context(), level, "request completed",
			slog.Int("status", rw.statusCode),
			slog.String("duration", time.Since(start).String()),
		)
	})
}

// recoverPanic answers a handler panic with the JSON 500 body and logs it
// with the request id.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			s.log.Error("handler panicked",
				slog.String("request_id", getRequestID(r.Context())),
				slog.String("path", r.URL.Path),
				sl.Err(fmt.Errorf("%v", rec)),
				slog.String("stack", string(debug.Stack())),
			)

			s.respondError(w, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}

func loggedCallerID(r *http.Request) string {
	id := r.Header.Get(callerHeader)
	if len(id) > maxLoggedCallerID {
		return id[:maxLoggedCallerID] + "..."
	}

	return id
}

func getRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey).(string); ok {
		return reqID
	}

	return ""
}
