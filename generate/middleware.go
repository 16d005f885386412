package generate

import (
	"log/slog"
	"net/http"
	"time"
)

// logAttempt records one HTTP attempt of an SDK call. Retries show up as
// separate records.
func logAttempt(l *slog.Logger, provider string, req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	start := time.Now()
	resp, err := next(req)
	if err != nil {
		l.Debug("backend request failed", "provider", provider, "method", req.Method, "path", req.URL.Path, "took", time.Since(start), "error", err)
		return resp, err
	}
	level := slog.LevelDebug
	if resp.StatusCode >= http.StatusBadRequest {
		level = slog.LevelWarn
	}
	l.Log(req.Context(), level, "backend request", "provider", provider, "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "request_id", resp.Header.Get("x-request-id"), "took", time.Since(start))
	return resp, nil
}
