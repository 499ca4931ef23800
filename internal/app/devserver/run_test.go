package devserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewHandler_ServesRoot(t *testing.T) {
	h, err := NewHandler(Config{Port: "0", JWTSecret: "s", JWTTTL: time.Minute, Environment: "test", Seed: true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "API de Logística Farmacéutica")
}

func TestNewHandler_RejectsEmptySecret(t *testing.T) {
	_, err := NewHandler(Config{JWTTTL: time.Minute, Environment: "test"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
