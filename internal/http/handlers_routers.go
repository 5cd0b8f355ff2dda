package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mesworks/mes-auth/internal/adapters/mesbackend"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
)

// RouterScanner queries router records from the business backend.
type RouterScanner interface {
	Scan(ctx context.Context, accessToken string, scan mesbackend.ScanRequest) ([]mesbackend.RouterRecord, error)
}

// AccessTokenReader exposes the session's backend access token.
type AccessTokenReader interface {
	AccessToken(ctx context.Context) (string, error)
}

// RouterHandlers serves router/work-order data to authenticated sessions.
type RouterHandlers struct {
	Scanner RouterScanner
	Tokens  AccessTokenReader
	Logger  *slog.Logger
}

func (h *RouterHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List returns router records, optionally filtered.
// GET /api/routers?partNumber=<pn>&currentProcess=<proc>.
func (h *RouterHandlers) List(w http.ResponseWriter, r *http.Request) {
	token, err := h.Tokens.AccessToken(r.Context())
	if err != nil || token == "" {
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	scan := mesbackend.ScanRequest{
		PartNumber:     r.URL.Query().Get("partNumber"),
		CurrentProcess: r.URL.Query().Get("currentProcess"),
	}

	records, err := h.Scanner.Scan(r.Context(), token, scan)
	if err != nil {
		h.logger().WarnContext(r.Context(), "router scan failed",
			"code", apperrors.GetCode(err),
			"error", err)
		if apperrors.IsInvalidCredentials(err) {
			WriteError(w, http.StatusUnauthorized, apperrors.UserMessage(err))
			return
		}
		WriteError(w, http.StatusBadGateway, apperrors.MsgTransport)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"routers": records})
}
