package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

// StorefrontProvider hands out the stores of a browsing session.
type StorefrontProvider interface {
	Get(ctx context.Context, sessionID string) (*service.Storefront, error)
}

// storefrontFor resolves the storefront of the request, writing the error
// response itself when it cannot.
func storefrontFor(w http.ResponseWriter, r *http.Request, storefronts StorefrontProvider) (*service.Storefront, *slog.Logger, bool) {
	logger := middleware.LoggerFromContext(r.Context())

	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		logger.Error("Request reached a handler without a storefront session")
		response.Error(w, errors.InternalError("Browsing session missing"))

		return nil, logger, false
	}

	sf, err := storefronts.Get(r.Context(), sessionID)
	if err != nil {
		logger.Error("Failed to load storefront", slog.Any("error", err))
		response.Error(w, err)

		return nil, logger, false
	}

	if session := sf.Auth.Current(); session != nil {
		logger = logger.With(slog.String("userID", session.UserID.String()))
	}

	return sf, logger, true
}

func badRequest(err error) *errors.AppError {
	return errors.BadRequestError(err.Error()).WithError(err)
}
