package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	storefronts StorefrontProvider
	validator   *validator.Validate
}

func NewAuthHandler(storefronts StorefrontProvider) *AuthHandler {
	return &AuthHandler{storefronts: storefronts, validator: utils.NewValidator()}
}

// SessionView is what the UI learns about the signed-in user. The token
// never leaves the server.
type SessionView struct {
	Authenticated bool            `json:"authenticated"`
	User          *models.Session `json:"user,omitempty"`
}

// Login godoc
//	@Summary		Sign in
//	@Description	Authenticates against the backend and binds the session to the current browsing session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		models.LoginRequest		true	"Credentials"
//	@Success		200			{object}	SessionView				"Signed in"
//	@Failure		400			{object}	response.ErrorResponse	"Validation error"
//	@Failure		401			{object}	response.ErrorResponse	"Invalid credentials"
//	@Failure		409			{object}	response.ErrorResponse	"A sign-in is already in progress"
//	@Failure		429			{object}	response.ErrorResponse	"Too many login attempts"
//	@Failure		502			{object}	response.ErrorResponse	"Auth service unreachable"
//	@Router			/auth/login [post]
func (h *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid login input")
			return
		}

		session, err := sf.Auth.Login(r.Context(), &req)
		if err != nil {
			logger.Warn("Login failed", slog.String("email", req.Email), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, SessionView{Authenticated: true, User: session})
	}
}

// Signup godoc
//	@Summary		Create an account
//	@Description	Registers with the backend and signs the new user in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			user	body		models.SignupRequest	true	"Account details"
//	@Success		201		{object}	SessionView				"Account created and signed in"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		409		{object}	response.ErrorResponse	"Email already registered"
//	@Failure		502		{object}	response.ErrorResponse	"Auth service unreachable"
//	@Router			/auth/signup [post]
func (h *AuthHandler) Signup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		var req models.SignupRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid signup input")
			return
		}

		session, err := sf.Auth.Signup(r.Context(), &req)
		if err != nil {
			logger.Warn("Signup failed", slog.String("email", req.Email), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, SessionView{Authenticated: true, User: session})
	}
}

// Logout godoc
//	@Summary		Sign out
//	@Description	Ends the session. The cart belongs to the session and is emptied as well.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	SessionView				"Signed out"
//	@Failure		500	{object}	response.ErrorResponse	"Session could not be removed"
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, _, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		if err := sf.Auth.Logout(r.Context()); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, SessionView{})
	}
}

// Session godoc
//	@Summary	Current session
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	SessionView	"Signed-in user, if any"
//	@Router		/auth/session [get]
func (h *AuthHandler) Session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, _, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		session := sf.Auth.Current()
		response.Success(w, http.StatusOK, SessionView{Authenticated: session != nil, User: session})
	}
}
