package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gastos/internal/services"
)

const (
	resetRequestedMessage  = "Si el correo existe, se envió un código."
	passwordUpdatedMessage = "Contraseña actualizada."
)

// PasswordResetHandler handles the public password reset endpoints.
type PasswordResetHandler struct {
	resetService services.PasswordResetServicer
	exposeCode   bool
}

// NewPasswordResetHandler creates a new PasswordResetHandler. When exposeCode
// is true the issued code is echoed in the response, for local development.
func NewPasswordResetHandler(resetService services.PasswordResetServicer, exposeCode bool) *PasswordResetHandler {
	return &PasswordResetHandler{resetService: resetService, exposeCode: exposeCode}
}

// ResetRequest represents the reset request payload
type ResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetRequestResponse is the generic acknowledgment of a reset request.
type ResetRequestResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ResetConfirmRequest represents the reset confirmation payload
type ResetConfirmRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// RequestReset issues a reset code
// @Summary     Request a password reset code
// @Description The response is the same whether or not the email belongs to an account
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ResetRequest true "Account email"
// @Success     200 {object} ResetRequestResponse "Acknowledged"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     429 {object} ErrorResponse "Too many requests"
// @Router      /auth/password-reset/request [post]
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	var req ResetRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	code, err := h.resetService.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := ResetRequestResponse{Message: resetRequestedMessage}
	if h.exposeCode {
		resp.Code = code
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmReset sets a new password with a valid code
// @Summary     Confirm a password reset
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ResetConfirmRequest true "Email, code and new password"
// @Success     200 {object} MessageResponse "Password updated"
// @Failure     400 {object} ErrorResponse "Invalid or expired code"
// @Failure     429 {object} ErrorResponse "Too many requests"
// @Router      /auth/password-reset/confirm [post]
func (h *PasswordResetHandler) ConfirmReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.resetService.ConfirmReset(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: passwordUpdatedMessage})
}
