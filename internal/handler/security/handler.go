package security

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-security/internal/middleware"
	"github.com/jwalitptl/admin-security/internal/model"
	securitysvc "github.com/jwalitptl/admin-security/internal/service/security"
	apperrors "github.com/jwalitptl/admin-security/pkg/errors"
	"github.com/jwalitptl/admin-security/pkg/httputil"
)

type Handler struct {
	service securitysvc.SecurityServicer
}

func NewHandler(service securitysvc.SecurityServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the back office routes. The group is expected to
// be authenticated.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sec := r.Group("/security")
	{
		sec.GET("/parameters", h.GetParameters)
		sec.PUT("/parameters", h.UpdateParameters)
		sec.POST("/advanced", h.EnableAdvanced)
		sec.DELETE("/advanced", h.DisableAdvanced)
		sec.GET("/expiry", h.GetExpiry)
		sec.POST("/passwords/admin/validate", h.ValidateAdminPassword)
		sec.GET("/access/:login", h.CheckAccess)
	}
}

// RegisterUserRoutes registers the end user password routes.
func (h *Handler) RegisterUserRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("/:id/password/validate", h.ValidateUserPassword)
		users.PUT("/:id/password", h.ChangePassword)
	}
}

func actor(c *gin.Context) string {
	if email := c.GetString(middleware.ContextEmail); email != "" {
		return email
	}
	return c.GetString(middleware.ContextSubject)
}

func userID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.BadRequest("invalid user ID", err))
		return 0, false
	}
	return id, true
}

func bindPassword(c *gin.Context) (string, bool) {
	var req model.PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("invalid request body", err))
		return "", false
	}
	return req.Password, true
}

func (h *Handler) respondWithParameters(c *gin.Context) {
	view, err := h.service.GetParameters(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) GetParameters(c *gin.Context) {
	h.respondWithParameters(c)
}

func (h *Handler) UpdateParameters(c *gin.Context) {
	var req model.UpdateParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("invalid request body", err))
		return
	}

	if err := h.service.UpdateParameters(c.Request.Context(), actor(c), req.Values); err != nil {
		_ = c.Error(err)
		return
	}
	h.respondWithParameters(c)
}

func (h *Handler) EnableAdvanced(c *gin.Context) {
	if err := h.service.EnableAdvanced(c.Request.Context(), actor(c)); err != nil {
		_ = c.Error(err)
		return
	}
	h.respondWithParameters(c)
}

func (h *Handler) DisableAdvanced(c *gin.Context) {
	if err := h.service.DisableAdvanced(c.Request.Context(), actor(c)); err != nil {
		_ = c.Error(err)
		return
	}
	h.respondWithParameters(c)
}

func (h *Handler) GetExpiry(c *gin.Context) {
	resp, err := h.service.ExpiryDates(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) ValidateAdminPassword(c *gin.Context) {
	password, ok := bindPassword(c)
	if !ok {
		return
	}

	outcome, err := h.service.ValidateAdminPassword(c.Request.Context(), password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, model.PasswordCheckResponse{Outcome: outcome.String(), Valid: outcome.IsValid()})
}

func (h *Handler) CheckAccess(c *gin.Context) {
	login := c.Param("login")
	locked, err := h.service.CheckAccess(c.Request.Context(), login)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, model.AccessResponse{Login: login, Locked: locked})
}

func (h *Handler) ValidateUserPassword(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	password, ok := bindPassword(c)
	if !ok {
		return
	}

	outcome, err := h.service.ValidateUserPassword(c.Request.Context(), id, password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, model.PasswordCheckResponse{Outcome: outcome.String(), Valid: outcome.IsValid()})
}

// ChangePassword answers 422 when the password breaks a rule.
func (h *Handler) ChangePassword(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	password, ok := bindPassword(c)
	if !ok {
		return
	}

	outcome, expiresAt, err := h.service.ChangePassword(c.Request.Context(), id, password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := model.PasswordChangeResponse{
		PasswordCheckResponse: model.PasswordCheckResponse{Outcome: outcome.String(), Valid: outcome.IsValid()},
		PasswordExpiresAt:     expiresAt,
	}
	if !outcome.IsValid() {
		httputil.RespondWithStatus(c, http.StatusUnprocessableEntity, resp)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}
