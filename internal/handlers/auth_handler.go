package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskverse/internal/models"
	"taskverse/internal/services"
	"taskverse/internal/utils"
)

const oauthStateCookie = "taskverse_oauth_state"

type AuthHandler struct {
	users  services.UserService
	resets services.PasswordResetService
	oauth  services.OAuthService // nil when Google sign-in is off
}

func NewAuthHandler(users services.UserService, resets services.PasswordResetService, oauth services.OAuthService) *AuthHandler {
	return &AuthHandler{users: users, resets: resets, oauth: oauth}
}

// Register godoc
// @Summary      Register
// @Description  Creates an email/password account and returns a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "Account"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][register] bad request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"result": models.ResultError, "error": err.Error()})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	session, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, "auth][register", err)
		return
	}
	log.Printf("[auth][register][ok] user_id=%s", session.User.ID)
	respondSuccess(c, session)
}

// Login godoc
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"result": models.ResultError, "error": err.Error()})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	log.Printf("[auth][login] attempt email=%q", req.Email)

	session, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, "auth][login", err)
		return
	}
	log.Printf("[auth][login][ok] user_id=%s dur=%s", session.User.ID, time.Since(start))
	respondSuccess(c, session)
}

// ForgotPassword godoc
// @Summary      Request a password reset
// @Description  Always succeeds so the response does not reveal whether the address is registered.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.ForgotPasswordRequest  true  "Email"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/password/forgot [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": models.ResultError, "error": err.Error()})
		return
	}
	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, "auth][forgot", err)
		return
	}
	respondMessage(c, "If the address is registered, a reset code has been sent")
}

// ResetPassword godoc
// @Summary      Set a new password with a reset code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.ResetPasswordRequest  true  "Code and new password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": models.ResultError, "error": err.Error()})
		return
	}
	if err := h.resets.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, "auth][reset", err)
		return
	}
	respondMessage(c, "Password updated")
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, "auth][me", err)
		return
	}
	respondSuccess(c, user)
}

// LinkTelegram godoc
// @Summary      Link a Telegram chat
// @Description  Reminders for the caller's tasks are delivered to the chat when notify is on.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.TelegramLinkRequest  true  "Chat"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/me/telegram [post]
func (h *AuthHandler) LinkTelegram(c *gin.Context) {
	var req models.TelegramLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": models.ResultError, "error": err.Error()})
		return
	}
	notify := true
	if req.Notify != nil {
		notify = *req.Notify
	}
	user, err := h.users.LinkTelegram(c.Request.Context(), callerID(c), req.ChatID, notify)
	if err != nil {
		respondError(c, "auth][telegram", err)
		return
	}
	log.Printf("[auth][telegram][ok] user_id=%s chat_id=%d notify=%t", user.ID, req.ChatID, notify)
	respondSuccess(c, user)
}

// GoogleLogin godoc
// @Summary      Start Google sign-in
// @Tags         auth
// @Success      307
// @Failure      404  {object}  map[string]string
// @Router       /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.oauth == nil {
		respondFail(c, http.StatusNotFound, "error", "Google sign-in is not configured")
		return
	}
	state, err := utils.NewStateToken(16)
	if err != nil {
		respondError(c, "auth][google", err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/auth/google", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

// GoogleCallback godoc
// @Summary      Google sign-in callback
// @Tags         auth
// @Produce      json
// @Param        state  query     string  true  "OAuth state"
// @Param        code   query     string  true  "Authorization code"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.oauth == nil {
		respondFail(c, http.StatusNotFound, "error", "Google sign-in is not configured")
		return
	}
	want, err := c.Cookie(oauthStateCookie)
	if err != nil || want == "" || c.Query("state") != want {
		log.Printf("[auth][google] state mismatch")
		respondFail(c, http.StatusBadRequest, "error", "Invalid OAuth state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/auth/google", "", false, true)

	code := c.Query("code")
	if code == "" {
		respondFail(c, http.StatusBadRequest, "error", "Missing code")
		return
	}
	profile, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Printf("[auth][google][err] exchange: %v", err)
		respondFail(c, http.StatusUnauthorized, "error", "Google sign-in failed")
		return
	}
	session, err := h.users.LoginWithOAuth(c.Request.Context(), h.oauth.Provider(), profile)
	if err != nil {
		respondError(c, "auth][google", err)
		return
	}
	log.Printf("[auth][google][ok] user_id=%s", session.User.ID)
	respondSuccess(c, session)
}
