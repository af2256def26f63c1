package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"carehub/config"
	"carehub/internal/repository"
	"carehub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo?id_token="
	oauthStateCookie   = "carehub_oauth_state"
)

// GoogleOAuthHandler signs family members in with their Google account.
type GoogleOAuthHandler struct {
	cfg       *config.Config
	authSvc   *service.AuthService
	auditRepo *repository.AuditLogRepository
	log       *zap.Logger
	client    *http.Client
}

func NewGoogleOAuthHandler(cfg *config.Config, authSvc *service.AuthService, auditRepo *repository.AuditLogRepository, log *zap.Logger) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		cfg:       cfg,
		authSvc:   authSvc,
		auditRepo: auditRepo,
		log:       log,
		client:    http.DefaultClient,
	}
}

func (h *GoogleOAuthHandler) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.OAuth.GoogleClientID,
		ClientSecret: h.cfg.OAuth.GoogleClientSecret,
		RedirectURL:  h.cfg.OAuth.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func (h *GoogleOAuthHandler) configured(c *gin.Context) bool {
	if h.cfg.OAuth.GoogleClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google OAuth not configured"})
		return false
	}
	return true
}

// Redirect sends the browser to the Google consent screen.
func (h *GoogleOAuthHandler) Redirect(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.cfg.Server.Env == "production", true)
	c.Redirect(http.StatusFound, h.OAuth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline))
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Callback exchanges the code, fetches the profile and returns our own tokens.
func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	if state, err := c.Cookie(oauthStateCookie); err != nil || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	ctx := c.Request.Context()
	conf := h.OAuth2Config()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exchange failed"})
		return
	}
	resp, err := conf.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		h.log.Warn("google userinfo request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.ID == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid user info"})
		return
	}
	h.finish(c, info.ID, info.Email, info.Name, "google_oauth_login")
}

type tokeninfoResponse struct {
	Sub   string `json:"sub"`
	Aud   string `json:"aud"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Token accepts an ID token from the mobile google_sign_in flow.
func (h *GoogleOAuthHandler) Token(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_token required"})
		return
	}
	httpReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, googleTokenInfoURL+url.QueryEscape(req.IDToken), nil)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	resp, err := h.client.Do(httpReq)
	if err != nil {
		h.log.Warn("google tokeninfo request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "token verification failed"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id_token", "detail": string(body)})
		return
	}
	var info tokeninfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid token response"})
		return
	}
	if info.Sub == "" || info.Email == "" || info.Aud != h.cfg.OAuth.GoogleClientID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token payload"})
		return
	}
	h.finish(c, info.Sub, info.Email, info.Name, "google_oauth_token")
}

func (h *GoogleOAuthHandler) finish(c *gin.Context, googleID, email, name, action string) {
	u, tokens, isNew, err := h.authSvc.LoginWithGoogle(c.Request.Context(), googleID, email, name)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeAudit(c, h.auditRepo, h.log, u.ID, action)
	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"user":          u,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
		"is_new":        isNew,
	})
}
