// Package auth implements Google OAuth login for catalog administrators and
// the middleware that gates the admin API.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ignite/software-catalog/internal/config"
	"github.com/ignite/software-catalog/internal/pkg/httpretry"
	"github.com/ignite/software-catalog/internal/pkg/httputil"
	"github.com/ignite/software-catalog/internal/pkg/logger"
)

// DevActor is the actor ID used for every request in dev mode.
const DevActor = "dev@local"

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUserInfo represents the user info returned by Google
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	HD            string `json:"hd"` // Hosted domain (GSuite domain)
}

// Session represents an authenticated admin session
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type actorKey struct{}

// ActorFromContext returns the e-mail of the admin making the request, or
// "" when the request did not pass through RequireAdmin.
func ActorFromContext(ctx context.Context) string {
	v, _ := ctx.Value(actorKey{}).(string)
	return v
}

// WithActor returns a context carrying the actor ID.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// AuthManager handles Google OAuth authentication
type AuthManager struct {
	config       *config.AuthConfig
	oauth2Config *oauth2.Config
	sessions     map[string]*Session
	sessionMu    sync.RWMutex
	admins       map[string]bool
	userInfoURL  string
}

// NewAuthManager creates a new authentication manager
func NewAuthManager(cfg *config.AuthConfig, baseURL string) *AuthManager {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  baseURL + "/auth/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}

	return &AuthManager{
		config:       cfg,
		oauth2Config: oauth2Config,
		sessions:     make(map[string]*Session),
		admins:       admins,
		userInfoURL:  userInfoURL,
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// IsAdmin reports whether email may use the admin API. An explicit admin
// list wins; without one, any address in the allowed domain qualifies.
func (am *AuthManager) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if len(am.admins) > 0 {
		return am.admins[email]
	}
	if am.config.AllowedDomain == "" {
		return false
	}
	_, domain, ok := strings.Cut(email, "@")
	return ok && domain == strings.ToLower(am.config.AllowedDomain)
}

// HandleLogin initiates the Google OAuth flow
func (am *AuthManager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomToken()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if am.config.AllowedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", am.config.AllowedDomain))
	}
	http.Redirect(w, r, am.oauth2Config.AuthCodeURL(state, opts...), http.StatusTemporaryRedirect)
}

// HandleCallback processes the OAuth callback from Google
func (am *AuthManager) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		logger.Warn("auth: invalid oauth state")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		logger.Warn("auth: google returned error", "error", errMsg)
		http.Redirect(w, r, "/?error="+url.QueryEscape(errMsg), http.StatusTemporaryRedirect)
		return
	}

	token, err := am.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Error("auth: code exchange failed", "error", err)
		http.Redirect(w, r, "/?error=exchange_failed", http.StatusTemporaryRedirect)
		return
	}

	userInfo, err := am.getUserInfo(r.Context(), token)
	if err != nil {
		logger.Error("auth: user info failed", "error", err)
		http.Redirect(w, r, "/?error=userinfo_failed", http.StatusTemporaryRedirect)
		return
	}

	if !userInfo.VerifiedEmail || !am.IsAdmin(userInfo.Email) {
		logger.Warn("auth: login rejected", "email", userInfo.Email)
		http.Redirect(w, r, "/?error=not_authorized", http.StatusTemporaryRedirect)
		return
	}

	sessionID, err := am.createSession(userInfo)
	if err != nil {
		logger.Error("auth: session creation failed", "error", err)
		http.Redirect(w, r, "/?error=session_failed", http.StatusTemporaryRedirect)
		return
	}
	logger.Info("auth: admin logged in", "email", userInfo.Email)

	http.SetCookie(w, &http.Cookie{
		Name:     am.config.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   am.config.CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func (am *AuthManager) createSession(u *GoogleUserInfo) (string, error) {
	id, err := randomToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	am.sessionMu.Lock()
	am.sessions[id] = &Session{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(am.config.CookieMaxAge) * time.Second),
	}
	am.sessionMu.Unlock()
	return id, nil
}

// HandleLogout logs out the user
func (am *AuthManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(am.config.CookieName); err == nil {
		am.sessionMu.Lock()
		delete(am.sessions, cookie.Value)
		am.sessionMu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:   am.config.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleUserInfo returns the current user's info as JSON
func (am *AuthManager) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	if am.config.DevMode {
		httputil.OK(w, map[string]any{
			"authenticated": true,
			"user":          map[string]string{"email": DevActor, "name": "Developer"},
		})
		return
	}
	session := am.GetSession(r)
	if session == nil {
		httputil.JSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	httputil.OK(w, map[string]any{
		"authenticated": true,
		"user": map[string]string{
			"id":      session.UserID,
			"email":   session.Email,
			"name":    session.Name,
			"picture": session.Picture,
		},
	})
}

// GetSession returns the session for the current request, or nil if not authenticated
func (am *AuthManager) GetSession(r *http.Request) *Session {
	cookie, err := r.Cookie(am.config.CookieName)
	if err != nil {
		return nil
	}

	am.sessionMu.RLock()
	session, exists := am.sessions[cookie.Value]
	am.sessionMu.RUnlock()
	if !exists {
		return nil
	}

	if time.Now().After(session.ExpiresAt) {
		am.sessionMu.Lock()
		delete(am.sessions, cookie.Value)
		am.sessionMu.Unlock()
		return nil
	}
	return session
}

// RequireAdmin rejects requests without an admin session with 401 and puts
// the admin's e-mail into the request context otherwise.
func (am *AuthManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if am.config.DevMode {
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), DevActor)))
			return
		}
		session := am.GetSession(r)
		if session == nil || !am.IsAdmin(session.Email) {
			httputil.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), session.Email)))
	})
}

// getUserInfo fetches the user's profile from Google
func (am *AuthManager) getUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, am.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpretry.New(am.oauth2Config.Client(ctx, token)).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error: %s", string(body))
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &userInfo, nil
}

// CleanupExpiredSessions removes expired sessions every interval until ctx
// is done.
func (am *AuthManager) CleanupExpiredSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				am.removeExpired(time.Now())
			}
		}
	}()
}

func (am *AuthManager) removeExpired(now time.Time) int {
	am.sessionMu.Lock()
	defer am.sessionMu.Unlock()
	n := 0
	for id, session := range am.sessions {
		if now.After(session.ExpiresAt) {
			delete(am.sessions, id)
			n++
		}
	}
	return n
}
