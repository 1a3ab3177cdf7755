package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/middleware"
	"github.com/projectoasis/hydroflow/models"
)

// oauthClient bounds every upstream call so a stalled provider cannot
// hold request goroutines open.
var oauthClient = &http.Client{Timeout: 10 * time.Second}

type oauthProvider struct {
	name         string
	authURL      string
	tokenURL     string
	userInfoURL  string
	scope        string
	clientIDVar  string
	secretVar    string
	redirectPath string
}

var oauthProviders = map[string]oauthProvider{
	"google": {
		name:         "google",
		authURL:      "https://accounts.google.com/o/oauth2/v2/auth",
		tokenURL:     "https://oauth2.googleapis.com/token",
		userInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
		scope:        "openid email profile",
		clientIDVar:  "GOOGLE_CLIENT_ID",
		secretVar:    "GOOGLE_CLIENT_SECRET",
		redirectPath: "/api/auth/google/callback",
	},
	"github": {
		name:         "github",
		authURL:      "https://github.com/login/oauth/authorize",
		tokenURL:     "https://github.com/login/oauth/access_token",
		userInfoURL:  "https://api.github.com/user",
		scope:        "user:email",
		clientIDVar:  "GITHUB_CLIENT_ID",
		secretVar:    "GITHUB_CLIENT_SECRET",
		redirectPath: "/api/auth/github/callback",
	},
}

func (p oauthProvider) redirectURI() string {
	base := os.Getenv("BACKEND_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return strings.TrimRight(base, "/") + p.redirectPath
}

// OAuthRedirect sends the browser to the provider's consent page.
func OAuthRedirect(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := oauthProviders[provider]
		if !ok {
			writeError(w, http.StatusNotFound, "unknown provider")
			return
		}
		clientID := os.Getenv(p.clientIDVar)
		if clientID == "" {
			writeError(w, http.StatusServiceUnavailable, provider+" login is not configured")
			return
		}
		q := url.Values{}
		q.Set("client_id", clientID)
		q.Set("redirect_uri", p.redirectURI())
		q.Set("response_type", "code")
		q.Set("scope", p.scope)
		http.Redirect(w, r, p.authURL+"?"+q.Encode(), http.StatusFound)
	}
}

type oauthTokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error"`
}

// providerID tolerates both encodings in the wild: GitHub sends a JSON
// number, Google a string.
type providerID string

func (p *providerID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = providerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = providerID(n.String())
	return nil
}

type oauthUserInfo struct {
	ID    providerID `json:"id"`
	Email string     `json:"email"`
}

func (p oauthProvider) exchangeCode(code string) (*oauthTokenResp, error) {
	form := url.Values{}
	form.Set("client_id", os.Getenv(p.clientIDVar))
	form.Set("client_secret", os.Getenv(p.secretVar))
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", p.redirectURI())

	req, err := http.NewRequest(http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := oauthClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tok oauthTokenResp
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, err
	}
	if tok.Error != "" || tok.AccessToken == "" {
		return nil, fmt.Errorf("token exchange failed: %s", tok.Error)
	}
	return &tok, nil
}

func (p oauthProvider) fetchUserInfo(accessToken string) (*oauthUserInfo, error) {
	req, err := http.NewRequest(http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := oauthClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned %d", resp.StatusCode)
	}

	var info oauthUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, fmt.Errorf("provider returned no email")
	}
	return &info, nil
}

// OAuthCallback finishes the code exchange, links or creates the admin
// account and redirects back to the frontend with a session token. Any
// upstream failure fails closed: no token, no account.
func OAuthCallback(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := oauthProviders[provider]
		if !ok {
			writeError(w, http.StatusNotFound, "unknown provider")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			writeError(w, http.StatusBadRequest, "missing code")
			return
		}

		tok, err := p.exchangeCode(code)
		if err != nil {
			logrus.WithError(err).WithField("provider", p.name).Warn("oauth code exchange failed")
			writeError(w, http.StatusUnauthorized, "authentication failed")
			return
		}
		info, err := p.fetchUserInfo(tok.AccessToken)
		if err != nil {
			logrus.WithError(err).WithField("provider", p.name).Warn("oauth userinfo fetch failed")
			writeError(w, http.StatusUnauthorized, "authentication failed")
			return
		}

		oauthID := p.name + ":" + string(info.ID)
		admin, err := findOrCreateOAuthAdmin(oauthID, info.Email)
		if err != nil {
			writeDBError(w, err)
			return
		}

		expires := time.Now().Add(time.Hour)
		admin.OAuthID = &oauthID
		admin.AccessToken = &tok.AccessToken
		admin.TokenExpiresAt = &expires
		if tok.RefreshToken != "" {
			admin.RefreshToken = &tok.RefreshToken
		}
		if err := config.DB.Save(admin).Error; err != nil {
			writeDBError(w, err)
			return
		}

		jwtToken, err := middleware.GenerateToken(admin)
		if err != nil {
			logrus.WithError(err).Error("token signing failed")
			writeError(w, http.StatusInternalServerError, "couldn't create token")
			return
		}
		http.Redirect(w, r, config.FrontendURL()+"/oauth/callback?token="+url.QueryEscape(jwtToken), http.StatusFound)
	}
}

// findOrCreateOAuthAdmin matches by provider identity first, then by
// email so an existing password account gets linked rather than
// duplicated. Brand-new accounts get a random unusable password.
func findOrCreateOAuthAdmin(oauthID, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := config.DB.Where("oauth_id = ?", oauthID).First(&admin).Error; err == nil {
		return &admin, nil
	}
	if err := config.DB.Where("email = ?", email).First(&admin).Error; err == nil {
		return &admin, nil
	}

	admin = models.Admin{Email: email, IsAdmin: true}
	if err := admin.SetPassword(middleware.RandomSecret()); err != nil {
		return nil, err
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}
