package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/middleware"
	"github.com/projectoasis/hydroflow/models"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminPayload struct {
	ID      uuid.UUID  `json:"id"`
	Email   string     `json:"email"`
	AreaID  *uuid.UUID `json:"areaId"`
	IsAdmin bool       `json:"isAdmin"`
}

type loginResp struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    adminPayload `json:"user"`
}

func adminToPayload(a *models.Admin) adminPayload {
	return adminPayload{ID: a.ID, Email: a.Email, AreaID: a.AreaID, IsAdmin: a.IsAdmin}
}

// Login validates email/password against the stored hash and issues a
// JWT. Unknown email, wrong password and non-admin accounts all produce
// the same 401 so nothing about the account leaks.
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	var admin models.Admin
	if err := config.DB.Where("email = ? AND is_admin = ?", req.Email, true).First(&admin).Error; err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !admin.CheckPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := middleware.GenerateToken(&admin)
	if err != nil {
		logrus.WithError(err).Error("token signing failed")
		writeError(w, http.StatusInternalServerError, "couldn't create token")
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Success: true, Token: token, User: adminToPayload(&admin)})
}

// VerifyToken validates a token from either the Authorization header
// (GET) or the request body (POST) and re-checks that its subject is
// still an admin.
func VerifyToken(w http.ResponseWriter, r *http.Request) {
	var tokenStr string
	if r.Method == http.MethodPost {
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
			writeError(w, http.StatusBadRequest, "token required")
			return
		}
		tokenStr = body.Token
	} else {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenStr = strings.TrimPrefix(auth, "Bearer ")
	}

	claims, err := middleware.ParseToken(tokenStr)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	var admin models.Admin
	if err := config.DB.Where("id = ? AND is_admin = ?", claims.AdminID, true).First(&admin).Error; err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid": true,
		"user":  adminToPayload(&admin),
	})
}

// Logout is best-effort: tokens are stateless, so the client discards
// its copy and this endpoint just acknowledges.
func Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Me returns the identity behind the current token.
func Me(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r)
	if admin == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": adminToPayload(admin)})
}

type createAdminReq struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	AreaID   *uuid.UUID `json:"areaId"`
}

// CreateAdmin provisions an admin account. Disabled in production;
// operators create production accounts through seeding.
func CreateAdmin(w http.ResponseWriter, r *http.Request) {
	if os.Getenv("APP_ENV") == "production" {
		writeError(w, http.StatusForbidden, "not allowed in production")
		return
	}
	var req createAdminReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if req.AreaID != nil {
		var count int64
		if err := config.DB.Model(&models.Area{}).Where("id = ?", req.AreaID).Count(&count).Error; err != nil {
			writeDBError(w, err)
			return
		}
		if count == 0 {
			writeError(w, http.StatusBadRequest, "area not found")
			return
		}
	}

	admin := models.Admin{Email: req.Email, AreaID: req.AreaID, IsAdmin: true}
	if err := admin.SetPassword(req.Password); err != nil {
		writeError(w, http.StatusInternalServerError, "error hashing password")
		return
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"admin":   adminToPayload(&admin),
	})
}
