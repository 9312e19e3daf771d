package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fichaflow/api/shared/appctx"
	"fichaflow/api/shared/web"
	"fichaflow/infrastructure/cache"
	"fichaflow/infrastructure/sqlite"
	"fichaflow/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

// LoginHandler authenticates the user and issues a bearer session token.
func LoginHandler(db *sqlite.DB, sessionCache *cache.SessionCache, userCache *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.Error(w, http.StatusBadRequest, "cuerpo de solicitud invalido")
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || req.Password == "" {
			web.Error(w, http.StatusBadRequest, "email y contraseña son requeridos")
			return
		}

		user, err := authenticateUser(r.Context(), db, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				web.Error(w, http.StatusUnauthorized, "credenciales inválidas")
				return
			}
			web.Internal(w, "login failed", err)
			return
		}

		session := models.Session{
			ID:        newSessionToken(),
			UserID:    user.ID,
			User:      user,
			ExpiresAt: time.Now().Add(SessionTTL),
		}
		if err := persistSession(r.Context(), db, session); err != nil {
			web.Internal(w, "persist session failed", err)
			return
		}

		sessionCache.Add(session)
		userCache.Add(user.Email, user)

		web.JSON(w, http.StatusOK, loginResponse{
			Message: "Login exitoso",
			Token:   session.ID,
			User:    user,
		})
	}
}

// VerifyHandler echoes the authenticated user back to the caller. The
// auth middleware has already resolved and validated the token.
func VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := appctx.GetSessionFromContext(r.Context())
		if !ok {
			web.Error(w, http.StatusUnauthorized, "token inválido")
			return
		}
		web.JSON(w, http.StatusOK, map[string]any{"user": session.User})
	}
}

// LogoutHandler invalidates the presented session token.
func LogoutHandler(db *sqlite.DB, sessionCache *cache.SessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := appctx.GetSessionFromContext(r.Context())
		if !ok {
			web.Error(w, http.StatusUnauthorized, "token inválido")
			return
		}
		sessionCache.Delete(session.ID)
		if err := DeleteSessionByToken(r.Context(), db, session.ID); err != nil {
			web.Internal(w, "delete session failed", err)
			return
		}
		web.JSON(w, http.StatusOK, map[string]string{"message": "Sesión cerrada"})
	}
}
