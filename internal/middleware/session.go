// Package middleware содержит HTTP middleware панели управления счетами.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "userID"

const (
	sessionCookieName = "session_token"
	sessionCookieTTL  = 24 * time.Hour
)

// SessionManager выпускает и проверяет подписанные cookie сессии.
// Сессия не хранится на сервере: cookie несёт идентификатор пользователя
// и HMAC-подпись, проверяемую на каждом запросе.
type SessionManager struct {
	secretKey []byte
}

// NewSessionManager создаёт менеджер сессий с указанным секретным ключом.
func NewSessionManager(secret string) *SessionManager {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &SessionManager{
		secretKey: key,
	}
}

// SetSessionCookie устанавливает cookie сессии для указанного пользователя.
func (s *SessionManager) SetSessionCookie(w http.ResponseWriter, userID uuid.UUID) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.sign(userID.String()),
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

// ClearSessionCookie завершает сессию, затирая cookie.
func (s *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

// UserIDFromRequest извлекает идентификатор пользователя из cookie запроса.
// Возвращает false, если cookie отсутствует или подпись не совпадает.
func (s *SessionManager) UserIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return uuid.Nil, false
	}
	return s.parse(cookie.Value)
}

func (s *SessionManager) sign(id string) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(id))
	signature := mac.Sum(nil)
	return id + "." + hex.EncodeToString(signature)
}

func (s *SessionManager) parse(cookieValue string) (uuid.UUID, bool) {
	idStr, signature, ok := strings.Cut(cookieValue, ".")
	if !ok {
		return uuid.Nil, false
	}

	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(idStr))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

// GetUserIDFromContext извлекает идентификатор пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func withUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
