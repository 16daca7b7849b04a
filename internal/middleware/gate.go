package middleware

import (
	"net/http"
	"strings"
)

// Пути, известные шлюзу сессий.
const (
	ProtectedPrefix = "/dashboard"
	LoginPath       = "/login"
	DashboardPath   = "/dashboard"
)

// Decision описывает решение шлюза сессий по запросу.
type Decision int

const (
	// DecisionAllow пропускает запрос к обработчику маршрута.
	DecisionAllow Decision = iota
	// DecisionDeny отклоняет запрос: нет сессии на защищённом пути.
	DecisionDeny
	// DecisionRedirect уводит аутентифицированного пользователя с публичной страницы.
	DecisionRedirect
)

// Decide принимает решение о допуске запроса по наличию сессии и пути.
// Предикат не имеет состояния и выполняется до кода маршрута, поэтому
// защищённые ресурсы не рендерятся и не опрашивают базу для анонимов.
func Decide(sessionPresent bool, path string) (Decision, string) {
	if strings.HasPrefix(path, ProtectedPrefix) {
		if sessionPresent {
			return DecisionAllow, ""
		}
		return DecisionDeny, ""
	}

	if sessionPresent {
		return DecisionRedirect, DashboardPath
	}

	return DecisionAllow, ""
}

// SessionGate применяет решение шлюза к каждому запросу до маршрутизации.
// Запросы к /api шлюз не трогает: вход и выход из системы должны работать
// в любом состоянии сессии.
type SessionGate struct {
	sessions *SessionManager
}

// NewSessionGate создаёт шлюз поверх указанного менеджера сессий.
func NewSessionGate(sessions *SessionManager) *SessionGate {
	return &SessionGate{sessions: sessions}
}

// Middleware проверяет допуск запроса и кладёт идентификатор пользователя
// в контекст для разрешённых аутентифицированных запросов.
func (g *SessionGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		userID, present := g.sessions.UserIDFromRequest(r)

		decision, target := Decide(present, r.URL.Path)
		switch decision {
		case DecisionDeny:
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		case DecisionRedirect:
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		if present {
			r = r.WithContext(withUserID(r.Context(), userID))
		}

		next.ServeHTTP(w, r)
	})
}
