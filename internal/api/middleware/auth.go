package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserType = "X-User-Type"

	msgMissingUser     = "Missing user ID"
	msgInvalidUserType = "Invalid user type"
)

type actorKey struct{}

// Auth извлекает актора из заголовков X-User-ID и X-User-Type.
// Аутентификация выполняется снаружи (gateway), здесь только идентификация.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			handlers.RespondUnauthorized(w, msgMissingUser)
			return
		}

		userType := domain.UserType(strings.ToUpper(strings.TrimSpace(r.Header.Get(HeaderUserType))))
		if userType == "" {
			userType = domain.UserTypePatient
		}
		if !userType.IsValid() {
			handlers.RespondUnauthorized(w, msgInvalidUserType)
			return
		}

		actor := domain.Actor{UserID: userID, UserType: userType}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor кладёт актора в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor возвращает актора, установленного Auth
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}
