package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/dgmoraes/sunday-league/internal/futsal"
	"github.com/dgmoraes/sunday-league/internal/store"
	"github.com/google/uuid"
)

type ContextKey string

const GatheringIDKey ContextKey = "gatheringID"

const moderatorSessionKey = "moderatorGatheringID"

// TokenHeader carries the moderation secret when the caller skips the
// session flow and authorizes each request directly.
const TokenHeader = "X-Moderation-Token"

// OpenModeratorSession checks the supplied token against the gathering and,
// on success, marks the session as moderator for that gathering.
func OpenModeratorSession(ctx context.Context, sessionManager *scs.SessionManager, gathering *futsal.Gathering, token string) error {
	if subtle.ConstantTimeCompare([]byte(gathering.ModerationToken), []byte(token)) != 1 {
		return futsal.ErrUnauthorizedModerator
	}
	sessionManager.Put(ctx, moderatorSessionKey, gathering.ID.String())
	return nil
}

// RequireModerator gates mutating routes. A request is authorized when its
// session holds a moderator marker for the target gathering, or when it
// carries the gathering's token in the header. The resolved gathering id is
// added to the context.
func RequireModerator(sessionManager *scs.SessionManager, gatheringStore *store.GatheringStore, resolve func(*http.Request) (uuid.UUID, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gatheringID, err := resolve(r)
			if err != nil {
				http.Error(w, "cannot resolve gathering", http.StatusBadRequest)
				return
			}

			ctx := context.WithValue(r.Context(), GatheringIDKey, gatheringID)

			if sessionManager.GetString(r.Context(), moderatorSessionKey) == gatheringID.String() {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := r.Header.Get(TokenHeader)
			if token == "" {
				http.Error(w, futsal.ErrUnauthorizedModerator.Error(), http.StatusUnauthorized)
				return
			}
			gathering, err := gatheringStore.GetGathering(r.Context(), gatheringID)
			if err != nil {
				http.Error(w, "gathering not found", http.StatusNotFound)
				return
			}
			if subtle.ConstantTimeCompare([]byte(gathering.ModerationToken), []byte(token)) != 1 {
				http.Error(w, futsal.ErrUnauthorizedModerator.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetGatheringIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(GatheringIDKey)
	if val == nil {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
