package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"brokerage/src/models"
	"brokerage/src/services"
	"brokerage/src/utils"

	"github.com/go-chi/jwtauth"
)

type contextKey string

const currentUserKey = contextKey("currentUser")

// CurrentUser is the authenticated caller, with the role resolved through the
// role registry.
type CurrentUser struct {
	User *models.User
	Role models.Role
}

func (c CurrentUser) Viewer() services.Viewer {
	return services.Viewer{UserID: c.User.ID, Role: c.Role}
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

func CurrentUserFromContext(ctx context.Context) (CurrentUser, bool) {
	user, ok := ctx.Value(currentUserKey).(CurrentUser)
	return user, ok
}

// UserLoader is the part of the account service the authenticator needs.
type UserLoader interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// Authenticator turns a verified bearer token into a CurrentUser. The token
// subject is the user id.
type Authenticator struct {
	tokenAuth *jwtauth.JWTAuth
	users     UserLoader
	roles     *models.RoleRegistry
}

func NewAuthenticator(secret string, users UserLoader, roles *models.RoleRegistry) *Authenticator {
	return &Authenticator{
		tokenAuth: jwtauth.New("HS256", []byte(secret), nil),
		users:     users,
		roles:     roles,
	}
}

// Verifier validates the signature and expiry of the bearer token.
func (a *Authenticator) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(a.tokenAuth)
}

// IssueToken signs a token for userID. Used by tooling and tests; logging in
// is handled outside this service.
func (a *Authenticator) IssueToken(userID int64) (string, error) {
	_, token, err := a.tokenAuth.Encode(map[string]interface{}{"sub": strconv.FormatInt(userID, 10)})
	return token, err
}

// Authenticate must run after Verifier.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, claims, err := jwtauth.FromContext(ctx)
		if err != nil || token == nil {
			utils.WriteError(w, utils.Unauthorized("invalid or missing token"))
			return
		}
		sub, _ := claims["sub"].(string)
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			utils.WriteError(w, utils.Unauthorized("invalid token subject"))
			return
		}

		user, err := a.users.GetUser(ctx, userID)
		if errors.Is(err, services.ErrUserNotFound) {
			utils.WriteError(w, utils.Unauthorized("unknown user"))
			return
		} else if err != nil {
			utils.LoggerFromContext(ctx).WithError(err).Error("failed to load authenticated user")
			utils.WriteError(w, utils.ServiceUnavailable("failed to load user"))
			return
		}

		ctx = WithCurrentUser(ctx, CurrentUser{User: user, Role: a.roles.Resolve(user.RoleID)})
		ctx = utils.WithLogger(ctx, utils.LoggerFromContext(ctx).WithField("user_id", user.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, ok := CurrentUserFromContext(r.Context())
		if !ok {
			utils.WriteError(w, utils.Unauthorized("authentication required"))
			return
		}
		if current.Role != models.RoleAdmin {
			utils.WriteError(w, utils.Forbidden("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
