package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/user"
)

const (
	sessionCookieName = "session"
	ctxUserKey        = "user"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

func setSessionCookie(ctx echo.Context, token string, expiry time.Time) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isSecure(ctx),
	})
}

func clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isSecure(ctx),
	})
}

// isSecure also trusts the proxy's forwarded scheme; the app normally
// sits behind TLS termination.
func isSecure(ctx echo.Context) bool {
	return ctx.Request().TLS != nil ||
		ctx.Request().Header.Get(echo.HeaderXForwardedProto) == "https"
}

// sessionMiddleware resolves the session cookie to its user and hangs
// them on the request context. Anonymous requests pass through; a stale
// cookie is cleared on the way.
func sessionMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(ctx)
			}
			usr, err := svc.Authenticate(cookie.Value)
			if err != nil {
				if errors.Cause(err) == user.ErrNoSession {
					clearSessionCookie(ctx)
					return next(ctx)
				}
				return errors.Wrap(err, "resolving session")
			}
			ctx.Set(ctxUserKey, usr)
			return next(ctx)
		}
	}
}

// requireRole gates a route group on an authenticated user of the given
// role. Anonymous callers go back to the entry page; a user of the
// other role is sent to their own home rather than shown an error.
func requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return ctx.Redirect(http.StatusSeeOther, "/")
			}
			if usr.Role != role {
				return ctx.Redirect(http.StatusSeeOther, roleHome(usr))
			}
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	usr, ok := ctx.Get(ctxUserKey).(user.User)
	if !ok {
		return user.User{}, errUsrNotFoundInCtx
	}
	return usr, nil
}

func roleHome(usr user.User) string {
	if usr.IsTeacher() {
		return "/teacher"
	}
	return "/student"
}

// Handlers

func (s *Server) signup(ctx echo.Context) error {
	var data user.Signup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Signup")
	}

	usr, token, expiry, err := s.deps.UserSvc.Signup(data)
	if err != nil {
		if errors.Cause(err) == user.ErrIDNumberExists {
			// no session, no cookie; the caller is told why
			return core.NewConflictError(user.ErrIDNumberExists, data.Values())
		}
		return err
	}

	setSessionCookie(ctx, token, expiry)
	return ctx.Redirect(http.StatusSeeOther, roleHome(usr))
}

func (s *Server) login(ctx echo.Context) error {
	var data user.Login
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Login")
	}

	usr, token, expiry, err := s.deps.UserSvc.Login(data)
	if err != nil {
		if errors.Cause(err) == user.ErrAuthenticationFailed {
			return core.NewValidationErrorWithValues(user.ErrAuthenticationFailed, data.Values())
		}
		return err
	}

	setSessionCookie(ctx, token, expiry)
	return ctx.Redirect(http.StatusSeeOther, roleHome(usr))
}

func (s *Server) logout(ctx echo.Context) error {
	if cookie, err := ctx.Cookie(sessionCookieName); err == nil {
		if err = s.deps.UserSvc.Logout(cookie.Value); err != nil {
			return errors.Wrap(err, "logging out")
		}
	}
	clearSessionCookie(ctx)
	return ctx.Redirect(http.StatusSeeOther, "/")
}
