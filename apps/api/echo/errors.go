package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
	"github.com/taskit/backend/core/classroom"
	"github.com/taskit/backend/core/submission"
	"github.com/taskit/backend/core/task"
	"github.com/taskit/backend/core/user"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = echo.Map{"fields": fldErrs}
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = validationErrorPayload(origErr)
		case *core.ConflictError:
			code = http.StatusConflict
			payload := echo.Map{"error": origErr.Error()}
			if origErr.Values != nil {
				payload["values"] = origErr.Values
			}
			message = payload
		default:
			if isDomainNotFound(origErr) {
				code = http.StatusNotFound
				message = errHttpNotFound.Message
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if ctxUsr, cErr := getContextUser(ctx); cErr == nil {
				usr = ctxUsr
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// validationErrorPayload echoes the caller's submitted values back with
// the failure so the form can be re-rendered filled in.
func validationErrorPayload(vErr *core.ValidationError) echo.Map {
	payload := echo.Map{}
	if vErr.Fields != nil {
		fldErrs := make(map[string]string, len(vErr.Fields))
		for _, fErr := range vErr.Fields {
			fldErrs[fErr.Field] = fErr.Error
		}
		payload["fields"] = fldErrs
	} else {
		payload["error"] = vErr.Error()
	}
	if vErr.Values != nil {
		payload["values"] = vErr.Values
	}
	return payload
}

// isDomainNotFound folds the per-domain not-found errors together.
// Ownership failures surface as these too, indistinguishable from
// genuine nonexistence.
func isDomainNotFound(err error) bool {
	switch err {
	case user.ErrNotFound, classroom.ErrNotFound, task.ErrNotFound, submission.ErrNotFound:
		return true
	}
	return false
}
