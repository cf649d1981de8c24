package graph

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// Error is a failed Graph or token request. Code and Message are taken from the OData error
// body {"error":{"code":...,"message":...}} or, for a rejected token request, from the token
// endpoint's {"error":...,"error_description":...} body.
type Error struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v: %v %v", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Code != "" {
		msg += fmt.Sprintf(" [%v]", e.Code)
	}

	if e.Message != "" {
		msg += fmt.Sprintf(" %v", e.Message)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap converts the SDK and token errors into an *Error. Other errors (transport, context) are
// wrapped with the operation.
func wrap(op string, err error) error {
	var odata *odataerrors.ODataError
	if errors.As(err, &odata) {
		e := Error{
			Op:         op,
			StatusCode: odata.ResponseStatusCode,
			Err:        err,
		}

		if main := odata.GetErrorEscaped(); main != nil {
			e.Code = deref(main.GetCode())
			e.Message = deref(main.GetMessage())
		}

		return &e
	}

	var api *abstractions.ApiError
	if errors.As(err, &api) {
		return &Error{
			Op:         op,
			StatusCode: api.ResponseStatusCode,
			Message:    api.Message,
			Err:        err,
		}
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		e := Error{
			Op:  op,
			Err: err,
		}

		if re.Response != nil {
			e.StatusCode = re.Response.StatusCode
		}

		if gjson.ValidBytes(re.Body) {
			e.Code = gjson.GetBytes(re.Body, "error").String()
			e.Message = gjson.GetBytes(re.Body, "error_description").String()
		}

		return &e
	}

	return fmt.Errorf("%v: %w", op, err)
}

// IsAuthorization returns true if the error is (or wraps) an authorization failure: a 401 or
// 403 response, an InvalidAuthenticationToken error code, an 'invalid auth token' message or
// a rejected token request.
func IsAuthorization(err error) bool {
	if err == nil {
		return false
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		switch re.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return true
		}
	}

	var ge *Error
	if errors.As(err, &ge) {
		switch {
		case ge.StatusCode == http.StatusUnauthorized, ge.StatusCode == http.StatusForbidden:
			return true

		case strings.EqualFold(ge.Code, "InvalidAuthenticationToken"):
			return true

		case invalidToken(ge.Message):
			return true
		}
	}

	return invalidToken(err.Error())
}

// IsNotFound returns true if the error is (or wraps) a 404 response.
func IsNotFound(err error) bool {
	var ge *Error

	return errors.As(err, &ge) && ge.StatusCode == http.StatusNotFound
}

func invalidToken(msg string) bool {
	msg = strings.ToLower(msg)

	return strings.Contains(msg, "invalid auth token") || strings.Contains(msg, "invalidauthenticationtoken")
}
