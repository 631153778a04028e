package restapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

// errorFromResponse maps a non-2xx answer onto the error taxonomy.
// FastAPI style bodies carry "detail" as a string or as a list of {loc, msg}.
func errorFromResponse(status int, body []byte) *apperrors.AppError {
	message, fields := parseErrorBody(body)
	if message == "" {
		message = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.NewFieldValidationError(message, fields)
	case http.StatusUnauthorized:
		return apperrors.NewUnauthorizedError(message)
	case http.StatusNotFound:
		return apperrors.NewNotFoundError(message)
	case http.StatusConflict:
		return apperrors.NewConflictError(message)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return apperrors.NewNetworkError(message, nil)
	default:
		return apperrors.NewExternalError(fmt.Sprintf("backend returned status %d: %s", status, message), nil)
	}
}

func parseErrorBody(body []byte) (string, map[string]string) {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body)), nil
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String(), nil
	case detail.IsArray():
		fields := map[string]string{}
		var first string
		for _, item := range detail.Array() {
			msg := item.Get("msg").String()
			if msg == "" {
				continue
			}
			if first == "" {
				first = msg
			}
			if loc := item.Get("loc").Array(); len(loc) > 0 {
				fields[loc[len(loc)-1].String()] = msg
			}
		}
		if len(fields) == 0 {
			fields = nil
		}
		return first, fields
	}

	for _, key := range []string{"message", "error"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String {
			return v.String(), nil
		}
	}
	return "", nil
}
