package restapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

const (
	loginPath       = "/api/auth/login"
	currentUserPath = "/api/auth/me"
	passwordPath    = "/api/auth/change-password"
)

// Login exchanges operator credentials for a bearer token
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*entities.Token, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required")
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := request{
		method:      http.MethodPost,
		path:        loginPath,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		anonymous:   true,
	}

	out := &entities.Token{}
	if err := c.do(ctx, req, out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, apperrors.NewInternalError("login response carried no access token", nil)
	}
	return out, nil
}

// CurrentUser returns the operator the session belongs to
func (c *HTTPClient) CurrentUser(ctx context.Context) (*entities.User, error) {
	out := &entities.User{}
	if err := c.do(ctx, request{method: http.MethodGet, path: currentUserPath}, out); err != nil {
		return nil, err
	}
	return out, nil
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword replaces the password of the signed in operator
func (c *HTTPClient) ChangePassword(ctx context.Context, current, next string) error {
	fields := map[string]string{}
	if current == "" {
		fields["current_password"] = "Current password is required"
	}
	if next == "" {
		fields["new_password"] = "New password is required"
	} else if next == current {
		fields["new_password"] = "New password must differ from the current one"
	}
	if len(fields) > 0 {
		return apperrors.NewFieldValidationError("invalid password change", fields)
	}

	req, err := jsonRequest(http.MethodPut, passwordPath, passwordPath, changePasswordRequest{CurrentPassword: current, NewPassword: next})
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}
