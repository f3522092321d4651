package contentapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// AdminProfile is the payload of the admin provisioning endpoint.
type AdminProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	PhoneNo   string `json:"phone_no"`
	Password  string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for an access token. Only 200 is accepted.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("/auth/login", nil), "", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var payload tokenResponse
	if _, err := c.do(req, "login", &payload, http.StatusOK); err != nil {
		return "", err
	}
	token := strings.TrimSpace(payload.AccessToken)
	if token == "" {
		return "", errors.New("login: response carried no access_token")
	}
	return token, nil
}

// CreateAdmin provisions an admin account. Only 201 is accepted.
func (c *Client) CreateAdmin(ctx context.Context, profile AdminProfile) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, c.endpoint("/auth/create-admin", nil), "", profile)
	if err != nil {
		return err
	}
	_, err = c.do(req, "create admin", nil, http.StatusCreated)
	return err
}
