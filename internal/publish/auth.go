package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sutrasync/internal/contentapi"
	"sutrasync/internal/logging"
)

// ErrAuthentication marks a run that could not obtain an access token.
var ErrAuthentication = errors.New("authentication failed")

// Placeholder profile fields sent when provisioning the admin account.
const (
	placeholderFirstName = "placeholder_first_name"
	placeholderLastName  = "placeholder_last_name"
	placeholderPhoneNo   = "placeholder_phone_no"
)

// Credentials identify the admin account used for publishing.
type Credentials struct {
	Email    string
	Password string
}

// Authenticator obtains the access token for a run.
type Authenticator struct {
	api    API
	creds  Credentials
	logger *slog.Logger
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(api API, creds Credentials, logger *slog.Logger) *Authenticator {
	return &Authenticator{api: api, creds: creds, logger: logging.NewComponentLogger(logger, "auth")}
}

// ObtainToken logs in. When the first login is refused it provisions an admin
// account with the same credentials and logs in once more. Errors wrap
// ErrAuthentication.
func (a *Authenticator) ObtainToken(ctx context.Context) (string, error) {
	logger := logging.WithContext(ctx, a.logger).With(logging.String("email", a.creds.Email))

	token, err := a.api.Login(ctx, a.creds.Email, a.creds.Password)
	if err == nil {
		logger.Info("access token received")
		return token, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthentication, ctxErr)
	}
	logger.Info("login refused, provisioning admin account",
		logging.Int("status_code", contentapi.StatusCode(err)),
		logging.Error(err),
	)

	profile := contentapi.AdminProfile{
		FirstName: placeholderFirstName,
		LastName:  placeholderLastName,
		Email:     a.creds.Email,
		PhoneNo:   placeholderPhoneNo,
		Password:  a.creds.Password,
	}
	if err := a.api.CreateAdmin(ctx, profile); err != nil {
		logging.ErrorWithContext(logger, "admin provisioning failed", "auth_create_admin_failed",
			logging.Int("status_code", contentapi.StatusCode(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check API_URL, EMAIL and PASSWORD"),
		)
		return "", fmt.Errorf("%w: create admin: %w", ErrAuthentication, err)
	}
	logger.Info("admin account created")

	token, err = a.api.Login(ctx, a.creds.Email, a.creds.Password)
	if err != nil {
		logging.ErrorWithContext(logger, "login failed after provisioning", "auth_login_failed",
			logging.Int("status_code", contentapi.StatusCode(err)),
			logging.Error(err),
		)
		return "", fmt.Errorf("%w: login: %w", ErrAuthentication, err)
	}
	logger.Info("access token received")
	return token, nil
}
