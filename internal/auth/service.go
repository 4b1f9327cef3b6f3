package auth

import (
	"context"
	"net/url"

	"github.com/marcovilla/storefront-client/internal/api"
	"github.com/marcovilla/storefront-client/internal/session"
	"github.com/marcovilla/storefront-client/internal/validate"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/logger"
	"github.com/marcovilla/storefront-client/pkg/types"
)

// Gateway is the slice of the API client the auth flows need.
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any, opts ...api.CallOption) error
	Post(ctx context.Context, path string, body, out any, opts ...api.CallOption) error
}

// SessionWriter is the session surface auth mutates.
type SessionWriter interface {
	Login(ctx context.Context, user *types.User, access, refresh string) error
	Logout(ctx context.Context) error
	UpdateUser(ctx context.Context, user *types.User) error
	Current() session.Session
	RefreshToken() string
}

// Service drives login, registration, logout, and profile retrieval.
type Service struct {
	gw       Gateway
	sessions SessionWriter
	logg     *logger.Logger
}

func NewService(gw Gateway, sessions SessionWriter, logg *logger.Logger) (*Service, error) {
	if gw == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session store required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{gw: gw, sessions: sessions, logg: logg}, nil
}

// LoginRequest carries the credentials for login/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type loginResponse struct {
	Tokens tokenPair  `json:"tokens"`
	User   types.User `json:"user"`
}

// Login authenticates and persists the session; subsequent gateway calls
// carry the access token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*types.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	var resp loginResponse
	if err := s.gw.Post(ctx, "login/", req, &resp); err != nil {
		return nil, err
	}
	if resp.Tokens.Access == "" {
		return nil, pkgerrors.New(pkgerrors.CodeTransport, "login response missing access token")
	}

	user := resp.User
	if err := s.sessions.Login(ctx, &user, resp.Tokens.Access, resp.Tokens.Refresh); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.Username), "logged in")
	return &user, nil
}

// RegisterRequest carries the fields for register/.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Register creates an account. It does not log in; the caller follows up
// with Login.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*types.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	var user types.User
	if err := s.gw.Post(ctx, "register/", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Logout tells the server to blacklist the refresh token, then clears local
// state regardless of the server outcome. Idempotent: a second call finds
// nothing to clear and still succeeds.
func (s *Service) Logout(ctx context.Context) error {
	if refresh := s.sessions.RefreshToken(); refresh != "" {
		if err := s.gw.Post(ctx, "logout/", logoutRequest{Refresh: refresh}, nil); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "server logout failed, clearing local session anyway")
		}
	}
	return s.sessions.Logout(ctx)
}

// Profile fetches the authenticated user's profile and refreshes the cached
// identity without touching the tokens.
func (s *Service) Profile(ctx context.Context) (*types.User, error) {
	if !s.sessions.Current().IsAuthenticated {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please login to view your profile")
	}

	var user types.User
	if err := s.gw.Get(ctx, "profile/", nil, &user); err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateUser(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
