package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mkrause/hauslist/internal/auth"
	"github.com/mkrause/hauslist/internal/models"
	"github.com/mkrause/hauslist/internal/storage"
)

// AccountService handles member registration, login and profile lookup.
// Tokens are stateless JWTs; logout is handled client-side by
// discarding the token.
type AccountService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	profiles      auth.ProfileStorage
	logger        *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, profiles auth.ProfileStorage, logger *slog.Logger) *AccountService {
	return &AccountService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		profiles:      profiles,
		logger:        logger,
	}
}

// Register creates a new member profile and returns it with a session token.
func (s *AccountService) Register(ctx context.Context, email, displayName, password string) (*models.Profile, string, error) {
	s.logger.Info("register request", "email", email)

	if email == "" || displayName == "" {
		return nil, "", invalidArgument(auth.ErrInvalidCredentials)
	}

	profile, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		s.logger.Error("registration failed", "email", email, "error", err)
		if errors.Is(err, auth.ErrEmailExists) {
			return nil, "", connect.NewError(connect.CodeAlreadyExists, err)
		}
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, "", invalidArgument(err)
		}
		return nil, "", connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(profile)
	if err != nil {
		s.logger.Error("failed to generate token", "profile_id", profile.ID, "error", err)
		return nil, "", connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("member registered", "profile_id", profile.ID, "email", profile.Email)
	return redactProfile(profile), token, nil
}

// Login authenticates a member and returns the profile with a session token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.Profile, string, error) {
	s.logger.Info("login request", "email", email)

	if email == "" || password == "" {
		return nil, "", invalidArgument(auth.ErrInvalidCredentials)
	}

	profile, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("login failed", "email", email, "error", err)
		return nil, "", connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(profile)
	if err != nil {
		s.logger.Error("failed to generate token", "profile_id", profile.ID, "error", err)
		return nil, "", connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("member logged in", "profile_id", profile.ID, "email", profile.Email)
	return redactProfile(profile), token, nil
}

// Authenticate validates a session token and returns the acting identity.
func (s *AccountService) Authenticate(token string) (auth.Actor, error) {
	if token == "" {
		return auth.Actor{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	claims, err := s.jwtManager.Validate(token)
	if err != nil {
		return auth.Actor{}, connect.NewError(connect.CodeUnauthenticated, err)
	}
	return claims.Actor(), nil
}

// Profile fetches a member profile by ID.
func (s *AccountService) Profile(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return redactProfile(profile), nil
}

// redactProfile copies a profile with the credential hash stripped, so
// service results can be serialized as-is.
func redactProfile(profile *models.Profile) *models.Profile {
	redacted := *profile
	redacted.PasswordHash = ""
	return &redacted
}

// ProfileStore is the store-backed auth.ProfileStorage implementation.
type ProfileStore struct {
	client storage.Client
}

// NewProfileStore creates a profile store over the given client.
func NewProfileStore(client storage.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

// CreateProfile persists a new profile and returns it with ID and
// timestamp filled in.
func (p *ProfileStore) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	rows, err := p.client.Insert(ctx, ResourceProfiles, []storage.Row{{
		"display_name":  profile.DisplayName,
		"email":         profile.Email,
		"password_hash": profile.PasswordHash,
		"role":          string(profile.Role),
	}})
	if err != nil {
		return nil, err
	}
	created := decodeProfile(rows[0])
	return &created, nil
}

// GetProfileByEmail fetches a profile by its login email.
func (p *ProfileStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return p.getProfile(ctx, storage.Eq("email", email))
}

// GetProfileByID fetches a profile by ID.
func (p *ProfileStore) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	return p.getProfile(ctx, storage.Eq("id", id))
}

func (p *ProfileStore) getProfile(ctx context.Context, filter storage.Filter) (*models.Profile, error) {
	rows, err := p.client.Select(ctx, ResourceProfiles, nil, []storage.Filter{filter}, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}
	profile := decodeProfile(rows[0])
	return &profile, nil
}
