package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	repo "github.com/craftfolio/craftfolio-api/internal/domain/repository"
	"github.com/craftfolio/craftfolio-api/internal/infrastructure/postgres"
	"github.com/craftfolio/craftfolio-api/pkg/apperr"
	"github.com/craftfolio/craftfolio-api/pkg/helpers"
	"github.com/craftfolio/craftfolio-api/pkg/mailer"
)

// Credential failures share one message so responses never reveal whether
// the email exists.
const msgInvalidCredentials = "Invalid email or password"

// AuthService owns registration, sign-in, and token rotation across the two
// identity stores.
type AuthService struct {
	Identities repo.IdentityRepository
	Profiles   repo.ProfileRepository
	Index      repo.ProfileIndex // optional
	JWT        *helpers.JWTManager
	Pub        *helpers.RabbitPublisher // optional welcome-email queue
	Logger     *logrus.Logger
}

func NewAuthService(identities repo.IdentityRepository, profiles repo.ProfileRepository, index repo.ProfileIndex, jwt *helpers.JWTManager, pub *helpers.RabbitPublisher, logger *logrus.Logger) *AuthService {
	return &AuthService{Identities: identities, Profiles: profiles, Index: index, JWT: jwt, Pub: pub, Logger: logger}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type SignUpInput struct {
	Email          string
	Password       string
	Username       string
	Age            *int
	Bio            string
	Profession     string
	CountryOrigin  string
	ProfilePicture string
	CoverImage     string
}

// SignUp performs the two-phase cross-store create: the identity row is
// inserted inside a relational transaction and the profile document is
// written before commit, so a profile failure rolls the row back. A crash
// between the commit and the document insert can still orphan an identity
// row; that window is accepted and documented, not papered over.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*entity.Profile, error) {
	if exists, err := s.Identities.EmailExists(ctx, in.Email); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "signup failed", err)
	} else if exists {
		return nil, apperr.New(apperr.Conflict, "Email already exists")
	}
	if exists, err := s.Profiles.UsernameExists(ctx, in.Username); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "signup failed", err)
	} else if exists {
		return nil, apperr.New(apperr.Conflict, "Username already exists")
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "signup failed", err)
	}
	base := in.Username
	if base == "" {
		base = in.Email
	}
	friendlyID, err := helpers.NewFriendlyID(base)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "signup failed", err)
	}

	crossRef := helpers.NewCrossRef()
	ident := &entity.Identity{
		Email:        in.Email,
		PasswordHash: hash,
		CrossRef:     crossRef,
		Role:         entity.RoleUser,
	}
	profile := &entity.Profile{
		CrossRef:       crossRef,
		FriendlyID:     friendlyID,
		Username:       in.Username,
		Age:            in.Age,
		Bio:            in.Bio,
		Profession:     in.Profession,
		CountryOrigin:  in.CountryOrigin,
		ProfilePicture: in.ProfilePicture,
		CoverImage:     in.CoverImage,
	}
	profile.CompletedProfile = profile.Completed()

	err = s.Identities.Create(ctx, ident, func(ctx context.Context) error {
		return s.Profiles.Create(ctx, profile)
	})
	if err != nil {
		if errors.Is(err, postgres.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "Email already exists")
		}
		return nil, apperr.Wrap(apperr.Internal, "signup failed", err)
	}

	if s.Index != nil {
		if ierr := s.Index.Index(ctx, profile); ierr != nil {
			s.Logger.WithError(ierr).WithField("cross_ref", crossRef).Warn("profile index update failed")
		}
	}
	if s.Pub != nil {
		job := mailer.EmailJob{
			To:       in.Email,
			Template: mailer.TemplateWelcome,
			Data:     map[string]any{"username": in.Username},
		}
		if perr := s.Pub.PublishJSON(ctx, job); perr != nil {
			s.Logger.WithError(perr).WithField("email", in.Email).Warn("welcome email enqueue failed")
		}
	}
	return profile, nil
}

// SignIn validates credentials against the relational store, resolves the
// profile, and issues the token pair.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*entity.Profile, TokenPair, error) {
	ident, profile, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issueTokens(profile)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.Logger.WithFields(logrus.Fields{"cross_ref": ident.CrossRef}).Info("user signed in")
	return profile, pair, nil
}

// AdminSignIn is SignIn plus a role requirement checked against the
// relational source of truth.
func (s *AuthService) AdminSignIn(ctx context.Context, email, password string) (*entity.Profile, TokenPair, error) {
	ident, profile, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !ident.IsAdmin() {
		s.Logger.WithField("cross_ref", ident.CrossRef).Warn("admin signin rejected: insufficient role")
		return nil, TokenPair{}, apperr.New(apperr.Forbidden, "Admin access required")
	}
	pair, err := s.issueTokens(profile)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.Logger.WithFields(logrus.Fields{"cross_ref": ident.CrossRef, "role": ident.Role}).Info("admin signed in")
	return profile, pair, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*entity.Identity, *entity.Profile, error) {
	ident, err := s.Identities.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "signin failed", err)
	}
	if !helpers.CompareHashAndPassword(ident.PasswordHash, password) {
		return nil, nil, apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}
	if !ident.Active {
		return nil, nil, apperr.New(apperr.Forbidden, "Account is deactivated")
	}

	profile, err := s.Profiles.GetByCrossRef(ctx, ident.CrossRef)
	if errors.Is(err, repo.ErrNotFound) {
		// Data-integrity fault: identity without profile. Surface as
		// Internal, never as bad credentials.
		s.Logger.WithField("cross_ref", ident.CrossRef).Error("identity has no profile document")
		return nil, nil, apperr.New(apperr.Internal, "account record is inconsistent")
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "signin failed", err)
	}
	return ident, profile, nil
}

func (s *AuthService) issueTokens(p *entity.Profile) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(p.CrossRef, p.ID.Hex(), p.FriendlyID)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.Internal, "token generation failed", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(p.CrossRef, p.ID.Hex(), p.FriendlyID)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.Internal, "token generation failed", err)
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

// RefreshAccess verifies a refresh token, re-resolves the profile (it must
// still exist and be active), and mints a fresh access token.
func (s *AuthService) RefreshAccess(ctx context.Context, refreshToken string) (string, time.Time, *entity.Profile, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", time.Time{}, nil, apperr.New(apperr.Unauthorized, "Invalid refresh token")
	}
	profile, err := s.Profiles.GetByCrossRef(ctx, claims.CrossRef)
	if errors.Is(err, repo.ErrNotFound) {
		return "", time.Time{}, nil, apperr.New(apperr.Unauthorized, "Invalid refresh token")
	}
	if err != nil {
		return "", time.Time{}, nil, apperr.Wrap(apperr.Internal, "token refresh failed", err)
	}
	if !profile.Active {
		return "", time.Time{}, nil, apperr.New(apperr.Unauthorized, "Invalid refresh token")
	}
	access, aexp, err := s.JWT.GenerateAccessToken(profile.CrossRef, profile.ID.Hex(), profile.FriendlyID)
	if err != nil {
		return "", time.Time{}, nil, apperr.Wrap(apperr.Internal, "token generation failed", err)
	}
	return access, aexp, profile, nil
}

type CredentialsView struct {
	Email string `json:"email"`
}

// Credentials returns the relational-side account data for the session owner.
func (s *AuthService) Credentials(ctx context.Context, crossRef string) (*CredentialsView, error) {
	ident, err := s.Identities.GetByCrossRef(ctx, crossRef)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Account not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "credential lookup failed", err)
	}
	return &CredentialsView{Email: ident.Email}, nil
}

type UpdateCredentialsInput struct {
	Email           string
	NewPassword     string
	CurrentPassword string
}

// UpdateCredentials changes email and/or password. A password change
// requires the current password.
func (s *AuthService) UpdateCredentials(ctx context.Context, crossRef string, in UpdateCredentialsInput) error {
	ident, err := s.Identities.GetByCrossRef(ctx, crossRef)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.New(apperr.NotFound, "Account not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "credential update failed", err)
	}

	if in.NewPassword != "" {
		if !helpers.CompareHashAndPassword(ident.PasswordHash, in.CurrentPassword) {
			return apperr.New(apperr.Unauthorized, "Current password is incorrect")
		}
		hash, err := helpers.HashPassword(in.NewPassword)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "credential update failed", err)
		}
		if err := s.Identities.UpdatePassword(ctx, crossRef, hash); err != nil {
			return apperr.Wrap(apperr.Internal, "credential update failed", err)
		}
	}

	if in.Email != "" && in.Email != ident.Email {
		if err := s.Identities.UpdateEmail(ctx, crossRef, in.Email); err != nil {
			if errors.Is(err, postgres.ErrDuplicate) {
				return apperr.New(apperr.Conflict, "Email already exists")
			}
			return apperr.Wrap(apperr.Internal, "credential update failed", err)
		}
	}
	return nil
}
