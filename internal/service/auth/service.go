package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/email"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	"github.com/jwalitptl/aesthiq-api/internal/repository/redis"
	"github.com/jwalitptl/aesthiq-api/internal/service/organization"
	"github.com/jwalitptl/aesthiq-api/internal/service/tenant"
	"github.com/jwalitptl/aesthiq-api/pkg/auth"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
	"github.com/jwalitptl/aesthiq-api/pkg/metrics"
	"github.com/jwalitptl/aesthiq-api/pkg/security"
)

const (
	MsgNotAuthenticated   = "not authenticated"
	MsgInvalidCredentials = "invalid credentials"
)

// Session is a freshly issued login.
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

type AuthServicer interface {
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
	Me(ctx context.Context, p *model.Principal) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*Session, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*Session, error)
	Logout(ctx context.Context, p *model.Principal) error
}

type Service struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	orgs     organization.OrganizationServicer
	plans    tenant.Plans
	sessions redis.SessionStore
	tokens   auth.TokenService
	hasher   security.PasswordHasher
	mailer   email.Service
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	orgs organization.OrganizationServicer,
	plans tenant.Plans,
	sessions redis.SessionStore,
	tokens auth.TokenService,
	hasher security.PasswordHasher,
	mailer email.Service,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		orgs:     orgs,
		plans:    plans,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		mailer:   mailer,
		metrics:  metrics,
		logger:   logger.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

// Authenticate resolves a session token to its principal. Revoked or
// expired sessions are unauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	if token == "" {
		return nil, apperrors.Unauthorized(MsgNotAuthenticated)
	}

	p, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Unauthorized(MsgNotAuthenticated)
	}

	live, err := s.sessions.Exists(ctx, p.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !live {
		return nil, apperrors.Unauthorized(MsgNotAuthenticated)
	}
	return p, nil
}

func (s *Service) Me(ctx context.Context, p *model.Principal) (*model.User, error) {
	if p == nil {
		return nil, apperrors.Unauthorized(MsgNotAuthenticated)
	}

	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized(MsgNotAuthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Status != model.UserStatusActive {
		return nil, apperrors.Unauthorized(MsgNotAuthenticated)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*Session, error) {
	login := strings.TrimSpace(req.Email)
	if login == "" {
		login = strings.TrimSpace(req.Username)
	}
	if login == "" || req.Password == "" {
		return nil, apperrors.BadRequest("email or username and password are required", nil)
	}

	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.Status != model.UserStatusActive ||
		s.hasher.Compare(user.PasswordHash, req.Password) != nil {
		s.metrics.LoginFailures.Inc()
		s.logger.Info().Str("login", login).Msg("login rejected")
		return nil, apperrors.Unauthorized(MsgInvalidCredentials)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}
	s.rehash(ctx, user, req.Password)
	return s.startSession(ctx, user)
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*Session, error) {
	orgName := strings.TrimSpace(req.OrganizationName)
	orgSlug := strings.TrimSpace(req.OrganizationSlug)
	if (orgName == "") == (orgSlug == "") {
		return nil, apperrors.BadRequest("provide either organizationName or organizationSlug", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, security.ErrPasswordTooShort) || errors.Is(err, security.ErrPasswordTooLong) {
		return nil, apperrors.BadRequest("password must be between 8 and 72 characters", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base:         model.NewBase(),
		Email:        model.NormalizeEmail(req.Email),
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
		Status:       model.UserStatusActive,
	}

	var orgDisplayName string
	if orgName != "" {
		user.Role = model.RoleClinicAdmin
		org, err := s.orgs.Provision(ctx, orgName, "", nil, user)
		if err != nil {
			return nil, err
		}
		orgDisplayName = org.Name
	} else {
		org, err := s.orgRepo.GetBySlug(ctx, orgSlug)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("organization")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get organization: %w", err)
		}

		user.Role = model.RolePatient
		if org.AdminEmail != "" && org.AdminEmail == user.Email {
			user.Role = model.RoleClinicAdmin
		} else if err := s.checkClientLimit(ctx, org.ID); err != nil {
			return nil, err
		}

		user.OrganizationID = &org.ID
		if err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperrors.Conflict("email or username already in use")
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		orgDisplayName = org.Name
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("user registered")

	if err := s.mailer.SendWelcome(ctx, user.Email, user.FirstName, orgDisplayName); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to send welcome email")
	}

	return s.startSession(ctx, user)
}

func (s *Service) checkClientLimit(ctx context.Context, orgID uuid.UUID) error {
	count, err := s.userRepo.Count(ctx, model.UserFilter{OrganizationID: orgID, Role: model.RolePatient})
	if err != nil {
		return fmt.Errorf("failed to count clients: %w", err)
	}
	return s.plans.CheckLimit(ctx, orgID, "client", count, func(p *model.SubscriptionPlan) int {
		return p.MaxClients
	})
}

// rehash upgrades a hash made with an older bcrypt cost after a good login.
func (s *Service) rehash(ctx context.Context, user *model.User, password string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.userRepo.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to upgrade password hash")
	}
}

func (s *Service) startSession(ctx context.Context, user *model.User) (*Session, error) {
	token, sessionID, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	if err := s.sessions.Create(ctx, sessionID, user.ID, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	s.metrics.SessionsIssued.Inc()

	return &Session{
		User:      user,
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
	}, nil
}

// Logout revokes the caller's session; an anonymous caller is a no-op.
func (s *Service) Logout(ctx context.Context, p *model.Principal) error {
	if p == nil || p.SessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, p.SessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.metrics.SessionsRevoked.Inc()
	return nil
}
