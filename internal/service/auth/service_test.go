package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/aesthiq-api/internal/email"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository/memory"
	"github.com/jwalitptl/aesthiq-api/internal/service/event"
	"github.com/jwalitptl/aesthiq-api/internal/service/organization"
	"github.com/jwalitptl/aesthiq-api/internal/service/tenant"
	"github.com/jwalitptl/aesthiq-api/pkg/auth"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
	"github.com/jwalitptl/aesthiq-api/pkg/metrics"
	"github.com/jwalitptl/aesthiq-api/pkg/security"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	logger := zerolog.Nop()
	mailer := email.NewNoopService(logger)
	orgs := organization.NewService(
		store.Organizations(),
		store.Plans(),
		event.NewService(store.Outbox(), logger),
		mailer,
		organization.Config{TrialDays: 14},
		logger,
	)
	svc := NewService(
		store.Users(),
		store.Organizations(),
		orgs,
		tenant.Plans{Organizations: store.Organizations(), Plans: store.Plans()},
		store.Sessions(),
		auth.NewTokenService("test-secret", time.Hour),
		security.NewBcryptHasher(bcrypt.MinCost),
		mailer,
		metrics.NewNop(),
		logger,
	)
	return svc, store
}

func registerOwner(t *testing.T, svc *Service) *Session {
	t.Helper()
	session, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:            "Ana@Glow.test",
		Username:         "ana",
		Password:         "correct-horse",
		FirstName:        "Ana",
		LastName:         "Lee",
		OrganizationName: "Glow Spa",
	})
	require.NoError(t, err)
	return session
}

func TestRegisterWithOrganizationCreatesClinicAdmin(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	session := registerOwner(t, svc)
	assert.Equal(t, model.RoleClinicAdmin, session.User.Role)
	assert.Equal(t, "ana@glow.test", session.User.Email)
	require.NotNil(t, session.User.OrganizationID)
	assert.NotEmpty(t, session.Token)

	org, err := store.Organizations().GetByID(ctx, *session.User.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, "glow-spa", org.Slug)
	assert.Equal(t, model.SubscriptionTrialing, org.SubscriptionStatus)

	p, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, p.UserID)
	assert.Equal(t, model.RoleClinicAdmin, p.Role)
}

func TestRegisterWithSlugJoinsAsPatient(t *testing.T) {
	svc, _ := newTestService(t)
	owner := registerOwner(t, svc)

	session, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:            "bo@client.test",
		Username:         "bo",
		Password:         "another-secret",
		FirstName:        "Bo",
		LastName:         "Kim",
		OrganizationSlug: "glow-spa",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, session.User.Role)
	assert.Equal(t, *owner.User.OrganizationID, *session.User.OrganizationID)
}

func joinBySlug(svc *Service, email, slug string) (*Session, error) {
	username, _, _ := strings.Cut(email, "@")
	return svc.Register(context.Background(), &model.RegisterRequest{
		Email:            email,
		Username:         username,
		Password:         "another-secret",
		FirstName:        "Bo",
		LastName:         "Kim",
		OrganizationSlug: slug,
	})
}

func TestRegisterWithSlugAsInvitedAdmin(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	org := &model.Organization{Base: model.NewBase(), Name: "Lumen Clinic", Slug: "lumen-clinic", AdminEmail: "owner@lumen.test"}
	require.NoError(t, store.Organizations().Create(ctx, org, nil))

	patient, err := joinBySlug(svc, "bo@client.test", "lumen-clinic")
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, patient.User.Role)

	admin, err := joinBySlug(svc, "Owner@Lumen.test", "lumen-clinic")
	require.NoError(t, err)
	assert.Equal(t, model.RoleClinicAdmin, admin.User.Role)
	assert.Equal(t, org.ID, *admin.User.OrganizationID)

	p, err := svc.Authenticate(ctx, admin.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleClinicAdmin, p.Role)
}

func TestRegisterWithSlugRespectsClientLimit(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	plan := &model.SubscriptionPlan{Base: model.NewBase(), Name: "Basic", MaxClients: 1, IsActive: true}
	require.NoError(t, store.Plans().Create(ctx, plan))
	org := &model.Organization{
		Base:               model.NewBase(),
		Name:               "Lumen Clinic",
		Slug:               "lumen-clinic",
		SubscriptionPlanID: &plan.ID,
		AdminEmail:         "owner@lumen.test",
	}
	require.NoError(t, store.Organizations().Create(ctx, org, nil))

	_, err := joinBySlug(svc, "first@client.test", "lumen-clinic")
	require.NoError(t, err)

	_, err = joinBySlug(svc, "second@client.test", "lumen-clinic")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// the invited admin is not a client
	admin, err := joinBySlug(svc, "owner@lumen.test", "lumen-clinic")
	require.NoError(t, err)
	assert.Equal(t, model.RoleClinicAdmin, admin.User.Role)

	count, err := store.Users().Count(ctx, model.UserFilter{OrganizationID: org.ID, Role: model.RolePatient})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegisterRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerOwner(t, svc)

	base := model.RegisterRequest{
		Email: "x@y.test", Username: "xy", Password: "long-enough", FirstName: "X", LastName: "Y",
	}

	neither := base
	_, err := svc.Register(ctx, &neither)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	both := base
	both.OrganizationName = "New"
	both.OrganizationSlug = "glow-spa"
	_, err = svc.Register(ctx, &both)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	unknown := base
	unknown.OrganizationSlug = "nowhere"
	_, err = svc.Register(ctx, &unknown)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	dup := base
	dup.Username = "ana"
	dup.OrganizationSlug = "glow-spa"
	_, err = svc.Register(ctx, &dup)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	dupOwner := base
	dupOwner.Email = "ana@glow.test"
	dupOwner.OrganizationName = "Another Spa"
	_, err = svc.Register(ctx, &dupOwner)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestLoginByEmailOrUsername(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := registerOwner(t, svc)

	byEmail, err := svc.Login(ctx, &model.LoginRequest{Email: "ANA@glow.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, owner.User.ID, byEmail.User.ID)

	byUsername, err := svc.Login(ctx, &model.LoginRequest{Username: "ana", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEqual(t, byEmail.Token, byUsername.Token)

	stored, err := store.Users().GetByID(ctx, owner.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestFailedLoginLeavesCallerUnauthenticated(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerOwner(t, svc)

	session, err := svc.Login(ctx, &model.LoginRequest{Email: "ana@glow.test", Password: "wrong-password"})
	assert.Nil(t, session)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindUnauthorized, appErr.Kind)
	assert.Equal(t, MsgInvalidCredentials, appErr.Message)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "nobody@glow.test", Password: "whatever1"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	_, err = svc.Login(ctx, &model.LoginRequest{Password: "whatever1"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindBadRequest))

	_, err = svc.Me(ctx, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	session := registerOwner(t, svc)

	p, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)

	me, err := svc.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "ana", me.Username)

	require.NoError(t, svc.Logout(ctx, p))
	_, err = svc.Authenticate(ctx, session.Token)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	assert.NoError(t, svc.Logout(ctx, nil))
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))

	_, err = svc.Authenticate(context.Background(), "not-a-jwt")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func TestLoginUpgradesOutdatedHash(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := registerOwner(t, svc)

	svc.hasher = security.NewBcryptHasher(bcrypt.MinCost + 1)
	_, err := svc.Login(ctx, &model.LoginRequest{Username: "ana", Password: "correct-horse"})
	require.NoError(t, err)

	stored, err := store.Users().GetByID(ctx, owner.User.ID)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}
