package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aesthiq-api/internal/model"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	orgID := uuid.New()
	user := &model.User{Base: model.NewBase(), Role: model.RoleClinicAdmin, OrganizationID: &orgID}

	token, sid, err := svc.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, sid)

	p, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
	assert.Equal(t, model.RoleClinicAdmin, p.Role)
	assert.Equal(t, sid, p.SessionID)
	require.NotNil(t, p.OrganizationID)
	assert.Equal(t, orgID, *p.OrganizationID)
}

func TestParseSuperAdminWithoutOrganization(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _, err := svc.Issue(&model.User{Base: model.NewBase(), Role: model.RoleSuperAdmin})
	require.NoError(t, err)

	p, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Nil(t, p.OrganizationID)
	assert.False(t, p.HasOrganization())
}

func TestParseRejects(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	user := &model.User{Base: model.NewBase(), Role: model.RolePatient}

	other := NewTokenService("other-secret", time.Hour)
	foreign, _, err := other.Issue(user)
	require.NoError(t, err)
	_, err = svc.Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expiredSvc := &hmacTokenService{secret: []byte("secret"), ttl: time.Minute, now: func() time.Time {
		return time.Now().Add(-time.Hour)
	}}
	expired, _, err := expiredSvc.Issue(user)
	require.NoError(t, err)
	_, err = svc.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": user.ID.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
