package authz

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	require.NoError(t, Authorize(Principal{UserID: owner, Role: models.RoleMember}, owner))

	err := Authorize(Principal{UserID: other, Role: models.RoleMember}, owner)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	require.Equal(t, "forbidden: Insufficient permissions.", err.Error())

	for i := 0; i < 10; i++ {
		require.NoError(t, Authorize(Principal{UserID: other, Role: models.RoleAdmin}, uuid.New()))
	}

	require.Error(t, Authorize(Principal{}, uuid.Nil), "zero principal never matches a zero owner")
}

func TestRequireAdmin(t *testing.T) {
	require.NoError(t, RequireAdmin(Principal{Role: models.RoleAdmin}))
	require.True(t, appErr.IsCode(RequireAdmin(Principal{Role: models.RoleMember}), appErr.CodeForbidden))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	p := Principal{UserID: uuid.New(), Email: "a@x.com", Role: models.RoleMember}
	got, ok := FromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	require.Equal(t, p, got)
}
