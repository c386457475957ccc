package scope

import (
	"testing"

	"paypilot/internal/apierror"
	"paypilot/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSuperadminCoversAllStores(t *testing.T) {
	sc, err := Resolve(model.RoleSuperadmin, nil)
	require.NoError(t, err)
	assert.True(t, sc.All)
	assert.True(t, sc.Allows(uuid.New()))
	assert.NoError(t, sc.Check(uuid.New()))
}

func TestResolveScopedRoleIsBoundToOneStore(t *testing.T) {
	storeID := uuid.New()
	otherID := uuid.New()

	for _, role := range []model.Role{model.RoleAdmin, model.RoleEmployee, model.RoleClient} {
		sc, err := Resolve(role, &storeID)
		require.NoError(t, err, role)
		assert.False(t, sc.All)
		assert.True(t, sc.Allows(storeID))
		assert.False(t, sc.Allows(otherID))
		assert.ErrorIs(t, sc.Check(otherID), apierror.ErrForbidden)
	}
}

func TestResolveUnboundPrincipalIsForbidden(t *testing.T) {
	_, err := Resolve(model.RoleEmployee, nil)
	assert.ErrorIs(t, err, apierror.ErrForbidden)

	nilID := uuid.Nil
	_, err = Resolve(model.RoleAdmin, &nilID)
	assert.ErrorIs(t, err, apierror.ErrForbidden)

	storeID := uuid.New()
	_, err = Resolve(model.Role("Store Admin"), &storeID)
	assert.ErrorIs(t, err, apierror.ErrForbidden)
}
