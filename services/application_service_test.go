package services

import (
	"testing"

	"github.com/deploydeck/dto"
	"github.com/deploydeck/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApplicationTestbed() (*ApplicationService, *stubApplicationStore) {
	applications := newStubApplicationStore()
	applications.applications["app-1"] = models.Application{
		ID:      "app-1",
		Name:    "Shop Backend",
		OwnerID: "user-1",
	}
	return NewApplicationService(applications), applications
}

func TestCreateApplication_OwnedByPrincipal(t *testing.T) {
	svc, _ := newApplicationTestbed()

	application, err := svc.CreateApplication(dto.CreateApplicationRequest{
		Name:        "Billing",
		Description: "invoicing service",
	}, ownerPrincipal())
	require.NoError(t, err)
	assert.Equal(t, "user-1", application.OwnerID)
	assert.Equal(t, "Billing", application.Name)
}

func TestGetApplication_ForbiddenForNonOwner(t *testing.T) {
	svc, _ := newApplicationTestbed()

	_, err := svc.GetApplication("app-1", models.Principal{ID: "user-2", Role: models.RoleUser})
	assert.Equal(t, models.ErrForbidden, models.KindOf(err))
}

func TestGetApplication_Unknown(t *testing.T) {
	svc, _ := newApplicationTestbed()

	_, err := svc.GetApplication("app-missing", ownerPrincipal())
	assert.Equal(t, models.ErrNotFound, models.KindOf(err))
}

func TestListApplications_FiltersByOwner(t *testing.T) {
	svc, applications := newApplicationTestbed()
	applications.applications["app-2"] = models.Application{ID: "app-2", Name: "Other", OwnerID: "user-2"}

	owned, err := svc.ListApplications(ownerPrincipal())
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "app-1", owned[0].ID)

	all, err := svc.ListApplications(models.Principal{ID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteApplication_RefusedWithLiveDeployments(t *testing.T) {
	svc, applications := newApplicationTestbed()
	applications.liveDeployments = 2

	err := svc.DeleteApplication("app-1", ownerPrincipal())
	assert.Equal(t, models.ErrValidation, models.KindOf(err))
	assert.Empty(t, applications.deleted)
}

func TestDeleteApplication_RemovesEmptyApplication(t *testing.T) {
	svc, applications := newApplicationTestbed()

	require.NoError(t, svc.DeleteApplication("app-1", ownerPrincipal()))
	assert.Equal(t, []string{"app-1"}, applications.deleted)
}

func TestDeleteApplication_ForbiddenForNonOwner(t *testing.T) {
	svc, applications := newApplicationTestbed()

	err := svc.DeleteApplication("app-1", models.Principal{ID: "user-2", Role: models.RoleUser})
	assert.Equal(t, models.ErrForbidden, models.KindOf(err))
	assert.Empty(t, applications.deleted)
}
