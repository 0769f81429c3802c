package services

import (
	"testing"

	"github.com/deploydeck/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name      string
		principal models.Principal
		ownerID   string
		allowed   bool
	}{
		{
			name:      "owner may act",
			principal: models.Principal{ID: "user-1", Role: models.RoleUser},
			ownerID:   "user-1",
			allowed:   true,
		},
		{
			name:      "non-owner is forbidden",
			principal: models.Principal{ID: "user-2", Role: models.RoleUser},
			ownerID:   "user-1",
			allowed:   false,
		},
		{
			name:      "admin may act on any resource",
			principal: models.Principal{ID: "admin-1", Role: models.RoleAdmin},
			ownerID:   "user-1",
			allowed:   true,
		},
		{
			name:      "empty principal is forbidden",
			principal: models.Principal{},
			ownerID:   "user-1",
			allowed:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.ownerID, "delete")
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, models.ErrForbidden, models.KindOf(err))
				assert.Contains(t, err.Error(), "delete")
			}
		})
	}
}
