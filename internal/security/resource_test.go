package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"estatescout/internal/models"
)

func TestCanMutate(t *testing.T) {
	listing := models.Property{ID: "p1", OwnerID: "owner"}

	cases := []struct {
		name  string
		res   Owned
		actor Identity
		want  bool
	}{
		{"owner", listing, Identity{UserID: "owner", Role: models.UserRoleAgent}, true},
		{"stranger", listing, Identity{UserID: "other", Role: models.UserRoleAgent}, false},
		{"admin", listing, Identity{UserID: "root", Role: models.UserRoleAdmin}, true},
		{"anonymous", listing, Identity{}, false},
		{"ownerless", models.Property{ID: "p2"}, Identity{UserID: "someone"}, false},
		{"self profile", SelfOrAdmin("u1"), Identity{UserID: "u1"}, true},
		{"other profile", SelfOrAdmin("u1"), Identity{UserID: "u2"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanMutate(tc.res, tc.actor))
		})
	}
}
