package policy

import (
	"testing"

	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizer_Can(t *testing.T) {
	a := NewAuthorizer()

	tests := []struct {
		role models.UserRole
		cap  Capability
		want bool
	}{
		{models.RoleAdmin, CreateTables, true},
		{models.RoleManager, RemoveTables, true},
		{models.RoleWaiter, CreateTables, false},
		{models.RoleWaiter, CreateProducts, false},
		{models.RoleWaiter, Capability("orders:open"), true},
		{models.UserRole("chef"), Capability("orders:open"), false},
		{models.UserRole(""), CreateTables, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			assert.Equal(t, tt.want, a.Can(tt.role, tt.cap))
		})
	}
}

func TestAuthorizer_AuthorizeForbidden(t *testing.T) {
	err := NewAuthorizer().Authorize(models.RoleWaiter, RemoveTables)
	assert.Equal(t, apperrors.Forbidden, apperrors.KindOf(err))
	assert.NoError(t, NewAuthorizer().Authorize(models.RoleManager, RemoveTables))
}

func TestOrderTransitions(t *testing.T) {
	placed := []models.OrderItem{{Status: models.ItemPlaced}}
	served := []models.OrderItem{{Status: models.ItemServed}, {Status: models.ItemCancelled}}

	tests := []struct {
		name  string
		from  models.OrderStatus
		items []models.OrderItem
		next  models.OrderStatus
		ok    bool
	}{
		{"open to paid", models.OrderOpen, placed, models.OrderPaid, true},
		{"open to completed with placed items", models.OrderOpen, placed, models.OrderCompleted, false},
		{"open to completed when served", models.OrderOpen, served, models.OrderCompleted, true},
		{"completed to closed", models.OrderCompleted, served, models.OrderClosed, true},
		{"completed back to open", models.OrderCompleted, served, models.OrderOpen, false},
		{"paid is frozen", models.OrderPaid, served, models.OrderCancelled, false},
		{"cancelled is frozen", models.OrderCancelled, nil, models.OrderOpen, false},
		{"same status", models.OrderPaid, nil, models.OrderPaid, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &models.Order{OrderNumber: 1, Status: tt.from, Items: tt.items}
			err := OrderTransitions(order, tt.next)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, apperrors.PreconditionFailed, apperrors.KindOf(err))
		})
	}
}
