package services

import (
	"testing"

	"staff_rota_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEligibleForShift(t *testing.T) {
	tests := []struct {
		name           string
		candidateRoles []string
		ownerRoles     []string
		heldShifts     []string
		targetType     string
		want           bool
	}{
		{
			name:           "no shared role",
			candidateRoles: []string{"waiter"},
			ownerRoles:     []string{"bartender"},
			targetType:     models.ShiftNight,
			want:           false,
		},
		{
			name:           "shared role with free day",
			candidateRoles: []string{"bartender"},
			ownerRoles:     []string{"bartender"},
			targetType:     models.ShiftNight,
			want:           true,
		},
		{
			name:           "day holder may take a night shift",
			candidateRoles: []string{"waiter"},
			ownerRoles:     []string{"waiter"},
			heldShifts:     []string{models.ShiftDay},
			targetType:     models.ShiftNight,
			want:           true,
		},
		{
			name:           "same type conflicts",
			candidateRoles: []string{"waiter"},
			ownerRoles:     []string{"waiter"},
			heldShifts:     []string{models.ShiftNight},
			targetType:     models.ShiftNight,
			want:           false,
		},
		{
			name:           "existing double blocks everything",
			candidateRoles: []string{"waiter"},
			ownerRoles:     []string{"waiter"},
			heldShifts:     []string{models.ShiftDouble},
			targetType:     models.ShiftDay,
			want:           false,
		},
		{
			name:           "double target requires an empty day",
			candidateRoles: []string{"waiter"},
			ownerRoles:     []string{"waiter"},
			heldShifts:     []string{models.ShiftDay},
			targetType:     models.ShiftDouble,
			want:           false,
		},
		{
			name:           "double target with empty day",
			candidateRoles: []string{"waiter"},
			ownerRoles:     []string{"waiter"},
			targetType:     models.ShiftDouble,
			want:           true,
		},
		{
			name:           "multi-role candidate shares one role",
			candidateRoles: []string{"waiter", "bartender"},
			ownerRoles:     []string{"bartender"},
			targetType:     models.ShiftOpen,
			want:           true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EligibleForShift(tt.candidateRoles, tt.ownerRoles, tt.heldShifts, tt.targetType)
			assert.Equal(t, tt.want, got)
		})
	}
}
