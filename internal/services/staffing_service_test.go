package services

import (
	"testing"

	"staff_rota_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestEvaluateStaffing(t *testing.T) {
	tests := []struct {
		name     string
		assigned int
		minStaff int
		maxStaff *int
		want     string
	}{
		{"below minimum", 1, 3, nil, models.StaffingUnderstaffed},
		{"meets minimum", 3, 3, nil, models.StaffingGood},
		{"above minimum without max", 5, 3, nil, models.StaffingGood},
		{"at max is still good", 3, 2, intPtr(3), models.StaffingGood},
		{"over max wins over good", 4, 2, intPtr(3), models.StaffingOverstaffed},
		{"nothing assigned nothing required", 0, 0, nil, models.StaffingNoRequirement},
		{"assigned with zero minimum is good", 2, 0, nil, models.StaffingGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateStaffing(tt.assigned, tt.minStaff, tt.maxStaff))
		})
	}
}

func TestSetRequirementValidation(t *testing.T) {
	svc := NewStaffingService(&fakeRequirementRepo{}, fakeDB{})

	_, err := svc.SetRequirement(SetRequirementRequest{RoleName: "bartender", ShiftDate: "not-a-date", MinStaff: 1})
	assert.ErrorIs(t, err, ErrInvalidRequirement)

	_, err = svc.SetRequirement(SetRequirementRequest{RoleName: "bartender", ShiftDate: "2025-06-10", MinStaff: -1})
	assert.ErrorIs(t, err, ErrInvalidRequirement)

	_, err = svc.SetRequirement(SetRequirementRequest{RoleName: "bartender", ShiftDate: "2025-06-10", MinStaff: 3, MaxStaff: intPtr(2)})
	assert.ErrorIs(t, err, ErrInvalidRequirement)
}

func TestSetRequirementUpserts(t *testing.T) {
	repo := &fakeRequirementRepo{}
	svc := NewStaffingService(repo, fakeDB{})

	first, err := svc.SetRequirement(SetRequirementRequest{RoleName: "waiter", ShiftDate: "2025-06-10", MinStaff: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, first.MinStaff)

	_, err = svc.SetRequirement(SetRequirementRequest{RoleName: "waiter", ShiftDate: "2025-06-10", MinStaff: 4, MaxStaff: intPtr(6)})
	require.NoError(t, err)
	require.Len(t, repo.reqs, 1)
	assert.Equal(t, 4, repo.reqs[0].MinStaff)
}
