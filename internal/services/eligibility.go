package services

import "staff_rota_backend/internal/models"

// rolesIntersect reports whether two role-name sets share at least one role.
func rolesIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// EligibleForShift decides whether a candidate may take over a shift of
// targetShiftType on a date where the candidate already holds
// candidateShiftsOnDate. Both the swap and volunteering workflows use this
// predicate unchanged:
//
//   - the candidate must share at least one role with the shift's owner;
//   - a Double target requires the candidate's day to be completely free;
//   - otherwise the candidate conflicts if they already hold a Double that
//     day, or a shift of the same type.
//
// Holding a different single shift (e.g. Day while taking over a Night) is
// allowed.
func EligibleForShift(candidateRoles, ownerRoles []string, candidateShiftsOnDate []string, targetShiftType string) bool {
	if !rolesIntersect(candidateRoles, ownerRoles) {
		return false
	}

	if targetShiftType == models.ShiftDouble {
		return len(candidateShiftsOnDate) == 0
	}

	for _, held := range candidateShiftsOnDate {
		if held == models.ShiftDouble || held == targetShiftType {
			return false
		}
	}
	return true
}
