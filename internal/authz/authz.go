// Package authz holds the authorization predicates the lifecycle and
// messaging cores share. Staff membership is always re-derived from the
// employee record, never trusted from client input or cached on a resource.
package authz

import (
	"HandyHire-backend/internal/apperr"
	"HandyHire-backend/internal/model"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolveEmployee loads the employee record behind a principal user id.
// A principal without an employee record cannot act in the marketplace core.
func ResolveEmployee(db *gorm.DB, userID uuid.UUID) (model.Employee, error) {
	var employee model.Employee
	if err := db.Where("user_id = ?", userID).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Employee{}, apperr.New(apperr.ErrNotFound, "Employee profile not found")
		}
		return model.Employee{}, err
	}
	return employee, nil
}

// IsStaffOf reports whether the principal behind userID is on the roster of
// the given employer.
func IsStaffOf(db *gorm.DB, userID uuid.UUID, employerID uuid.UUID) (bool, error) {
	employee, err := ResolveEmployee(db, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return employee.EmployerID != nil && *employee.EmployerID == employerID, nil
}

// RequireStaffOf is the guard form of IsStaffOf used by mutation entry
// points: it returns Forbidden when the relationship does not hold.
func RequireStaffOf(db *gorm.DB, userID uuid.UUID, employerID uuid.UUID) error {
	ok, err := IsStaffOf(db, userID, employerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.ErrForbidden, "You are not staff of this employer")
	}
	return nil
}
