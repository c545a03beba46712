package service

import (
	"github.com/fms-portal/suggestion-api/internal/models"
)

// Access policy: a pure mapping from access level to capabilities. No
// network or storage side effects; everything else consults these
// functions instead of re-deriving tier rules.

// VisibleSuggestions restricts records to what the admin may see.
// Department-tier admins only see their own department; the other tiers
// see everything.
func VisibleSuggestions(admin models.AdminInfo, records []models.Suggestion) []models.Suggestion {
	if admin.AccessLevel != models.AccessDepartment {
		return records
	}
	visible := make([]models.Suggestion, 0, len(records))
	for _, record := range records {
		if record.Department == admin.Department {
			visible = append(visible, record)
		}
	}
	return visible
}

// CanView reports whether the admin may see the given record.
func CanView(admin models.AdminInfo, record models.Suggestion) bool {
	if admin.AccessLevel != models.AccessDepartment {
		return true
	}
	return record.Department == admin.Department
}

// CanRespond reports whether the admin's tier may submit responses.
// Superadmin is read-only by definition.
func CanRespond(level models.AccessLevel) bool {
	return level == models.AccessDepartment || level == models.AccessAll
}

// DepartmentFilterAllowed reports whether the department filter control
// applies for this tier. Department admins have it suppressed entirely:
// their visibility is already pinned to one department.
func DepartmentFilterAllowed(level models.AccessLevel) bool {
	return level != models.AccessDepartment
}
