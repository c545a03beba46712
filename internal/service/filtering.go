package service

import (
	"sort"

	"github.com/fms-portal/suggestion-api/internal/models"
)

// ApplyFilters narrows records by the boolean AND of the status,
// department and submitter-type predicates. The department predicate is
// skipped for department-tier admins, whose visibility restriction has
// already been applied. Input order is preserved.
func ApplyFilters(records []models.Suggestion, filter models.FilterState, admin models.AdminInfo) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(records))
	for _, record := range records {
		if !matchesStatus(record, filter.Status) {
			continue
		}
		if DepartmentFilterAllowed(admin.AccessLevel) && !matchesDepartment(record, filter.Department) {
			continue
		}
		if !matchesUserType(record, filter.UserType) {
			continue
		}
		out = append(out, record)
	}
	return out
}

func matchesStatus(record models.Suggestion, status string) bool {
	return status == "" || status == "all" || string(record.Status) == status
}

func matchesDepartment(record models.Suggestion, department string) bool {
	return department == "" || department == "all" || record.Department == department
}

func matchesUserType(record models.Suggestion, userType string) bool {
	return userType == "" || userType == "all" || record.Role == userType
}

// SortRecords orders records by submission time. The sort is stable, so
// ties keep their fetch order and newest followed by oldest is an exact
// reversal when no ties exist.
func SortRecords(records []models.Suggestion, key models.SortKey) []models.Suggestion {
	out := make([]models.Suggestion, len(records))
	copy(out, records)
	switch key {
	case models.SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		})
	}
	return out
}

// BuildView assembles the filtered, sorted projection and recomputes the
// selection: the first record when the view is non-empty, no selection
// at all otherwise. A selection can never point at a hidden record.
func BuildView(records []models.Suggestion, filter models.FilterState, key models.SortKey, admin models.AdminInfo) models.SuggestionView {
	filtered := ApplyFilters(records, filter, admin)
	ordered := SortRecords(filtered, key)

	view := models.SuggestionView{
		Suggestions: ordered,
		Total:       len(ordered),
	}
	if len(ordered) > 0 {
		view.SelectedID = ordered[0].ID
	}
	return view
}
