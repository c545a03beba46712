package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fms-portal/suggestion-api/internal/models"
)

func timedRecords() []models.Suggestion {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.Suggestion{
		{ID: "1", Department: "Department of Business Management", Role: models.RoleStudent, Status: models.StatusNew, SubmittedAt: base.Add(2 * time.Hour)},
		{ID: "2", Department: "Department of Tourism Management", Role: models.RoleTeacher, Status: models.StatusResponded, SubmittedAt: base},
		{ID: "3", Department: "Department of Business Management", Role: models.RoleTeacher, Status: models.StatusResponded, SubmittedAt: base.Add(time.Hour)},
	}
}

func TestApplyFiltersAND(t *testing.T) {
	admin := models.AdminInfo{AccessLevel: models.AccessAll}
	filter := models.FilterState{Status: "responded", Department: "Department of Business Management"}

	out := ApplyFilters(timedRecords(), filter, admin)
	require.Len(t, out, 1)
	assert.Equal(t, "3", out[0].ID)
}

func TestApplyFiltersWildcards(t *testing.T) {
	admin := models.AdminInfo{AccessLevel: models.AccessAll}

	assert.Len(t, ApplyFilters(timedRecords(), models.FilterState{}, admin), 3)
	assert.Len(t, ApplyFilters(timedRecords(), models.FilterState{Status: "all", Department: "all", UserType: "all"}, admin), 3)
}

func TestApplyFiltersDepartmentIgnoredForDepartmentTier(t *testing.T) {
	// The department control is suppressed for this tier; a stray filter
	// value must not narrow the view further.
	admin := models.AdminInfo{Department: "Department of Business Management", AccessLevel: models.AccessDepartment}
	records := VisibleSuggestions(admin, timedRecords())

	out := ApplyFilters(records, models.FilterState{Department: "Department of Tourism Management"}, admin)
	assert.Len(t, out, 2)
}

func TestSortRecordsNewestAndOldest(t *testing.T) {
	newest := SortRecords(timedRecords(), models.SortNewest)
	require.Len(t, newest, 3)
	assert.Equal(t, []string{"1", "3", "2"}, []string{newest[0].ID, newest[1].ID, newest[2].ID})

	oldest := SortRecords(timedRecords(), models.SortOldest)
	assert.Equal(t, []string{"2", "3", "1"}, []string{oldest[0].ID, oldest[1].ID, oldest[2].ID})
}

func TestSortRecordsStableOnTies(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []models.Suggestion{
		{ID: "a", SubmittedAt: ts},
		{ID: "b", SubmittedAt: ts},
		{ID: "c", SubmittedAt: ts},
	}

	sorted := SortRecords(records, models.SortNewest)
	assert.Equal(t, []string{"a", "b", "c"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestBuildViewSelectsFirst(t *testing.T) {
	admin := models.AdminInfo{AccessLevel: models.AccessAll}

	view := BuildView(timedRecords(), models.FilterState{}, models.SortNewest, admin)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, "1", view.SelectedID)
}

func TestBuildViewEmptyHasNoSelection(t *testing.T) {
	admin := models.AdminInfo{AccessLevel: models.AccessAll}

	view := BuildView(timedRecords(), models.FilterState{Status: "responded", UserType: models.RoleStudent}, models.SortNewest, admin)
	assert.Zero(t, view.Total)
	assert.Empty(t, view.SelectedID)
}

func TestBuildViewSelectionNeverHidden(t *testing.T) {
	admin := models.AdminInfo{Department: "Department of Tourism Management", AccessLevel: models.AccessDepartment}
	visible := VisibleSuggestions(admin, timedRecords())

	view := BuildView(visible, models.FilterState{}, models.SortNewest, admin)
	require.Equal(t, 1, view.Total)
	assert.Equal(t, "2", view.SelectedID)
}
