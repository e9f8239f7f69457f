package repositories

import (
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/jobboard/internal/app/approval"
	"github.com/yigit/jobboard/internal/app/models"
)

func toSQL(t *testing.T, s squirrel.Sqlizer) (string, []interface{}) {
	t.Helper()
	sql, args, err := s.ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	return sql, args
}

func int32p(v int32) *int32 { return &v }

// ── JobFilterPredicate ─────────────────────────────────────────

func TestJobFilterPredicate_Empty(t *testing.T) {
	sql, args := toSQL(t, JobFilterPredicate(models.JobFilter{}))
	if sql != "(1=1)" {
		t.Errorf("sql = %q, want (1=1)", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestJobFilterPredicate_PublicOnlyAllowsLegacyRows(t *testing.T) {
	sql, args := toSQL(t, JobFilterPredicate(models.JobFilter{PublicOnly: true}))

	for _, want := range []string{"j.is_active = ?", "j.approval_status = ?", "j.approval_status IS NULL"} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql %q missing %q", sql, want)
		}
	}
	if len(args) != 2 || args[0] != true || args[1] != "approved" {
		t.Errorf("args = %v, want [true approved]", args)
	}
}

func TestJobFilterPredicate_SalaryMatchesEitherBound(t *testing.T) {
	sql, args := toSQL(t, JobFilterPredicate(models.JobFilter{
		SalaryMin: int32p(50000),
		SalaryMax: int32p(90000),
	}))

	for _, want := range []string{
		"(j.salary_min >= ? OR j.salary_max >= ?)",
		"(j.salary_min <= ? OR j.salary_max <= ?)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql %q missing %q", sql, want)
		}
	}
	want := []interface{}{int32(50000), int32(50000), int32(90000), int32(90000)}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %v, want %v", i, args[i], want[i])
		}
	}
}

func TestJobFilterPredicate_KeywordIsEscaped(t *testing.T) {
	sql, args := toSQL(t, JobFilterPredicate(models.JobFilter{Keyword: "100%"}))

	for _, col := range []string{"j.title", "j.company", "j.description"} {
		if !strings.Contains(sql, col+" ILIKE ?") {
			t.Errorf("sql %q missing ILIKE on %s", sql, col)
		}
	}
	if len(args) != 3 || args[0] != `%100\%%` {
		t.Errorf("args = %v, want escaped pattern", args)
	}
}

func TestJobFilterPredicate_ApprovalStatus(t *testing.T) {
	tests := []struct {
		name   string
		status approval.Status
		want   string
	}{
		{"pending", approval.StatusPending, "j.approval_status = ?"},
		{"legacy", approval.StatusLegacyApproved, "j.approval_status IS NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.status
			sql, _ := toSQL(t, JobFilterPredicate(models.JobFilter{ApprovalStatus: &status}))
			if !strings.Contains(sql, tt.want) {
				t.Errorf("sql %q missing %q", sql, tt.want)
			}
		})
	}
}

// ── JobPatchSetMap ─────────────────────────────────────────────

func TestJobPatchSetMap_OnlyAllowListedColumns(t *testing.T) {
	title := "Backend Engineer"
	active := false
	jobType := models.JobTypeContract

	set := JobPatchSetMap(models.JobPatch{
		Title:        &title,
		IsActive:     &active,
		JobType:      &jobType,
		Requirements: []string{"Go"},
	})

	want := map[string]interface{}{
		"title":     title,
		"is_active": false,
		"job_type":  "contract",
	}
	if len(set) != len(want)+1 {
		t.Fatalf("set = %v, want %d columns", set, len(want)+1)
	}
	for k, v := range want {
		if set[k] != v {
			t.Errorf("set[%q] = %v, want %v", k, set[k], v)
		}
	}
	if _, ok := set["requirements"]; !ok {
		t.Error("requirements not set")
	}
	for _, forbidden := range []string{"approval_status", "created_by", "approved_by"} {
		if _, ok := set[forbidden]; ok {
			t.Errorf("patch wrote %q", forbidden)
		}
	}
}

func TestJobPatchSetMap_Empty(t *testing.T) {
	if set := JobPatchSetMap(models.JobPatch{}); len(set) != 0 {
		t.Errorf("set = %v, want empty", set)
	}
}

// ── UserListPredicate ──────────────────────────────────────────

func TestUserListPredicate(t *testing.T) {
	sql, args := toSQL(t, UserListPredicate(models.UserFilter{Search: "ann", Role: models.RoleEmployer}))

	if !strings.Contains(sql, "(name ILIKE ? OR email ILIKE ?)") {
		t.Errorf("sql %q missing search clause", sql)
	}
	if !strings.Contains(sql, "role = ?") {
		t.Errorf("sql %q missing role clause", sql)
	}
	if len(args) != 3 || args[0] != "%ann%" || args[2] != models.RoleEmployer {
		t.Errorf("args = %v", args)
	}
}

// ── LikePattern ────────────────────────────────────────────────

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"go", "%go%"},
		{"  go  ", "%go%"},
		{"50%_off", `%50\%\_off%`},
		{`a\b`, `%a\\b%`},
	}
	for _, tt := range tests {
		if got := LikePattern(tt.in); got != tt.want {
			t.Errorf("LikePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
