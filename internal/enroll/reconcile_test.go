package enroll

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursedesk-api/internal/models"
)

func alice() Record {
	return Record{
		Email:       "alice@example.com",
		CourseID:    "CS3281",
		Name:        "Alice",
		JoinState:   models.JoinStateJoined,
		TeamName:    "Team 1",
		SectionName: "Section 1",
	}
}

func TestIsSameEnrollInformation(t *testing.T) {
	base := alice()

	cases := []struct {
		name   string
		mutate func(r *Record)
		same   bool
	}{
		{name: "clone", mutate: func(r *Record) {}, same: true},
		{name: "different email", mutate: func(r *Record) { r.Email = "ace@example.com" }, same: true},
		{name: "different course id", mutate: func(r *Record) { r.CourseID = "CS3381" }, same: true},
		{name: "different join state", mutate: func(r *Record) { r.JoinState = models.JoinStateNotJoined }, same: true},
		{name: "different name", mutate: func(r *Record) { r.Name = "Ace" }, same: false},
		{name: "different team", mutate: func(r *Record) { r.TeamName = "Team 3" }, same: false},
		{name: "different section", mutate: func(r *Record) { r.SectionName = "Section 2" }, same: false},
		{name: "case differs", mutate: func(r *Record) { r.Name = "alice" }, same: false},
		{name: "trailing space", mutate: func(r *Record) { r.TeamName = "Team 1 " }, same: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other := base
			tc.mutate(&other)
			assert.Equal(t, tc.same, IsSameEnrollInformation(base, other))
			assert.Equal(t, tc.same, IsSameEnrollInformation(other, base), "comparison must be symmetric")
		})
	}
}

func TestIsSameEnrollInformationReflexiveAndEmpty(t *testing.T) {
	assert.True(t, IsSameEnrollInformation(alice(), alice()))
	assert.True(t, IsSameEnrollInformation(Record{}, Record{}))
	assert.False(t, IsSameEnrollInformation(Record{}, Record{SectionName: "Section 1"}))
}

func TestIsSameEnrollInformationDoesNotMutate(t *testing.T) {
	a, b := alice(), alice()
	b.TeamName = "Team 3"
	IsSameEnrollInformation(a, b)
	assert.Equal(t, alice(), a)
	assert.Equal(t, "Team 3", b.TeamName)
}

func TestClassifyJoinStateOnlyIsUnchanged(t *testing.T) {
	existing := alice()
	pending := alice()
	pending.JoinState = models.JoinStateNotJoined

	result := Classify(pending, []Record{existing})
	assert.Equal(t, StatusUnchanged, result.Status)
	assert.Empty(t, result.Mismatch)
	require.NotNil(t, result.Existing)
	assert.Equal(t, models.JoinStateJoined, result.Existing.JoinState)
}

func TestClassifyTeamChange(t *testing.T) {
	pending := alice()
	pending.TeamName = "Team 3"

	result := Classify(pending, []Record{alice()})
	assert.Equal(t, StatusChanged, result.Status)
	assert.Equal(t, []string{FieldTeam}, result.Mismatch)
}

func TestClassifyNew(t *testing.T) {
	pending := Record{Email: "zed@example.com", Name: "Zed", TeamName: "Team 9"}
	result := Classify(pending, []Record{alice()})
	assert.Equal(t, StatusNew, result.Status)
	assert.Nil(t, result.Existing)
}

func TestReconcile(t *testing.T) {
	bob := Record{Email: "bob@example.com", CourseID: "CS3281", Name: "Bob", JoinState: models.JoinStateJoined, TeamName: "Team 1", SectionName: "Section 1"}
	existing := []Record{alice(), bob}

	movedBob := bob
	movedBob.SectionName = "Section 2"
	movedBob.Name = "Bobby"
	newcomer := Record{Email: "chloe@example.com", CourseID: "CS3281", Name: "Chloe", TeamName: "Team 2", SectionName: "Section 2"}

	results := Reconcile([]Record{newcomer, alice(), movedBob}, existing)
	require.Len(t, results, 3)

	got := make([]Status, 0, len(results))
	for _, r := range results {
		got = append(got, r.Status)
	}
	if diff := cmp.Diff([]Status{StatusNew, StatusUnchanged, StatusChanged}, got); diff != "" {
		t.Fatalf("unexpected statuses (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{FieldName, FieldSection}, results[2].Mismatch); diff != "" {
		t.Fatalf("unexpected mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, Summary{New: 1, Unchanged: 1, Changed: 1}, Summarize(results))
	assert.Equal(t, []string{"bob@example.com", "chloe@example.com"}, Emails(results, StatusNew, StatusChanged))
}

func TestReconcileIdempotent(t *testing.T) {
	existing := []Record{alice()}
	pending := []Record{alice()}
	first := Reconcile(pending, existing)
	second := Reconcile(pending, existing)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reconcile not deterministic:\n%s", diff)
	}
}

func TestNewStudentsPanelToggle(t *testing.T) {
	panel := NewStudentsPanel{Collapsed: true}
	panel.Toggle()
	assert.False(t, panel.Collapsed)
	panel.Toggle()
	assert.True(t, panel.Collapsed)
}
