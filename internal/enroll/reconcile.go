package enroll

import "sort"

// Status classifies a pending row against the course's current roster.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusUnchanged Status = "UNCHANGED"
	StatusChanged   Status = "CHANGED"
)

// Field names reported in Result.Mismatch.
const (
	FieldName    = "name"
	FieldTeam    = "team_name"
	FieldSection = "section_name"
)

// Result is the outcome of classifying one pending record.
type Result struct {
	Email    string   `json:"email"`
	Status   Status   `json:"status"`
	Mismatch []string `json:"mismatch,omitempty"`
	Pending  Record   `json:"pending"`
	Existing *Record  `json:"existing,omitempty"`
}

// Summary counts results per status.
type Summary struct {
	New       int `json:"new"`
	Unchanged int `json:"unchanged"`
	Changed   int `json:"changed"`
}

// IsSameEnrollInformation reports whether two records for the same student carry the same
// name, team and section. Email, course and join state are not compared.
func IsSameEnrollInformation(a, b Record) bool {
	return a.Name == b.Name && a.TeamName == b.TeamName && a.SectionName == b.SectionName
}

// Mismatches lists the compared fields that differ between a and b.
func Mismatches(a, b Record) []string {
	var fields []string
	if a.Name != b.Name {
		fields = append(fields, FieldName)
	}
	if a.TeamName != b.TeamName {
		fields = append(fields, FieldTeam)
	}
	if a.SectionName != b.SectionName {
		fields = append(fields, FieldSection)
	}
	return fields
}

// Classify compares a pending record with the existing record for the same email, if any.
func Classify(pending Record, existing []Record) Result {
	for i := range existing {
		if existing[i].Email != pending.Email {
			continue
		}
		return classifyAgainst(pending, existing[i])
	}
	return Result{Email: pending.Email, Status: StatusNew, Pending: pending}
}

// Reconcile classifies every pending record. Output keeps the order of pending.
func Reconcile(pending, existing []Record) []Result {
	index := make(map[string]Record, len(existing))
	for _, r := range existing {
		index[r.Email] = r
	}
	results := make([]Result, 0, len(pending))
	for _, p := range pending {
		current, ok := index[p.Email]
		if !ok {
			results = append(results, Result{Email: p.Email, Status: StatusNew, Pending: p})
			continue
		}
		results = append(results, classifyAgainst(p, current))
	}
	return results
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusNew:
			s.New++
		case StatusUnchanged:
			s.Unchanged++
		case StatusChanged:
			s.Changed++
		}
	}
	return s
}

// Emails returns the sorted emails of results having one of the given statuses.
func Emails(results []Result, statuses ...Status) []string {
	want := make(map[Status]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}
	var emails []string
	for _, r := range results {
		if _, ok := want[r.Status]; ok {
			emails = append(emails, r.Email)
		}
	}
	sort.Strings(emails)
	return emails
}

func classifyAgainst(pending, current Record) Result {
	existing := current
	result := Result{Email: pending.Email, Pending: pending, Existing: &existing}
	if IsSameEnrollInformation(pending, current) {
		result.Status = StatusUnchanged
		return result
	}
	result.Status = StatusChanged
	result.Mismatch = Mismatches(current, pending)
	return result
}
