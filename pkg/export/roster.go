package export

// RosterRow is one student line of an exported course roster.
type RosterRow struct {
	Section  string `csv:"Section"`
	Team     string `csv:"Team"`
	Name     string `csv:"Full Name"`
	Email    string `csv:"Email"`
	Status   string `csv:"Status"`
	Comments string `csv:"Comments"`
}

// RosterHeaders lists the exported columns in order.
var RosterHeaders = []string{"Section", "Team", "Full Name", "Email", "Status", "Comments"}

func (r RosterRow) cells() []string {
	return []string{r.Section, r.Team, r.Name, r.Email, r.Status, r.Comments}
}
