package enroll

// NewStudentsPanel holds the collapse state of the "new students" panel on the enroll page.
type NewStudentsPanel struct {
	Collapsed bool `json:"collapsed"`
}

// Toggle flips the collapse flag.
func (p *NewStudentsPanel) Toggle() {
	p.Collapsed = !p.Collapsed
}
