package stage

// Details is the display data for a stage.
type Details struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

var details = map[Stage]Details{
	Idea:         {"Idea", "Exploring your ADU concept"},
	Feasibility:  {"Feasibility", "Assessing site & zoning"},
	Design:       {"Design", "Creating architectural plans"},
	Permitting:   {"Permitting", "Applying for permits"},
	Procurement:  {"Procurement", "Selecting contractors"},
	Construction: {"Construction", "Building underway"},
	Closeout:     {"Closeout", "Final inspections & handover"},
}

// Info returns the label and description of s.
func Info(s Stage) Details {
	return details[s]
}

// Progress returns the 1-based position of s and the number of stages,
// as in "Stage 4 of 7". Unknown stages report position 0.
func Progress(s Stage) (position, total int) {
	return Index(s) + 1, len(Order)
}

// Next returns the stage after s. The second result is false for closeout
// and for unknown stages.
func Next(s Stage) (Stage, bool) {
	i := Index(s)
	if i < 0 || i == len(Order)-1 {
		return "", false
	}
	return Order[i+1], true
}
