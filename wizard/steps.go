package wizard

// Step describes one screen of the intake wizard.
type Step struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	IsFinalStep  bool   `json:"isFinalStep"`
}

type Steps []Step

var DefaultSteps = Steps{
	{ID: 1, Title: "Requester details", Instructions: "Tell us who you are and give the request a short title."},
	{ID: 2, Title: "Location", Instructions: "Choose the district and city where help is needed."},
	{ID: 3, Title: "Assistance type", Instructions: "Choose the main kind of assistance you need."},
	{ID: 4, Title: "Assistance details", Instructions: "Select one or more specific needs."},
	{ID: 5, Title: "Logistics", Instructions: "Let us know whether transportation or volunteers are needed."},
	{ID: 6, Title: "Description", Instructions: "Describe the request and attach any supporting files."},
	{ID: 7, Title: "Summary", Instructions: "Review your request before sending it."},
	{ID: 8, Title: "Confirmation", Instructions: "Your request has been received.", IsFinalStep: true},
}

func (s Steps) Total() int {
	return len(s)
}

func (s Steps) IsFinalStep(n int) bool {
	if n < 1 || n > len(s) {
		return false
	}
	return s[n-1].IsFinalStep
}

// SubmitStep is the step whose forward transition submits the draft: the
// one right before the first final step. Without a final step it is the
// second to last one.
func (s Steps) SubmitStep() int {
	for i, step := range s {
		if step.IsFinalStep {
			return i
		}
	}
	return len(s) - 1
}

func (s Steps) Get(n int) (Step, bool) {
	if n < 1 || n > len(s) {
		return Step{}, false
	}
	return s[n-1], true
}
