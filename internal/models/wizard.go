package models

import "time"

// Wizard steps of the public submission flow.
const (
	StepRole       = 1
	StepDepartment = 2
	StepCompose    = 3
)

// WizardState holds one visitor's progress through the submission
// wizard. It lives in Redis keyed by an opaque session id and is
// discarded after the session TTL.
type WizardState struct {
	ID         string    `json:"id"`
	Role       string    `json:"role,omitempty"`
	Department string    `json:"department,omitempty"`
	Theme      string    `json:"theme,omitempty"`
	Stack      []int     `json:"stack"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Current returns the step on top of the navigation stack, falling back
// to the role step when the stack is empty.
func (w *WizardState) Current() int {
	if len(w.Stack) == 0 {
		return StepRole
	}
	return w.Stack[len(w.Stack)-1]
}

// Visit pushes a step onto the navigation stack. Consecutive duplicates
// are collapsed so the stack never holds the same step twice in a row.
func (w *WizardState) Visit(step int) {
	if len(w.Stack) > 0 && w.Stack[len(w.Stack)-1] == step {
		return
	}
	w.Stack = append(w.Stack, step)
}

// Back pops the current step and returns the step now on top. An
// exhausted stack resets to the role step.
func (w *WizardState) Back() int {
	if len(w.Stack) > 0 {
		w.Stack = w.Stack[:len(w.Stack)-1]
	}
	if len(w.Stack) == 0 {
		w.Stack = []int{StepRole}
	}
	return w.Current()
}

// Department describes one destination for suggestions, including the
// public form's theme and prompt copy.
type Department struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Theme  string `json:"theme"`
	Prompt string `json:"prompt"`
}

// Departments is the faculty directory served to the public form.
var Departments = []Department{
	{
		Name:   "Department of Business Management",
		Code:   "BM",
		Theme:  "business",
		Prompt: "Share your insights on business education and management practices",
	},
	{
		Name:   "Department of Accountancy and Finance",
		Code:   "AF",
		Theme:  "accountancy",
		Prompt: "Help us improve financial education and accountancy programs",
	},
	{
		Name:   "Department of Marketing Management",
		Code:   "MM",
		Theme:  "marketing",
		Prompt: "Share your ideas on marketing curriculum and industry connections",
	},
	{
		Name:   "Department of Tourism Management",
		Code:   "TM",
		Theme:  "tourism",
		Prompt: "Tell us how we can enhance tourism and hospitality education",
	},
	{
		Name:   "Other",
		Code:   "OT",
		Theme:  "other",
		Prompt: "Share your feedback for other departments or general suggestions",
	},
}

// KnownDepartment reports whether name appears in the directory.
func KnownDepartment(name string) bool {
	for _, d := range Departments {
		if d.Name == name {
			return true
		}
	}
	return false
}
