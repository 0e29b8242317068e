package schema

import "errors"

// NotAvailable is the sentinel substituted for any value the source document
// does not carry. It is never an error to hit it; absence is representable.
const NotAvailable = "N/A"

// ProfileField is one labeled value of the audited company's profile.
type ProfileField struct {
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

// Profile is the ordered projection of a flattened audit document through the
// field dictionary. Order follows FieldMapping, not the caller's selection.
type Profile []ProfileField

// Get returns the value for a label and whether the label is present.
func (p Profile) Get(label string) (interface{}, bool) {
	for _, f := range p {
		if f.Label == label {
			return f.Value, true
		}
	}
	return nil, false
}

// GetString returns the value for a label rendered as a cell string, or
// NotAvailable when the label is absent.
func (p Profile) GetString(label string) string {
	v, ok := p.Get(label)
	if !ok {
		return NotAvailable
	}
	return CellString(v)
}

// RequirementRecord is one checklist scoring entry enriched with display
// metadata from the requirement id table.
type RequirementRecord struct {
	Num                 string `json:"num"`
	UUID                string `json:"uuid"`
	Chapter             string `json:"chapter"`
	Theme               string `json:"theme"`
	SubTheme            string `json:"subTheme"`
	Explanation         string `json:"explanation"`
	DetailedExplanation string `json:"detailedExplanation"`
	Score               string `json:"score"`
	Response            string `json:"response"`
}

// Score labels that carry no deficiency. "A" is full compliance; the other
// three mark a requirement outside the audit scope. The source uses all three
// not-applicable spellings; they are matched exactly, never normalized.
const ScoreCompliant = "A"

// NotApplicableScores lists the labels marking a requirement out of scope.
var NotApplicableScores = []string{"NA", "N/A", "Non applicable"}

// IsNotApplicable reports whether label is one of the not-applicable
// spellings. Exact, case-sensitive match.
func IsNotApplicable(label string) bool {
	for _, na := range NotApplicableScores {
		if label == na {
			return true
		}
	}
	return false
}

// IsDeficient reports whether a score label indicates a non-conformity:
// anything outside {"A", "NA", "N/A", "Non applicable"}.
func IsDeficient(label string) bool {
	return label != ScoreCompliant && !IsNotApplicable(label)
}

// Status tracks the follow-up of a non-conformity action plan.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In progress"
	StatusDone       Status = "Done"
	StatusPostponed  Status = "Postponed"
	StatusCancelled  Status = "Cancelled"
)

// Statuses lists every accepted Status value.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone, StatusPostponed, StatusCancelled}

// ErrInvalidStatus reports a status outside Statuses.
var ErrInvalidStatus = errors.New("statut de suivi inconnu")

// Valid reports whether s is an accepted status. The empty status is valid:
// a freshly derived non-conformity has no follow-up state yet.
func (s Status) Valid() bool {
	if s == "" {
		return true
	}
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Comment is the two-party annotation attached to a profile field or
// checklist entry: one channel for the reviewer, one for the auditor.
type Comment struct {
	Reviewer string `json:"reviewer"`
	Auditor  string `json:"auditor"`
}

// Empty reports whether both channels are blank.
func (c Comment) Empty() bool { return c.Reviewer == "" && c.Auditor == "" }

// ActionComment extends Comment with the corrective-action workflow fields
// carried by non-conformity records.
type ActionComment struct {
	Comment
	ActionPlan          string `json:"actionPlan"`
	ImplementationNotes string `json:"implementationNotes"`
	Deadline            string `json:"deadline"`
	Responsible         string `json:"responsible"`
	Status              Status `json:"status"`
}

// Empty reports whether no field of the action comment is set.
func (a ActionComment) Empty() bool {
	return a.Comment.Empty() && a.ActionPlan == "" && a.ImplementationNotes == "" &&
		a.Deadline == "" && a.Responsible == "" && a.Status == ""
}

// Commentary is the mutable per-session annotation state. Profile entries are
// keyed by field label, checklist and non-conformity entries by display
// number. It is the only state that outlives a processing pass: it survives
// through exported work-save workbooks.
type Commentary struct {
	Profile         map[string]Comment       `json:"profile"`
	Checklist       map[string]Comment       `json:"checklist"`
	NonConformities map[string]ActionComment `json:"nonConformities"`
}

// NewCommentary returns an empty commentary state with all maps allocated.
func NewCommentary() *Commentary {
	return &Commentary{
		Profile:         make(map[string]Comment),
		Checklist:       make(map[string]Comment),
		NonConformities: make(map[string]ActionComment),
	}
}

// Clone returns a deep copy. Exports snapshot commentary through Clone so a
// failed workbook write can never corrupt session state.
func (c *Commentary) Clone() *Commentary {
	out := NewCommentary()
	for k, v := range c.Profile {
		out.Profile[k] = v
	}
	for k, v := range c.Checklist {
		out.Checklist[k] = v
	}
	for k, v := range c.NonConformities {
		out.NonConformities[k] = v
	}
	return out
}
