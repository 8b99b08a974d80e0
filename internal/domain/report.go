package domain

import "time"

// ReportView is the rendered result of a query command.
type ReportView struct {
	Title       string
	Description string
	Lines       []string
	Footer      string
	Page        int
	TotalPages  int
}

func (v *ReportView) IsEmpty() bool {
	return v == nil || len(v.Lines) == 0
}

// ActivitySummary describes what an online member is currently doing.
type ActivitySummary struct {
	MembershipID string    `json:"membership_id"`
	ActivityHash uint32    `json:"activity_hash"`
	ActivityName string    `json:"activity_name"`
	StartedAt    time.Time `json:"started_at"`
	Unknown      bool      `json:"unknown"`
}

// MembershipEventKind is the direction of a roster change.
type MembershipEventKind string

const (
	MembershipJoined MembershipEventKind = "joined"
	MembershipLeft   MembershipEventKind = "left"
)

// MembershipEvent is one join or leave detected by a reconciliation cycle.
type MembershipEvent struct {
	MembershipID string
	DisplayName  string
	BungieName   string
	Kind         MembershipEventKind
	DetectedAt   time.Time
}
