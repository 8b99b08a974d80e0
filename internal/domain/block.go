package domain

import "time"

// BlockRecord flags a player identity so that a rejoin raises a warning.
type BlockRecord struct {
	MembershipID   string         `json:"membership_id"`
	BungieName     string         `json:"bungie_name"`
	MembershipType MembershipType `json:"membership_type"`
	CreatedAt      int64          `json:"time"`
	ReferenceURL   string         `json:"msg_url"`
	Description    string         `json:"description"`
}

func (b BlockRecord) Created() time.Time {
	return time.Unix(b.CreatedAt, 0)
}

// BlockPage is one fixed-size page of the block list. Page is zero-based.
type BlockPage struct {
	Records    []BlockRecord
	Page       int
	TotalPages int
	Total      int
}
