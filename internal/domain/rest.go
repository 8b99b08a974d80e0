package domain

// RestRecord marks a member as excused from long-offline reports until
// EndDate (inclusive).
type RestRecord struct {
	MembershipID string `json:"-"`
	BungieName   string `json:"bungie_name"`
	DisplayName  string `json:"display_name"`
	EndDate      Date   `json:"end_time"`
	ReferenceURL string `json:"msg_url"`
	Description  string `json:"description"`
}

// ExpiredOn reports whether the record's end date is strictly before today.
func (r RestRecord) ExpiredOn(today Date) bool {
	return r.EndDate.Before(today)
}
