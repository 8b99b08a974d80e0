package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// ChannelID identifies a chat room that can receive notifications.
type ChannelID string

func (c ChannelID) String() string {
	return string(c)
}

// MarshalJSON writes canonical integer ids as JSON numbers so documents that
// stored numeric ids keep their shape after a rewrite.
func (c ChannelID) MarshalJSON() ([]byte, error) {
	s := string(c)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// UnmarshalJSON accepts both string and numeric ids so documents written with
// integer channel ids still load.
func (c *ChannelID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ChannelID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return err
	}
	*c = ChannelID(n.String())
	return nil
}

type NotificationKind string

const (
	NotificationRosterChange  NotificationKind = "roster_change"
	NotificationBlockedRejoin NotificationKind = "blocked_rejoin"
)

type NotificationField struct {
	Name  string
	Value string
}

// Notification is a platform neutral rich message: a title, a short
// description and a bounded list of fields.
type Notification struct {
	Kind        NotificationKind
	Title       string
	Description string
	Fields      []NotificationField
	Footer      string
	Timestamp   time.Time
}

func (n *Notification) FieldCount() int {
	if n == nil {
		return 0
	}
	return len(n.Fields)
}
