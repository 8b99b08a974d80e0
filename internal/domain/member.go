package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

// MembershipType is the platform a Destiny membership belongs to.
type MembershipType int

const (
	MembershipAll        MembershipType = -1
	MembershipNone       MembershipType = 0
	MembershipXbox       MembershipType = 1
	MembershipPSN        MembershipType = 2
	MembershipSteam      MembershipType = 3
	MembershipBlizzard   MembershipType = 4
	MembershipStadia     MembershipType = 5
	MembershipEpic       MembershipType = 6
	MembershipDemon      MembershipType = 10
	MembershipBungieNext MembershipType = 254
)

func (t MembershipType) String() string {
	switch t {
	case MembershipAll:
		return "All"
	case MembershipXbox:
		return "Xbox"
	case MembershipPSN:
		return "PSN"
	case MembershipSteam:
		return "Steam"
	case MembershipBlizzard:
		return "Blizzard"
	case MembershipStadia:
		return "Stadia"
	case MembershipEpic:
		return "Epic"
	case MembershipDemon:
		return "Demon"
	case MembershipBungieNext:
		return "BungieNext"
	default:
		return "None"
	}
}

// MemberRecord is one clan member as reported by the group members endpoint.
// MembershipID is the identity key; every other field may change between fetches.
type MemberRecord struct {
	MembershipID      string         `json:"membership_id"`
	MembershipType    MembershipType `json:"membership_type"`
	DisplayName       string         `json:"display_name"`
	GlobalDisplayName string         `json:"global_display_name,omitempty"`
	GlobalNameCode    int            `json:"global_display_name_code,omitempty"`
	BungieNetName     string         `json:"bungie_net_name,omitempty"`
	IsOnline          bool           `json:"is_online"`
	LastOnlineChange  int64          `json:"last_online_change"`
}

// BungieName returns "Name#0123" when a global name is known, otherwise the
// platform display name.
func (m MemberRecord) BungieName() string {
	if m.GlobalDisplayName != "" {
		return util.FormatBungieName(m.GlobalDisplayName, m.GlobalNameCode)
	}
	return m.DisplayName
}

// Name returns the best human readable name for the member.
func (m MemberRecord) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	if m.GlobalDisplayName != "" {
		return m.GlobalDisplayName
	}
	return m.MembershipID
}

// LastOnline returns the last online status change as a time value.
func (m MemberRecord) LastOnline() time.Time {
	return time.Unix(m.LastOnlineChange, 0)
}

// MatchesName reports whether query names this member, either as a full
// Bungie name ("Name#0123") or as a display name, ignoring case.
func (m MemberRecord) MatchesName(query string) bool {
	q := util.Normalize(query)
	if q == "" {
		return false
	}
	if m.GlobalDisplayName != "" && util.Normalize(m.BungieName()) == q {
		return true
	}
	return util.Normalize(m.DisplayName) == q
}

// Roster is an ordered member list keyed by MembershipID.
type Roster []MemberRecord

// IDs returns the membership id set of the roster.
func (r Roster) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(r))
	for _, m := range r {
		ids[m.MembershipID] = struct{}{}
	}
	return ids
}

// Find returns the member with the given id.
func (r Roster) Find(membershipID string) (MemberRecord, bool) {
	for _, m := range r {
		if m.MembershipID == membershipID {
			return m, true
		}
	}
	return MemberRecord{}, false
}

// FindByName returns the first member whose name matches query.
func (r Roster) FindByName(query string) (MemberRecord, bool) {
	for _, m := range r {
		if m.MatchesName(query) {
			return m, true
		}
	}
	return MemberRecord{}, false
}

// Dedupe drops records with an empty or repeated MembershipID, keeping the
// first occurrence.
func (r Roster) Dedupe() Roster {
	seen := make(map[string]struct{}, len(r))
	out := make(Roster, 0, len(r))
	for _, m := range r {
		if m.MembershipID == "" {
			continue
		}
		if _, dup := seen[m.MembershipID]; dup {
			continue
		}
		seen[m.MembershipID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Clone returns a copy safe to hand to other goroutines.
func (r Roster) Clone() Roster {
	if r == nil {
		return Roster{}
	}
	out := make(Roster, len(r))
	copy(out, r)
	return out
}

// ParseMembershipType accepts the numeric platform value used by the API.
func ParseMembershipType(s string) (MembershipType, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return MembershipNone, false
	}
	return MembershipType(n), true
}
