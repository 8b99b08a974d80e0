package roster

import "github.com/kapu/destiny-clan-bot-go/internal/domain"

// Delta is the result of comparing a fetched roster against the snapshot.
type Delta struct {
	Previous  domain.Roster
	Current   domain.Roster
	Joined    domain.Roster
	Left      domain.Roster
	ColdStart bool
}

// Empty reports whether nobody joined or left.
func (d Delta) Empty() bool {
	return len(d.Joined) == 0 && len(d.Left) == 0
}

// Diff compares membership ids only. Joined records come from next, left
// records from previous, both in their original order. An empty previous
// roster is a cold start and reports no changes.
func Diff(next, previous domain.Roster) (joined, left domain.Roster) {
	joined = domain.Roster{}
	left = domain.Roster{}
	if len(previous) == 0 {
		return joined, left
	}

	oldIDs := previous.IDs()
	newIDs := next.IDs()

	seen := make(map[string]struct{}, len(next))
	for _, m := range next {
		if _, ok := oldIDs[m.MembershipID]; ok {
			continue
		}
		if _, dup := seen[m.MembershipID]; dup {
			continue
		}
		seen[m.MembershipID] = struct{}{}
		joined = append(joined, m)
	}

	clear(seen)
	for _, m := range previous {
		if _, ok := newIDs[m.MembershipID]; ok {
			continue
		}
		if _, dup := seen[m.MembershipID]; dup {
			continue
		}
		seen[m.MembershipID] = struct{}{}
		left = append(left, m)
	}
	return joined, left
}
