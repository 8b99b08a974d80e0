package notification

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

var fixedNow = time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC)

func roster(n int, prefix string) domain.Roster {
	r := make(domain.Roster, 0, n)
	for i := 0; i < n; i++ {
		r = append(r, domain.MemberRecord{
			MembershipID:      fmt.Sprintf("%s%d", prefix, i),
			MembershipType:    domain.MembershipSteam,
			DisplayName:       fmt.Sprintf("%s-guardian-%d", prefix, i),
			GlobalDisplayName: fmt.Sprintf("%s-guardian-with-a-long-name-%d", prefix, i),
			GlobalNameCode:    i,
		})
	}
	return r
}

func TestRosterChangeNothingChanged(t *testing.T) {
	assert.Nil(t, NewBuilder().RosterChange(10, 10, nil, nil, fixedNow))
}

func TestRosterChangeSummary(t *testing.T) {
	joined := domain.Roster{{MembershipID: "3", DisplayName: "Cy", GlobalDisplayName: "Cy", GlobalNameCode: 12, MembershipType: domain.MembershipSteam}}
	left := domain.Roster{{MembershipID: "1", DisplayName: "Ana", MembershipType: domain.MembershipPSN}}

	out := NewBuilder().RosterChange(2, 2, joined, left, fixedNow)

	require.Len(t, out, 1)
	n := out[0]
	assert.Equal(t, domain.NotificationRosterChange, n.Kind)
	assert.Equal(t, "클랜원 변동 알림", n.Title)
	assert.Equal(t, "2명 → 2명 (+0)", n.Description)
	require.Len(t, n.Fields, 2)
	assert.Equal(t, "가입 (1명)", n.Fields[0].Name)
	assert.Equal(t, "🔵 Cy#0012 (Steam)", n.Fields[0].Value)
	assert.Equal(t, "탈퇴 (1명)", n.Fields[1].Name)
	assert.Equal(t, "🔴 Ana (PSN)", n.Fields[1].Value)
}

func TestRosterChangeSignedDelta(t *testing.T) {
	out := NewBuilder().RosterChange(50, 47, nil, roster(3, "l"), fixedNow)
	require.Len(t, out, 1)
	assert.Equal(t, "50명 → 47명 (-3)", out[0].Description)
}

func TestRosterChangeContinuesAfterFiveFields(t *testing.T) {
	joined := roster(200, "j")

	out := NewBuilder().RosterChange(0, 200, joined, nil, fixedNow)

	require.Greater(t, len(out), 1)
	fields := 0
	for i, n := range out {
		assert.LessOrEqual(t, len(n.Fields), 5)
		assert.True(t, strings.HasSuffix(n.Title, fmt.Sprintf("(%d/%d)", i+1, len(out))), n.Title)
		for _, f := range n.Fields {
			assert.LessOrEqual(t, len([]rune(f.Value)), 1024)
		}
		fields += len(n.Fields)
	}
	assert.Equal(t, 5, len(out[0].Fields))
	assert.Empty(t, out[1].Description)

	lines := 0
	for _, n := range out {
		for _, f := range n.Fields {
			lines += strings.Count(f.Value, "\n") + 1
		}
	}
	assert.Equal(t, 200, lines)
}

func TestBlockedRejoin(t *testing.T) {
	joined := domain.Roster{{MembershipID: "7", GlobalDisplayName: "Troll", GlobalNameCode: 7}}
	matches := []domain.BlockRecord{{MembershipID: "7", BungieName: "OldName#0007", Description: "griefing"}}

	out := NewBuilder().BlockedRejoin(matches, joined, fixedNow)

	require.Len(t, out, 1)
	assert.Equal(t, domain.NotificationBlockedRejoin, out[0].Kind)
	require.Len(t, out[0].Fields, 1)
	assert.Equal(t, "⚠️ Troll#0007 (7) - griefing", out[0].Fields[0].Value)
}

func TestBlockedRejoinNoMatches(t *testing.T) {
	assert.Nil(t, NewBuilder().BlockedRejoin(nil, nil, fixedNow))
}
