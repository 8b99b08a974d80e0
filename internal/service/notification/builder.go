package notification

import (
	"fmt"
	"time"

	"github.com/kapu/destiny-clan-bot-go/internal/constants"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

// Builder renders roster changes as notifications that respect the chat
// field limits.
type Builder struct {
	segmentCapacity int
	maxFields       int
}

func NewBuilder() *Builder {
	return &Builder{
		segmentCapacity: constants.StringLimits.FieldValue,
		maxFields:       constants.PaginationConfig.MaxFieldsPerNotification,
	}
}

type fieldGroup struct {
	name  string
	lines []string
}

// RosterChange builds the join/leave notification. It returns nil when
// nothing changed.
func (b *Builder) RosterChange(oldCount, newCount int, joined, left domain.Roster, now time.Time) []domain.Notification {
	if len(joined) == 0 && len(left) == 0 {
		return nil
	}

	groups := []fieldGroup{}
	if len(joined) > 0 {
		groups = append(groups, fieldGroup{
			name:  fmt.Sprintf("가입 (%d명)", len(joined)),
			lines: memberLines("🔵", joined),
		})
	}
	if len(left) > 0 {
		groups = append(groups, fieldGroup{
			name:  fmt.Sprintf("탈퇴 (%d명)", len(left)),
			lines: memberLines("🔴", left),
		})
	}

	return b.paginate(domain.Notification{
		Kind:        domain.NotificationRosterChange,
		Title:       "클랜원 변동 알림",
		Description: fmt.Sprintf("%d명 → %d명 (%+d)", oldCount, newCount, newCount-oldCount),
		Footer:      util.FormatKST(now, "2006-01-02 15:04 KST"),
		Timestamp:   now,
	}, groups)
}

// BlockedRejoin builds the warning sent when blocked players join again.
func (b *Builder) BlockedRejoin(matches []domain.BlockRecord, joined domain.Roster, now time.Time) []domain.Notification {
	if len(matches) == 0 {
		return nil
	}

	lines := make([]string, 0, len(matches))
	for _, rec := range matches {
		name := rec.BungieName
		if m, ok := joined.Find(rec.MembershipID); ok {
			name = m.BungieName()
		}
		line := fmt.Sprintf("⚠️ %s (%s)", name, rec.MembershipID)
		if rec.Description != "" {
			line += " - " + rec.Description
		}
		if rec.ReferenceURL != "" {
			line += " " + rec.ReferenceURL
		}
		lines = append(lines, line)
	}

	return b.paginate(domain.Notification{
		Kind:        domain.NotificationBlockedRejoin,
		Title:       "차단 유저 재가입 경고",
		Description: fmt.Sprintf("차단 목록에 있는 유저 %d명이 가입했습니다.", len(matches)),
		Footer:      util.FormatKST(now, "2006-01-02 15:04 KST"),
		Timestamp:   now,
	}, []fieldGroup{{name: "차단 유저", lines: lines}})
}

// paginate packs each group into fields and splits the fields across as many
// notifications as needed. Continuations carry an "(n/m)" title suffix.
func (b *Builder) paginate(base domain.Notification, groups []fieldGroup) []domain.Notification {
	fields := []domain.NotificationField{}
	for _, g := range groups {
		segments := PackSegments(g.lines, b.segmentCapacity)
		for i, seg := range segments {
			name := g.name
			if i > 0 {
				name = g.name + " (계속)"
			}
			fields = append(fields, domain.NotificationField{
				Name:  util.TruncateString(name, constants.StringLimits.FieldName),
				Value: seg,
			})
		}
	}

	total := util.Max(1, util.CeilDiv(len(fields), b.maxFields))
	out := make([]domain.Notification, 0, total)
	for page := 0; page < total; page++ {
		start := page * b.maxFields
		end := util.Min(start+b.maxFields, len(fields))

		n := base
		n.Fields = append([]domain.NotificationField(nil), fields[start:end]...)
		if total > 1 {
			n.Title = fmt.Sprintf("%s (%d/%d)", base.Title, page+1, total)
		}
		if page > 0 {
			n.Description = ""
		}
		n.Title = util.TruncateString(n.Title, constants.StringLimits.NotificationTitle)
		out = append(out, n)
	}
	return out
}

func memberLines(marker string, members domain.Roster) []string {
	lines := make([]string, 0, len(members))
	for _, m := range members {
		lines = append(lines, fmt.Sprintf("%s %s (%s)", marker, m.BungieName(), m.MembershipType))
	}
	return lines
}
