package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

// findClanMember resolves query against the roster, first by name and then
// through the Bungie name search. Players outside the clan are rejected.
func (s *Service) findClanMember(ctx context.Context, members domain.Roster, query string) (domain.MemberRecord, error) {
	query = strings.TrimSpace(query)
	if m, ok := members.Find(query); ok {
		return m, nil
	}
	if m, ok := members.FindByName(query); ok {
		return m, nil
	}

	if _, _, ok := util.SplitBungieName(query); !ok {
		return domain.MemberRecord{}, fmt.Errorf("member %q: %w", query, errors.ErrNotFound)
	}

	player, err := s.resolver.SearchPlayer(ctx, query)
	if err != nil {
		return domain.MemberRecord{}, err
	}
	if player == nil {
		return domain.MemberRecord{}, fmt.Errorf("player %q: %w", query, errors.ErrNotFound)
	}
	if m, ok := members.Find(player.MembershipID); ok {
		return m, nil
	}
	return domain.MemberRecord{}, ErrNotClanMember
}

// RegisterRest records a rest period for a clan member ending on endDate.
func (s *Service) RegisterRest(ctx context.Context, query string, endDate domain.Date, referenceURL, description string) (domain.RestRecord, error) {
	if endDate.Before(s.today()) {
		return domain.RestRecord{}, errors.NewValidationError("휴가 종료일이 이미 지났습니다", "end_date", endDate.String())
	}

	members, err := s.liveRoster(ctx)
	if err != nil {
		return domain.RestRecord{}, err
	}
	member, err := s.findClanMember(ctx, members, query)
	if err != nil {
		return domain.RestRecord{}, err
	}
	return s.rest.Register(member, endDate, referenceURL, description)
}

// DeregisterRest removes the rest record matching query, which may be a
// member name, a stored Bungie name or a membership id.
func (s *Service) DeregisterRest(ctx context.Context, query string) (domain.RestRecord, error) {
	query = strings.TrimSpace(query)

	var target domain.RestRecord
	found := false
	q := util.Normalize(query)
	for _, rec := range s.rest.List() {
		if rec.MembershipID == query || util.Normalize(rec.BungieName) == q || util.Normalize(rec.DisplayName) == q {
			target, found = rec, true
			break
		}
	}

	if !found {
		members, err := s.liveRoster(ctx)
		if err != nil {
			return domain.RestRecord{}, err
		}
		member, err := s.findClanMember(ctx, members, query)
		if err != nil {
			return domain.RestRecord{}, err
		}
		target = domain.RestRecord{MembershipID: member.MembershipID, BungieName: member.BungieName(), DisplayName: member.Name()}
	}

	existed, err := s.rest.Deregister(target.MembershipID)
	if err != nil {
		return domain.RestRecord{}, err
	}
	if !existed {
		return domain.RestRecord{}, fmt.Errorf("rest record for %q: %w", query, errors.ErrNotFound)
	}
	return target, nil
}

// RestList reconciles the rest records against the roster and lists them by
// end date.
func (s *Service) RestList(ctx context.Context) (*domain.ReportView, error) {
	members, err := s.liveRoster(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.rest.Reconcile(members, s.today())
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		line := fmt.Sprintf("%s (%s) ~ %s", rec.DisplayName, rec.BungieName, rec.EndDate)
		if rec.Description != "" {
			line += " | " + util.TruncateString(rec.Description, 50)
		}
		lines = append(lines, line)
	}

	return &domain.ReportView{
		Title:       "휴가 목록",
		Description: fmt.Sprintf("%d명 휴가 중", len(records)),
		Lines:       lines,
		Page:        0,
		TotalPages:  1,
	}, nil
}
