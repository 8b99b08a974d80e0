package bungie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/constants"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

// FetchGroupMembers returns every member of the clan, following pagination.
func (c *Client) FetchGroupMembers(ctx context.Context, groupID string) (domain.Roster, error) {
	path := fmt.Sprintf("/GroupV2/%s/Members/", url.PathEscape(groupID))

	members := domain.Roster{}
	for page := 1; page <= constants.APIConfig.MaxMemberPages; page++ {
		params := url.Values{}
		params.Set("currentpage", strconv.Itoa(page))

		var resp groupMembersPage
		if err := c.doRequest(ctx, http.MethodGet, path, params, nil, &resp); err != nil {
			return nil, err
		}

		for _, raw := range resp.Results {
			if rec, ok := mapGroupMember(raw); ok {
				members = append(members, rec)
			}
		}

		if !resp.HasMore {
			break
		}
		if page == constants.APIConfig.MaxMemberPages {
			c.logger.Warn("Group member pagination limit reached",
				zap.String("group_id", groupID),
				zap.Int("pages", page),
			)
		}
	}

	return members.Dedupe(), nil
}

func mapGroupMember(raw groupMember) (domain.MemberRecord, bool) {
	info := raw.DestinyUserInfo
	if info.MembershipID == "" {
		return domain.MemberRecord{}, false
	}

	displayName := info.DisplayName
	if displayName == "" {
		displayName = info.LastSeenDisplayName
	}

	rec := domain.MemberRecord{
		MembershipID:      info.MembershipID,
		MembershipType:    domain.MembershipType(info.MembershipType),
		DisplayName:       displayName,
		GlobalDisplayName: info.BungieGlobalDisplayName,
		GlobalNameCode:    int(info.BungieGlobalDisplayNameCode),
		IsOnline:          raw.IsOnline,
		LastOnlineChange:  int64(raw.LastOnlineStatusChange),
	}
	if raw.BungieNetUserInfo != nil {
		rec.BungieNetName = raw.BungieNetUserInfo.DisplayName
	}
	return rec, true
}

func mapUserInfoCard(card userInfoCard) domain.MemberRecord {
	displayName := card.DisplayName
	if displayName == "" {
		displayName = card.LastSeenDisplayName
	}
	return domain.MemberRecord{
		MembershipID:      card.MembershipID,
		MembershipType:    domain.MembershipType(card.MembershipType),
		DisplayName:       displayName,
		GlobalDisplayName: card.BungieGlobalDisplayName,
		GlobalNameCode:    int(card.BungieGlobalDisplayNameCode),
	}
}

// primaryCard picks the card that represents the account: the cross save
// primary when one is set, otherwise the first card.
func primaryCard(cards []userInfoCard, primaryID string) (userInfoCard, bool) {
	if len(cards) == 0 {
		return userInfoCard{}, false
	}
	if primaryID != "" {
		for _, card := range cards {
			if card.MembershipID == primaryID {
				return card, true
			}
		}
	}
	for _, card := range cards {
		if card.CrossSaveOverride != 0 && card.CrossSaveOverride == card.MembershipType {
			return card, true
		}
	}
	return cards[0], true
}
