package bungie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

// SearchPlayer looks up a player by "Name#1234". It returns (nil, nil) when
// no account matches.
func (c *Client) SearchPlayer(ctx context.Context, bungieName string) (*domain.MemberRecord, error) {
	name, code, ok := util.SplitBungieName(bungieName)
	if !ok {
		return nil, errors.NewValidationError("Bungie name must look like Name#1234", "bungie_name", bungieName)
	}

	var cards []userInfoCard
	err := c.doRequest(ctx, http.MethodPost, "/Destiny2/SearchDestinyPlayerByBungieName/-1/", nil,
		searchByBungieNameRequest{DisplayName: name, DisplayNameCode: code}, &cards)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	card, found := primaryCard(cards, "")
	if !found {
		return nil, nil
	}
	rec := mapUserInfoCard(card)
	return &rec, nil
}

// ResolvePlatformCredential looks up a player by a Bungie.net or Destiny
// membership id. It returns (nil, nil) when the id is unknown.
func (c *Client) ResolvePlatformCredential(ctx context.Context, credential string) (*domain.MemberRecord, error) {
	if !util.IsNumeric(credential) {
		return nil, errors.NewValidationError("membership id must be numeric", "credential", credential)
	}

	var resp membershipsByID
	path := fmt.Sprintf("/User/GetMembershipsById/%s/-1/", url.PathEscape(credential))
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	card, found := primaryCard(resp.DestinyMemberships, resp.PrimaryMembershipID)
	if !found {
		return nil, nil
	}
	rec := mapUserInfoCard(card)
	rec.BungieNetName = resp.BungieNetUser.DisplayName
	return &rec, nil
}
