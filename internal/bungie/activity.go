package bungie

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/pkg/errors"
)

// OrbitActivityName is shown when a member is online without an activity.
const OrbitActivityName = "궤도"

// FetchMemberActivity returns what the member is doing right now. The call
// is bounded by timeout.
func (c *Client) FetchMemberActivity(ctx context.Context, membershipType domain.MembershipType, membershipID string, timeout time.Duration) (domain.ActivitySummary, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("components", "100,204")
	path := fmt.Sprintf("/Destiny2/%d/Profile/%s/", int(membershipType), url.PathEscape(membershipID))

	var profile profileResponse
	if err := c.doRequest(ctx, http.MethodGet, path, params, nil, &profile); err != nil {
		return domain.ActivitySummary{}, err
	}

	var (
		latest characterActivity
		found  bool
	)
	for _, act := range profile.CharacterActivities.Data {
		if !found || act.DateActivityStarted.After(latest.DateActivityStarted) {
			latest = act
			found = true
		}
	}

	summary := domain.ActivitySummary{
		MembershipID: membershipID,
		ActivityHash: latest.CurrentActivityHash,
		StartedAt:    latest.DateActivityStarted,
	}
	if !found || latest.CurrentActivityHash == 0 {
		summary.ActivityName = OrbitActivityName
		return summary, nil
	}

	name, err := c.DecodeActivity(ctx, latest.CurrentActivityHash)
	if err != nil {
		return summary, err
	}
	summary.ActivityName = name
	return summary, nil
}

// DecodeActivity resolves an activity hash to its display name.
func (c *Client) DecodeActivity(ctx context.Context, hash uint32) (string, error) {
	if name, ok := c.definitions.Load(hash); ok {
		return name.(string), nil
	}

	path := "/Destiny2/Manifest/DestinyActivityDefinition/" + strconv.FormatUint(uint64(hash), 10) + "/"
	var def activityDefinition
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &def); err != nil {
		if errors.IsNotFound(err) {
			return "", fmt.Errorf("activity %d: %w", hash, errors.ErrNotFound)
		}
		return "", err
	}

	name := def.DisplayProperties.Name
	if name == "" {
		name = def.OriginalDisplayProperties.Name
	}
	if name == "" {
		c.logger.Debug("Activity definition has no name", zap.Uint32("hash", hash))
		name = strconv.FormatUint(uint64(hash), 10)
	}
	c.definitions.Store(hash, name)
	return name, nil
}
