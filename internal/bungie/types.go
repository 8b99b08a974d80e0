package bungie

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// envelope is the wrapper around every Bungie.net platform response.
type envelope struct {
	Response        json.RawMessage `json:"Response"`
	ErrorCode       int             `json:"ErrorCode"`
	ThrottleSeconds int             `json:"ThrottleSeconds"`
	ErrorStatus     string          `json:"ErrorStatus"`
	Message         string          `json:"Message"`
}

// Platform error codes the client reacts to.
const (
	codeSuccess                = 1
	codeSystemDisabled         = 5
	codeWebAuthRequired        = 99
	codeThrottleLimitExceeded  = 31
	codeThrottleMinutes        = 35
	codeThrottleMomentarily    = 36
	codeThrottleSeconds        = 37
	codePerAppThrottleExceeded = 51
	codeUserCannotResolve      = 217
	codeGroupNotFound          = 622
	codeDestinyAccountNotFound = 1601
	codePrivacyRestriction     = 1665
	codeAPIKeyInvalid          = 2101
	codeAPIKeyMissing          = 2102
)

// flexInt64 decodes numbers that the API sends either as JSON numbers or as
// quoted strings.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt64(n)
	return nil
}

type userInfoCard struct {
	MembershipID                string    `json:"membershipId"`
	MembershipType              int       `json:"membershipType"`
	DisplayName                 string    `json:"displayName"`
	LastSeenDisplayName         string    `json:"LastSeenDisplayName"`
	BungieGlobalDisplayName     string    `json:"bungieGlobalDisplayName"`
	BungieGlobalDisplayNameCode flexInt64 `json:"bungieGlobalDisplayNameCode"`
	CrossSaveOverride           int       `json:"crossSaveOverride"`
}

type bungieNetUserInfo struct {
	MembershipID string `json:"membershipId"`
	DisplayName  string `json:"displayName"`
}

type groupMember struct {
	MemberType             int                `json:"memberType"`
	IsOnline               bool               `json:"isOnline"`
	LastOnlineStatusChange flexInt64          `json:"lastOnlineStatusChange"`
	GroupID                string             `json:"groupId"`
	DestinyUserInfo        userInfoCard       `json:"destinyUserInfo"`
	BungieNetUserInfo      *bungieNetUserInfo `json:"bungieNetUserInfo,omitempty"`
	JoinDate               string             `json:"joinDate"`
}

type groupMembersPage struct {
	Results      []groupMember `json:"results"`
	TotalResults int           `json:"totalResults"`
	HasMore      bool          `json:"hasMore"`
}

type searchByBungieNameRequest struct {
	DisplayName     string `json:"displayName"`
	DisplayNameCode int    `json:"displayNameCode"`
}

type membershipsByID struct {
	DestinyMemberships  []userInfoCard    `json:"destinyMemberships"`
	PrimaryMembershipID string            `json:"primaryMembershipId"`
	BungieNetUser       bungieNetUserInfo `json:"bungieNetUser"`
}

type characterActivity struct {
	DateActivityStarted time.Time `json:"dateActivityStarted"`
	CurrentActivityHash uint32    `json:"currentActivityHash"`
}

type profileResponse struct {
	CharacterActivities struct {
		Data map[string]characterActivity `json:"data"`
	} `json:"characterActivities"`
}

type activityDefinition struct {
	DisplayProperties struct {
		Name string `json:"name"`
	} `json:"displayProperties"`
	OriginalDisplayProperties struct {
		Name string `json:"name"`
	} `json:"originalDisplayProperties"`
}
