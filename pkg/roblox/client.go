// Package roblox resolves players, groups and game stats through the public
// Roblox web APIs (usually via a proxy domain such as roproxy.com).
//
// Lookups are best effort: every failure is logged at debug level and
// reported as a nil result.
package roblox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/goccy/go-json"
)

// Endpoints holds the base URL of every API family used
type Endpoints struct {
	Users      string
	Thumbnails string
	Friends    string
	Games      string
	Groups     string
}

// ProxyEndpoints builds the endpoints for a proxy domain, e.g. "roproxy.com"
func ProxyEndpoints(domain string) Endpoints {
	base := func(sub string) string { return fmt.Sprintf("https://%s.%s", sub, domain) }
	return Endpoints{
		Users:      base("users"),
		Thumbnails: base("thumbnails"),
		Friends:    base("friends"),
		Games:      base("games"),
		Groups:     base("groups"),
	}
}

// Client is the profile API client
type Client struct {
	endpoints Endpoints
	http      *http.Client
}

// New creates a Client for the given endpoints
func New(endpoints Endpoints, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{endpoints: endpoints, http: hc}
}

// User is a Roblox account
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	IsBanned    bool      `json:"isBanned"`
}

// DisplayLabel is the name shown in embeds
func (u *User) DisplayLabel() string {
	if u.Name != "" {
		return u.Name
	}
	return u.DisplayName
}

// IDString returns the user id as the string used by the ledger
func (u *User) IDString() string {
	return strconv.FormatInt(u.ID, 10)
}

// UserDetails is a user plus social counts
type UserDetails struct {
	User
	FriendCount    int64 `json:"friendCount"`
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`
}

// GameStats is the live player count and total visits of a universe
type GameStats struct {
	Playing int64 `json:"playing"`
	Visits  int64 `json:"visits"`
}

// Group is a Roblox group
type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int64  `json:"memberCount"`
}

// Role is a rank inside a group
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Rank        int    `json:"rank"`
	MemberCount int64  `json:"memberCount"`
}

// UserByName looks a user up by exact username
func (c *Client) UserByName(ctx context.Context, username string) *User {
	var resp struct {
		Data []User `json:"data"`
	}
	body := map[string]interface{}{"usernames": []string{username}}
	if !c.call(ctx, "roblox.UserByName", http.MethodPost, c.endpoints.Users+"/v1/usernames/users", body, &resp) {
		return nil
	}
	if len(resp.Data) == 0 {
		return nil
	}
	return &resp.Data[0]
}

// UserByID looks a user up by id
func (c *Client) UserByID(ctx context.Context, id string) *User {
	var u User
	if !c.call(ctx, "roblox.UserByID", http.MethodGet, c.endpoints.Users+"/v1/users/"+url.PathEscape(id), nil, &u) {
		return nil
	}
	if u.ID == 0 {
		return nil
	}
	return &u
}

// Resolve treats numeric input as a user id and anything else as a username
func (c *Client) Resolve(ctx context.Context, input string) *User {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if isNumeric(input) {
		return c.UserByID(ctx, input)
	}
	return c.UserByName(ctx, input)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

type imageResponse struct {
	Data []struct {
		TargetID int64  `json:"targetId"`
		State    string `json:"state"`
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

func (r imageResponse) first() string {
	if len(r.Data) == 0 {
		return ""
	}
	return r.Data[0].ImageURL
}

// Thumbnail returns the avatar headshot URL, or "" when unavailable
func (c *Client) Thumbnail(ctx context.Context, userID string) string {
	q := url.Values{}
	q.Set("userIds", userID)
	q.Set("size", "150x150")
	q.Set("format", "Png")
	q.Set("isCircular", "false")

	var resp imageResponse
	if !c.call(ctx, "roblox.Thumbnail", http.MethodGet, c.endpoints.Thumbnails+"/v1/users/avatar-headshot?"+q.Encode(), nil, &resp) {
		return ""
	}
	return resp.first()
}

// GroupIcon returns the group icon URL, or "" when unavailable
func (c *Client) GroupIcon(ctx context.Context, groupID string) string {
	q := url.Values{}
	q.Set("groupIds", groupID)
	q.Set("size", "150x150")
	q.Set("format", "Png")
	q.Set("isCircular", "false")

	var resp imageResponse
	if !c.call(ctx, "roblox.GroupIcon", http.MethodGet, c.endpoints.Thumbnails+"/v1/groups/icons?"+q.Encode(), nil, &resp) {
		return ""
	}
	return resp.first()
}

// UserDetails fetches the profile and the three social counts concurrently.
// Any failed part fails the whole lookup.
func (c *Client) UserDetails(ctx context.Context, userID string) *UserDetails {
	id := url.PathEscape(userID)

	var (
		wg                                 sync.WaitGroup
		user                               User
		friends, followers, followings     struct{ Count int64 `json:"count"` }
		okUser, okFriends, okFollow, okIng bool
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		okUser = c.call(ctx, "roblox.UserDetails", http.MethodGet, c.endpoints.Users+"/v1/users/"+id, nil, &user)
	}()
	go func() {
		defer wg.Done()
		okFriends = c.call(ctx, "roblox.UserDetails", http.MethodGet, c.endpoints.Friends+"/v1/users/"+id+"/friends/count", nil, &friends)
	}()
	go func() {
		defer wg.Done()
		okFollow = c.call(ctx, "roblox.UserDetails", http.MethodGet, c.endpoints.Friends+"/v1/users/"+id+"/followers/count", nil, &followers)
	}()
	go func() {
		defer wg.Done()
		okIng = c.call(ctx, "roblox.UserDetails", http.MethodGet, c.endpoints.Friends+"/v1/users/"+id+"/followings/count", nil, &followings)
	}()
	wg.Wait()

	if !okUser || !okFriends || !okFollow || !okIng {
		return nil
	}
	return &UserDetails{
		User:           user,
		FriendCount:    friends.Count,
		FollowerCount:  followers.Count,
		FollowingCount: followings.Count,
	}
}

// GameStats returns live stats for a universe
func (c *Client) GameStats(ctx context.Context, universeID string) *GameStats {
	if universeID == "" {
		return nil
	}
	var resp struct {
		Data []GameStats `json:"data"`
	}
	if !c.call(ctx, "roblox.GameStats", http.MethodGet, c.endpoints.Games+"/v1/games?universeIds="+url.QueryEscape(universeID), nil, &resp) {
		return nil
	}
	if len(resp.Data) == 0 {
		return nil
	}
	return &resp.Data[0]
}

// GroupInfo returns a group's name and member count
func (c *Client) GroupInfo(ctx context.Context, groupID string) *Group {
	var g Group
	if !c.call(ctx, "roblox.GroupInfo", http.MethodGet, c.endpoints.Groups+"/v1/groups/"+url.PathEscape(groupID), nil, &g) {
		return nil
	}
	if g.ID == 0 {
		return nil
	}
	return &g
}

// GroupRoles lists the roles of a group ordered as the API returns them
func (c *Client) GroupRoles(ctx context.Context, groupID string) []Role {
	var resp struct {
		Roles []Role `json:"roles"`
	}
	if !c.call(ctx, "roblox.GroupRoles", http.MethodGet, c.endpoints.Groups+"/v1/groups/"+url.PathEscape(groupID)+"/roles", nil, &resp) {
		return nil
	}
	return resp.Roles
}

// call performs the request and decodes into out. It reports success and
// logs the failure otherwise.
func (c *Client) call(ctx context.Context, op, method, endpoint string, body, out interface{}) bool {
	if err := c.do(ctx, op, method, endpoint, body, out); err != nil {
		logger.Debug(err.Error(), "Roblox")
		return false
	}
	return true
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Internal(op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Internal(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Upstream(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Upstream(op, fmt.Errorf("%s returned %s", endpoint, resp.Status))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Upstream(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
