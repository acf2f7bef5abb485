// Package directory reads organization and user identities from the account
// service. This core never writes to it.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"carbonledger/internal/ports"
)

type Client struct {
	client *resty.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5 * time.Second),
	}
}

func (c *Client) GetOrganization(ctx context.Context, id string) (ports.OrgInfo, error) {
	var org ports.OrgInfo
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&org).
		Get("/v1/organizations/" + id)
	if err != nil {
		return ports.OrgInfo{}, err
	}
	if resp.IsError() {
		return ports.OrgInfo{}, fmt.Errorf("directory: %s", resp.Status())
	}
	return org, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (ports.UserInfo, error) {
	var user ports.UserInfo
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&user).
		Get("/v1/users/" + id)
	if err != nil {
		return ports.UserInfo{}, err
	}
	if resp.IsError() {
		return ports.UserInfo{}, fmt.Errorf("directory: %s", resp.Status())
	}
	return user, nil
}

// Static serves fixed identities, for dev setups without an account service.
type Static struct {
	Orgs  map[string]ports.OrgInfo
	Users map[string]ports.UserInfo
}

func (s Static) GetOrganization(_ context.Context, id string) (ports.OrgInfo, error) {
	if org, ok := s.Orgs[id]; ok {
		return org, nil
	}
	return ports.OrgInfo{ID: id}, nil
}

func (s Static) GetUser(_ context.Context, id string) (ports.UserInfo, error) {
	if user, ok := s.Users[id]; ok {
		return user, nil
	}
	return ports.UserInfo{ID: id}, nil
}
