// Package slack provides the Slack Web API collaborator for timebot.
package slack

import (
	"context"
	"fmt"
	"strings"

	slackgo "github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// DefaultAPIURL is the Slack Web API base URL.
const DefaultAPIURL = "https://slack.com/api/"

// ClientOptions configures the Slack API client.
type ClientOptions struct {
	BotToken  string
	AppToken  string  // xapp-*, enables Socket Mode
	APIURL    string  // defaults to DefaultAPIURL
	PostRate  float64 // replies per second; <= 0 disables throttling
	PostBurst int
	Debug     bool
}

// Client wraps the slack-go Web API client.
type Client struct {
	api      *slackgo.Client
	appToken string
	limiter  *rate.Limiter
}

// NewClient creates a new Slack API client with the given options.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BotToken == "" {
		return nil, fmt.Errorf("failed to create Slack client: bot token is required")
	}

	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}

	slackOpts := []slackgo.Option{
		slackgo.OptionAPIURL(apiURL),
		slackgo.OptionDebug(opts.Debug),
	}
	if opts.AppToken != "" {
		if !strings.HasPrefix(opts.AppToken, "xapp-") {
			return nil, fmt.Errorf("failed to create Slack client: invalid app token format, expected xapp-*")
		}
		slackOpts = append(slackOpts, slackgo.OptionAppLevelToken(opts.AppToken))
	}

	limit := rate.Inf
	if opts.PostRate > 0 {
		limit = rate.Limit(opts.PostRate)
	}
	burst := max(opts.PostBurst, 1)

	return &Client{
		api:      slackgo.New(opts.BotToken, slackOpts...),
		appToken: opts.AppToken,
		limiter:  rate.NewLimiter(limit, burst),
	}, nil
}

// API returns the underlying slack-go client for event listeners.
func (c *Client) API() *slackgo.Client {
	return c.api
}

// SocketMode reports whether an app-level token was configured.
func (c *Client) SocketMode() bool {
	return c.appToken != ""
}

// AuthTest returns the identity the bot token belongs to.
func (c *Client) AuthTest(ctx context.Context) (Identity, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to authenticate with Slack: %w", err)
	}

	return Identity{
		UserID: resp.UserID,
		BotID:  resp.BotID,
		Team:   resp.Team,
	}, nil
}

// UserOffsetMinutes returns a user's current UTC offset in minutes.
func (c *Client) UserOffsetMinutes(ctx context.Context, userID string) (int, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user info for %s: %w", userID, err)
	}

	return user.TZOffset / 60, nil
}

// PostReply posts a reply to a channel. Calls are throttled to the
// configured post rate.
func (c *Client) PostReply(ctx context.Context, channelID string, reply Reply) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to post to %s: %w", channelID, err)
	}

	msgOpts := []slackgo.MsgOption{
		slackgo.MsgOptionText(reply.Text, false),
		slackgo.MsgOptionAsUser(reply.AsUser),
	}
	if reply.Username != "" {
		msgOpts = append(msgOpts, slackgo.MsgOptionUsername(reply.Username))
	}
	if reply.IconEmoji != "" {
		msgOpts = append(msgOpts, slackgo.MsgOptionIconEmoji(reply.IconEmoji))
	}

	_, _, err := c.api.PostMessageContext(ctx, channelID, msgOpts...)
	if err != nil {
		return fmt.Errorf("failed to post to %s: %w", channelID, err)
	}

	return nil
}
