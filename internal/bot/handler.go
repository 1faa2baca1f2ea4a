// Package bot turns Slack channel messages that mention a clock time into
// replies showing that time in every reader's own timezone.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jparise/timebot/internal/slack"
	"github.com/jparise/timebot/internal/timeparse"
)

// DefaultUsername is the display name replies are posted under.
const DefaultUsername = "Your time"

// Skip reasons. Each guard in Handle returns exactly one of these, or one of
// timeparse.ErrNoMatch and timeparse.ErrInvalidTime.
var (
	ErrEmptyText       = errors.New("message has no text")
	ErrOwnMessage      = errors.New("message was posted by the bot")
	ErrIgnoredSubtype  = errors.New("message subtype is ignored")
	ErrChannelFiltered = errors.New("channel is not enabled")
	ErrLookupFailure   = errors.New("user offset lookup failed")
)

// ErrPostFailed means a reply was built but Slack did not accept it.
var ErrPostFailed = errors.New("failed to post reply")

// Subtypes that still carry a user-authored message.
var handledSubtypes = map[string]bool{
	"":                 true,
	"thread_broadcast": true,
	"file_share":       true,
	"me_message":       true,
}

// Message is an inbound channel message.
type Message struct {
	Text      string
	UserID    string
	ChannelID string
	BotID     string
	SubType   string
}

// Collaborator is the chat platform as seen by the handler.
type Collaborator interface {
	UserOffsetMinutes(ctx context.Context, userID string) (int, error)
	PostReply(ctx context.Context, channelID string, reply slack.Reply) error
}

// Options configures a Handler.
type Options struct {
	Identity slack.Identity // the bot's own identity
	Username string         // reply display name (default: DefaultUsername)
	Channels []string       // doublestar patterns over channel IDs; empty allows all
}

// Handler runs the per-message flow: guards, offset lookup, resolution and
// reply.
type Handler struct {
	chat     Collaborator
	resolver *timeparse.Resolver
	opts     Options
}

// NewHandler creates a Handler that talks to chat.
func NewHandler(chat Collaborator, resolver *timeparse.Resolver, opts Options) (*Handler, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat collaborator is required")
	}
	if opts.Identity.UserID == "" {
		return nil, fmt.Errorf("bot user ID is required")
	}
	for _, p := range opts.Channels {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid channel pattern %q", p)
		}
	}
	if opts.Username == "" {
		opts.Username = DefaultUsername
	}
	if resolver == nil {
		resolver = &timeparse.Resolver{}
	}

	return &Handler{
		chat:     chat,
		resolver: resolver,
		opts:     opts,
	}, nil
}

// Handle processes a single message. It returns nil once a reply has been
// posted. Messages that should get no reply return one of the skip errors;
// see Skipped.
func (h *Handler) Handle(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Text) == "" {
		return ErrEmptyText
	}
	if h.isOwn(msg) {
		return ErrOwnMessage
	}
	if !handledSubtypes[msg.SubType] {
		return fmt.Errorf("%w: %s", ErrIgnoredSubtype, msg.SubType)
	}
	if !h.channelEnabled(msg.ChannelID) {
		return fmt.Errorf("%w: %s", ErrChannelFiltered, msg.ChannelID)
	}

	// Detect before any network call so ordinary chatter costs nothing.
	if _, err := timeparse.FindClock(msg.Text); err != nil {
		return err
	}

	// The author's offset is only needed when no abbreviation is given.
	var offset int
	if _, ok := timeparse.FindAbbreviation(msg.Text); !ok {
		var err error
		offset, err = h.chat.UserOffsetMinutes(ctx, msg.UserID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLookupFailure, err)
		}
	}

	result, err := h.resolver.Resolve(msg.Text, offset)
	if err != nil {
		return err
	}

	reply := slack.Reply{
		Text:      FormatReply(result),
		Username:  h.opts.Username,
		IconEmoji: result.Emoji,
		AsUser:    false,
	}
	if err := h.chat.PostReply(ctx, msg.ChannelID, reply); err != nil {
		return fmt.Errorf("%w: %w", ErrPostFailed, err)
	}

	return nil
}

func (h *Handler) isOwn(msg Message) bool {
	id := h.opts.Identity
	return msg.UserID == id.UserID || (id.BotID != "" && msg.BotID == id.BotID)
}

func (h *Handler) channelEnabled(channelID string) bool {
	if len(h.opts.Channels) == 0 {
		return true
	}
	for _, p := range h.opts.Channels {
		// Patterns were validated in NewHandler.
		if ok, _ := doublestar.Match(p, channelID); ok {
			return true
		}
	}
	return false
}

// Skipped reports whether err is a silent skip rather than a failure.
func Skipped(err error) bool {
	return SkipReason(err) != ""
}

// SkipReason returns a short label for a skip error, or "" if err is not one.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyText):
		return "empty_text"
	case errors.Is(err, ErrOwnMessage):
		return "own_message"
	case errors.Is(err, ErrIgnoredSubtype):
		return "subtype"
	case errors.Is(err, ErrChannelFiltered):
		return "channel"
	case errors.Is(err, timeparse.ErrNoMatch):
		return "no_match"
	case errors.Is(err, timeparse.ErrInvalidTime):
		return "invalid_time"
	case errors.Is(err, ErrLookupFailure):
		return "lookup_failure"
	default:
		return ""
	}
}
