package slack

// Identity is the bot's own Slack identity.
type Identity struct {
	UserID string
	BotID  string
	Team   string
}

// Reply is an outbound channel message.
type Reply struct {
	Text      string
	Username  string // display name override
	IconEmoji string // e.g. ":clock3:"
	AsUser    bool
}
