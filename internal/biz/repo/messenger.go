package repo

import "context"

// MessengerRepo is the messaging platform interface
// (LINE Messaging API or Feishu Open API)
type MessengerRepo interface {
	// DisplayName looks up the user's display name
	DisplayName(ctx context.Context, userID string) (string, error)

	// FetchMedia downloads the content of a media message
	FetchMedia(ctx context.Context, messageID string) ([]byte, error)

	// Reply sends a text reply using the platform reply token
	Reply(ctx context.Context, replyToken, text string) error
}
