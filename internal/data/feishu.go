package data

import (
	"context"
	"fmt"

	"github.com/linecardbot/line-card-bot/internal/biz/repo"
	"github.com/linecardbot/line-card-bot/internal/infra/feishu"
)

// feishuAPI is the subset of the Feishu client the messenger uses
type feishuAPI interface {
	GetUserName(ctx context.Context, openID string) (string, error)
	DownloadImage(ctx context.Context, messageID, imageKey string) ([]byte, error)
	ReplyText(ctx context.Context, messageID, text string) error
}

// feishuRepo implements the messenger repository on Feishu.
// Reply tokens are message ids and media ids are feishu.ResourceRef values.
type feishuRepo struct {
	client feishuAPI
}

// NewFeishuRepo creates a new Feishu repository
func NewFeishuRepo(client *feishu.Client) repo.MessengerRepo {
	return &feishuRepo{client: client}
}

// DisplayName resolves the sender's name from the contact directory
func (r *feishuRepo) DisplayName(ctx context.Context, userID string) (string, error) {
	return r.client.GetUserName(ctx, userID)
}

// FetchMedia downloads the image behind a resource reference
func (r *feishuRepo) FetchMedia(ctx context.Context, messageID string) ([]byte, error) {
	msgID, imageKey, ok := feishu.SplitResourceRef(messageID)
	if !ok {
		return nil, fmt.Errorf("invalid feishu resource reference %q", messageID)
	}
	return r.client.DownloadImage(ctx, msgID, imageKey)
}

// Reply replies in thread to the triggering message
func (r *feishuRepo) Reply(ctx context.Context, replyToken, text string) error {
	return r.client.ReplyText(ctx, replyToken, text)
}
