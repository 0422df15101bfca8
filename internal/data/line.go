package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/linecardbot/line-card-bot/internal/biz/repo"
)

// maxMediaBytes caps a single downloaded message content
const maxMediaBytes = 20 << 20

// lineMessagingAPI is the subset of the LINE Messaging API the bot uses
type lineMessagingAPI interface {
	GetProfile(userID string) (*messaging_api.UserProfileResponse, error)
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// lineBlobAPI downloads message content
type lineBlobAPI interface {
	GetMessageContent(messageID string) (*http.Response, error)
}

// lineRepo implements the messenger repository on top of the LINE Messaging API
type lineRepo struct {
	api    lineMessagingAPI
	blob   lineBlobAPI
	logger *slog.Logger
}

// lineCallTimeout bounds a single LINE API call
const lineCallTimeout = 30 * time.Second

// NewLINERepo creates a LINE messenger repository for a channel access token
func NewLINERepo(channelToken string, logger *slog.Logger) (repo.MessengerRepo, error) {
	return newLINERepoWithEndpoint(channelToken, "", "", lineCallTimeout, logger)
}

// newLINERepoWithEndpoint builds the SDK clients on an http.Client bounded by timeout.
// Empty endpoints keep the SDK defaults.
func newLINERepoWithEndpoint(channelToken, endpoint, blobEndpoint string, timeout time.Duration, logger *slog.Logger) (*lineRepo, error) {
	httpClient := &http.Client{Timeout: timeout}

	apiOpts := []messaging_api.MessagingApiAPIOption{messaging_api.WithHTTPClient(httpClient)}
	if endpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(endpoint))
	}
	api, err := messaging_api.NewMessagingApiAPI(channelToken, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("create messaging api client: %w", err)
	}

	blobOpts := []messaging_api.MessagingApiBlobAPIOption{messaging_api.WithBlobHTTPClient(httpClient)}
	if blobEndpoint != "" {
		blobOpts = append(blobOpts, messaging_api.WithBlobEndpoint(blobEndpoint))
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(channelToken, blobOpts...)
	if err != nil {
		return nil, fmt.Errorf("create blob api client: %w", err)
	}
	return newLINERepo(api, blob, logger), nil
}

func newLINERepo(api lineMessagingAPI, blob lineBlobAPI, logger *slog.Logger) *lineRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &lineRepo{api: api, blob: blob, logger: logger}
}

// DisplayName looks up the user's profile
func (r *lineRepo) DisplayName(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	profile, err := r.api.GetProfile(userID)
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}
	if profile == nil || profile.DisplayName == "" {
		return "", errors.New("profile has no display name")
	}
	return profile.DisplayName, nil
}

// FetchMedia downloads the binary content of a message
func (r *lineRepo) FetchMedia(ctx context.Context, messageID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := r.blob.GetMessageContent(messageID)
	if err != nil {
		return nil, fmt.Errorf("get message content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get message content: unexpected status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read message content: %w", err)
	}
	if len(content) > maxMediaBytes {
		return nil, fmt.Errorf("message content exceeds %d bytes", maxMediaBytes)
	}
	return content, nil
}

// Reply sends a single text message using the reply token
func (r *lineRepo) Reply(ctx context.Context, replyToken, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	r.logger.Debug("[REPLY] Sent", "text", text)
	return nil
}
