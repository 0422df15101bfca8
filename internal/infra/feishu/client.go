package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkcontact "github.com/larksuite/oapi-sdk-go/v3/service/contact/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
)

// Message represents a received Feishu message
type Message struct {
	ChatID     string
	MsgID      string
	MsgType    string // text, image, post
	ChatType   string // p2p (private), group
	Content    string // Text content (extracted from text and post messages)
	ImageKeys  []string
	Sender     *Sender
	CreateTime int64 // Milliseconds Unix timestamp from Feishu
}

// Sender represents the message sender
type Sender struct {
	SenderID   string // open_id
	SenderType string // user, app
	TenantKey  string
}

// MessageHandler is the callback for received messages
type MessageHandler func(msg *Message)

// Client is the Feishu API client
type Client struct {
	appID     string
	appSecret string
	larkCli   *lark.Client
	wsCli     *larkws.Client
	onMessage MessageHandler
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new Feishu client
func NewClient(appID, appSecret string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		appID:     appID,
		appSecret: appSecret,
		larkCli:   lark.NewClient(appID, appSecret),
		logger:    logger.With("component", "feishu"),
	}
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.onMessage = handler
}

// Start connects to Feishu via WebSocket and listens for messages until ctx is done
func (c *Client) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	// Must return quickly so the SDK can ACK, otherwise Feishu redelivers
	eventHandler := dispatcher.NewEventDispatcher("", "").
		OnP2MessageReceiveV1(func(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
			go c.handleMessage(event)
			return nil
		})

	c.wsCli = larkws.NewClient(c.appID, c.appSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	c.logger.Info("[FEISHU] Starting WebSocket connection")
	return c.wsCli.Start(c.ctx)
}

// Stop disconnects from Feishu
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Client) handleMessage(event *larkim.P2MessageReceiveV1) {
	if event == nil || event.Event == nil {
		return
	}
	msg := ParseMessageEvent(event.Event)
	if msg == nil {
		return
	}
	c.logger.Debug("[FEISHU] Received message", "type", msg.MsgType, "chat_type", msg.ChatType, "chat_id", msg.ChatID)

	if c.onMessage != nil {
		c.onMessage(msg)
	}
}

// ParseMessageEvent converts a receive event into a Message.
// Messages sent by apps (including this bot) yield nil.
func ParseMessageEvent(ev *larkim.P2MessageReceiveV1Data) *Message {
	rawMsg := ev.Message
	if rawMsg == nil || rawMsg.MessageId == nil || rawMsg.MessageType == nil {
		return nil
	}
	if ev.Sender != nil && ev.Sender.SenderType != nil && *ev.Sender.SenderType == "app" {
		return nil
	}

	msg := &Message{
		MsgID:   *rawMsg.MessageId,
		MsgType: *rawMsg.MessageType,
	}
	if rawMsg.ChatId != nil {
		msg.ChatID = *rawMsg.ChatId
	}
	if rawMsg.ChatType != nil {
		msg.ChatType = *rawMsg.ChatType
	}
	if rawMsg.CreateTime != nil {
		if ts, err := strconv.ParseInt(*rawMsg.CreateTime, 10, 64); err == nil {
			msg.CreateTime = ts
		}
	}

	if ev.Sender != nil {
		msg.Sender = &Sender{}
		if ev.Sender.SenderId != nil && ev.Sender.SenderId.OpenId != nil {
			msg.Sender.SenderID = *ev.Sender.SenderId.OpenId
		}
		if ev.Sender.SenderType != nil {
			msg.Sender.SenderType = *ev.Sender.SenderType
		}
		if ev.Sender.TenantKey != nil {
			msg.Sender.TenantKey = *ev.Sender.TenantKey
		}
	}

	// Mention placeholders (@_user_1) map to real names
	mentionMap := make(map[string]string)
	for _, mention := range rawMsg.Mentions {
		if mention != nil && mention.Key != nil && mention.Name != nil {
			mentionMap[*mention.Key] = *mention.Name
		}
	}

	content := ""
	if rawMsg.Content != nil {
		content = *rawMsg.Content
	}
	switch msg.MsgType {
	case "text":
		msg.Content = parseTextContent(content, mentionMap)
	case "image":
		msg.ImageKeys = parseImageContent(content)
	case "post":
		msg.Content, msg.ImageKeys = parsePostContent(content, mentionMap)
	}
	return msg
}

// parseTextContent extracts text from a text message
func parseTextContent(content string, mentionMap map[string]string) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}
	return replaceMentions(parsed.Text, mentionMap)
}

// parseImageContent extracts the image key from an image message
func parseImageContent(content string) []string {
	var parsed struct {
		ImageKey string `json:"image_key"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil || parsed.ImageKey == "" {
		return nil
	}
	return []string{parsed.ImageKey}
}

// parsePostContent extracts text and images from a rich text message
func parsePostContent(content string, mentionMap map[string]string) (string, []string) {
	var parsed struct {
		Title   string `json:"title"`
		Content [][]struct {
			Tag      string `json:"tag"`
			Text     string `json:"text,omitempty"`
			ImageKey string `json:"image_key,omitempty"`
			UserID   string `json:"user_id,omitempty"`
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return "", nil
	}

	var textParts []string
	var imageKeys []string
	if parsed.Title != "" {
		textParts = append(textParts, parsed.Title)
	}
	for _, line := range parsed.Content {
		var lineParts []string
		for _, elem := range line {
			switch elem.Tag {
			case "text":
				if elem.Text != "" {
					lineParts = append(lineParts, elem.Text)
				}
			case "at":
				if name, ok := mentionMap[elem.UserID]; ok {
					lineParts = append(lineParts, "@"+name)
				} else if elem.UserID != "" {
					lineParts = append(lineParts, "@"+elem.UserID)
				}
			case "img":
				if elem.ImageKey != "" {
					imageKeys = append(imageKeys, elem.ImageKey)
				}
			}
		}
		if len(lineParts) > 0 {
			textParts = append(textParts, strings.Join(lineParts, ""))
		}
	}
	return replaceMentions(strings.Join(textParts, "\n"), mentionMap), imageKeys
}

// replaceMentions replaces mention placeholders with @RealName
func replaceMentions(text string, mentionMap map[string]string) string {
	for key, name := range mentionMap {
		text = strings.ReplaceAll(text, key, "@"+name)
	}
	return text
}

// DownloadImage downloads an image attached to a message
func (c *Client) DownloadImage(ctx context.Context, messageID, imageKey string) ([]byte, error) {
	req := larkim.NewGetMessageResourceReqBuilder().
		MessageId(messageID).
		FileKey(imageKey).
		Type("image").
		Build()

	resp, err := c.larkCli.Im.MessageResource.Get(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("get image error: %s", resp.Msg)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.File); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	c.logger.Debug("[FEISHU] Downloaded image", "message_id", messageID, "bytes", buf.Len())
	return buf.Bytes(), nil
}

// ReplyText replies to a message with plain text
func (c *Client) ReplyText(ctx context.Context, messageID, text string) error {
	contentJSON, _ := json.Marshal(map[string]string{"text": text})

	req := larkim.NewReplyMessageReqBuilder().
		MessageId(messageID).
		Body(larkim.NewReplyMessageReqBodyBuilder().
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Reply(ctx, req)
	if err != nil {
		return fmt.Errorf("reply message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("reply message error: %s", resp.Msg)
	}
	return nil
}

// GetUserName resolves a user's name from their open_id
func (c *Client) GetUserName(ctx context.Context, openID string) (string, error) {
	req := larkcontact.NewGetUserReqBuilder().
		UserId(openID).
		UserIdType("open_id").
		Build()

	resp, err := c.larkCli.Contact.User.Get(ctx, req)
	if err != nil {
		return "", fmt.Errorf("get user failed: %w", err)
	}
	if !resp.Success() {
		return "", fmt.Errorf("get user error: %s", resp.Msg)
	}
	if resp.Data == nil || resp.Data.User == nil || resp.Data.User.Name == nil {
		return "", fmt.Errorf("user %s has no name", openID)
	}
	return *resp.Data.User.Name, nil
}

// ResourceRef joins a message id and an image key into one media reference
func ResourceRef(messageID, imageKey string) string {
	return messageID + ":" + imageKey
}

// SplitResourceRef reverses ResourceRef
func SplitResourceRef(ref string) (messageID, imageKey string, ok bool) {
	messageID, imageKey, ok = strings.Cut(ref, ":")
	if !ok || messageID == "" || imageKey == "" {
		return "", "", false
	}
	return messageID, imageKey, true
}
