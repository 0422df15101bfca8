package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/infra/feishu"
)

// FeishuServer feeds Feishu messages into the capture flow
type FeishuServer struct {
	client  *feishu.Client
	handler EventHandler
	seen    *seenCache
	logger  *slog.Logger
	now     func() time.Time
}

// NewFeishuServer creates a new Feishu server
func NewFeishuServer(client *feishu.Client, handler EventHandler, logger *slog.Logger) *FeishuServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeishuServer{
		client:  client,
		handler: handler,
		seen:    newSeenCache(seenTTL),
		logger:  logger,
		now:     time.Now,
	}
}

// Start registers the message handler and blocks on the long connection
func (s *FeishuServer) Start(ctx context.Context) error {
	s.client.OnMessage(s.handleMessage)
	return s.client.Start(ctx)
}

// Stop stops the server
func (s *FeishuServer) Stop() {
	s.client.Stop()
}

func (s *FeishuServer) handleMessage(msg *feishu.Message) {
	// Feishu redelivers when the ACK is late
	if s.seen.markSeen(msg.MsgID, s.now()) {
		s.logger.Info("[WEBHOOK] Duplicate message ignored", "message_id", msg.MsgID)
		return
	}

	ctx := context.Background()
	for _, ev := range convertFeishuMessage(msg, s.now()) {
		if _, err := s.handler.Handle(ctx, ev); err != nil {
			s.logger.Error("[WEBHOOK] Failed to handle message", "message_id", msg.MsgID, "error", err)
			s.seen.forget(msg.MsgID)
		}
	}
}

// convertFeishuMessage converts a Feishu message into inbound events.
// Each image of a message is its own event, following any text.
func convertFeishuMessage(msg *feishu.Message, now time.Time) []domain.InboundEvent {
	base := domain.InboundEvent{
		Platform:   domain.PlatformFeishu,
		EventID:    msg.MsgID,
		ChatID:     msg.ChatID,
		ReplyToken: msg.MsgID,
		MessageID:  msg.MsgID,
		ReceivedAt: now,
	}
	if msg.Sender != nil {
		base.UserID = msg.Sender.SenderID
	}

	var events []domain.InboundEvent
	switch msg.MsgType {
	case "text", "post":
		if msg.Content != "" {
			ev := base
			ev.Kind = domain.MessageKindText
			ev.Text = msg.Content
			events = append(events, ev)
		}
	}
	for _, key := range msg.ImageKeys {
		ev := base
		ev.Kind = domain.MessageKindImage
		ev.MessageID = feishu.ResourceRef(msg.MsgID, key)
		events = append(events, ev)
	}
	if len(events) == 0 {
		ev := base
		ev.Kind = domain.MessageKindOther
		events = append(events, ev)
	}
	return events
}
