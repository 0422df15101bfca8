package server

import (
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
)

// convertLINEEvent converts a webhook event into an inbound event.
// Only message events with a known sender are converted; senders without a
// userId would otherwise share one trigger slot.
func convertLINEEvent(event webhook.EventInterface, now time.Time) (domain.InboundEvent, bool) {
	e, ok := event.(webhook.MessageEvent)
	if !ok {
		return domain.InboundEvent{}, false
	}

	ev := domain.InboundEvent{
		Platform:   domain.PlatformLINE,
		EventID:    e.WebhookEventId,
		ReplyToken: e.ReplyToken,
		ReceivedAt: now,
	}

	switch s := e.Source.(type) {
	case webhook.UserSource:
		ev.UserID = s.UserId
	case webhook.GroupSource:
		ev.UserID = s.UserId
		ev.ChatID = s.GroupId
	case webhook.RoomSource:
		ev.UserID = s.UserId
		ev.ChatID = s.RoomId
	}

	if ev.UserID == "" {
		return domain.InboundEvent{}, false
	}

	switch m := e.Message.(type) {
	case webhook.TextMessageContent:
		ev.Kind = domain.MessageKindText
		ev.MessageID = m.Id
		ev.Text = m.Text
	case webhook.ImageMessageContent:
		ev.Kind = domain.MessageKindImage
		ev.MessageID = m.Id
	default:
		ev.Kind = domain.MessageKindOther
	}
	return ev, true
}
