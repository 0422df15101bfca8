package server

import (
	"testing"
	"time"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/infra/feishu"
)

func TestConvertFeishuMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("text", func(t *testing.T) {
		msg := &feishu.Message{MsgID: "om_1", ChatID: "oc_1", MsgType: "text", Content: "記錄 hello", Sender: &feishu.Sender{SenderID: "ou_1"}}
		events := convertFeishuMessage(msg, now)
		if len(events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(events))
		}
		ev := events[0]
		if ev.Kind != domain.MessageKindText || ev.Text != "記錄 hello" || ev.UserID != "ou_1" {
			t.Errorf("Unexpected event %+v", ev)
		}
		if ev.ReplyToken != "om_1" || ev.Platform != domain.PlatformFeishu {
			t.Errorf("Expected reply token to be the message id, got %+v", ev)
		}
	})

	t.Run("image", func(t *testing.T) {
		msg := &feishu.Message{MsgID: "om_2", MsgType: "image", ImageKeys: []string{"img_1"}, Sender: &feishu.Sender{SenderID: "ou_1"}}
		events := convertFeishuMessage(msg, now)
		if len(events) != 1 || events[0].Kind != domain.MessageKindImage {
			t.Fatalf("Expected 1 image event, got %+v", events)
		}
		if events[0].MessageID != feishu.ResourceRef("om_2", "img_1") {
			t.Errorf("Unexpected media reference %q", events[0].MessageID)
		}
	})

	t.Run("post with text and image", func(t *testing.T) {
		msg := &feishu.Message{MsgID: "om_3", MsgType: "post", Content: "@卡 note", ImageKeys: []string{"img_1"}, Sender: &feishu.Sender{SenderID: "ou_1"}}
		events := convertFeishuMessage(msg, now)
		if len(events) != 2 || events[0].Kind != domain.MessageKindText || events[1].Kind != domain.MessageKindImage {
			t.Errorf("Expected text then image, got %+v", events)
		}
	})

	t.Run("other", func(t *testing.T) {
		msg := &feishu.Message{MsgID: "om_4", MsgType: "sticker", Sender: &feishu.Sender{SenderID: "ou_1"}}
		events := convertFeishuMessage(msg, now)
		if len(events) != 1 || events[0].Kind != domain.MessageKindOther {
			t.Errorf("Expected one other event, got %+v", events)
		}
	})
}
