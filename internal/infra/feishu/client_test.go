package feishu

import (
	"reflect"
	"testing"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

func strPtr(s string) *string { return &s }

func newEvent(senderType, msgType, content string) *larkim.P2MessageReceiveV1Data {
	return &larkim.P2MessageReceiveV1Data{
		Sender: &larkim.EventSender{
			SenderId:   &larkim.UserId{OpenId: strPtr("ou_alice")},
			SenderType: strPtr(senderType),
		},
		Message: &larkim.EventMessage{
			MessageId:   strPtr("om_1"),
			ChatId:      strPtr("oc_1"),
			ChatType:    strPtr("group"),
			MessageType: strPtr(msgType),
			Content:     strPtr(content),
			CreateTime:  strPtr("1714557600000"),
		},
	}
}

func TestParseMessageEvent_Text(t *testing.T) {
	ev := newEvent("user", "text", `{"text":"@_user_1 @卡 note this"}`)
	ev.Message.Mentions = []*larkim.MentionEvent{{Key: strPtr("@_user_1"), Name: strPtr("Bot")}}

	msg := ParseMessageEvent(ev)
	if msg == nil {
		t.Fatal("Expected message")
	}
	if msg.Content != "@Bot @卡 note this" {
		t.Errorf("Unexpected content %q", msg.Content)
	}
	if msg.Sender == nil || msg.Sender.SenderID != "ou_alice" {
		t.Errorf("Unexpected sender %+v", msg.Sender)
	}
	if msg.MsgID != "om_1" || msg.ChatID != "oc_1" || msg.CreateTime != 1714557600000 {
		t.Errorf("Unexpected message %+v", msg)
	}
}

func TestParseMessageEvent_Image(t *testing.T) {
	msg := ParseMessageEvent(newEvent("user", "image", `{"image_key":"img_v2_abc"}`))
	if msg == nil || !reflect.DeepEqual(msg.ImageKeys, []string{"img_v2_abc"}) {
		t.Errorf("Expected image key, got %+v", msg)
	}
}

func TestParseMessageEvent_Post(t *testing.T) {
	content := `{"title":"","content":[[{"tag":"text","text":"記錄 "},{"tag":"text","text":"hello"}],[{"tag":"img","image_key":"img_1"}]]}`
	msg := ParseMessageEvent(newEvent("user", "post", content))
	if msg == nil {
		t.Fatal("Expected message")
	}
	if msg.Content != "記錄 hello" {
		t.Errorf("Unexpected content %q", msg.Content)
	}
	if !reflect.DeepEqual(msg.ImageKeys, []string{"img_1"}) {
		t.Errorf("Unexpected image keys %v", msg.ImageKeys)
	}
}

func TestParseMessageEvent_IgnoresApps(t *testing.T) {
	if msg := ParseMessageEvent(newEvent("app", "text", `{"text":"hi"}`)); msg != nil {
		t.Errorf("Expected app message to be ignored, got %+v", msg)
	}
}

func TestParseMessageEvent_Malformed(t *testing.T) {
	msg := ParseMessageEvent(newEvent("user", "text", `not json`))
	if msg == nil || msg.Content != "" {
		t.Errorf("Expected empty content for malformed JSON, got %+v", msg)
	}
	if msg := ParseMessageEvent(&larkim.P2MessageReceiveV1Data{}); msg != nil {
		t.Error("Expected nil for event without message")
	}
}

func TestResourceRef(t *testing.T) {
	ref := ResourceRef("om_1", "img_1")
	msgID, key, ok := SplitResourceRef(ref)
	if !ok || msgID != "om_1" || key != "img_1" {
		t.Errorf("Unexpected split %q %q %v", msgID, key, ok)
	}
	if _, _, ok := SplitResourceRef("om_1"); ok {
		t.Error("Expected reference without key to be rejected")
	}
}
