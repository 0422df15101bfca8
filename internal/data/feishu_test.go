package data

import (
	"context"
	"testing"
)

type fakeFeishuAPI struct {
	downloaded [2]string
	replied    [2]string
}

func (f *fakeFeishuAPI) GetUserName(ctx context.Context, openID string) (string, error) {
	return "Name of " + openID, nil
}

func (f *fakeFeishuAPI) DownloadImage(ctx context.Context, messageID, imageKey string) ([]byte, error) {
	f.downloaded = [2]string{messageID, imageKey}
	return []byte("img"), nil
}

func (f *fakeFeishuAPI) ReplyText(ctx context.Context, messageID, text string) error {
	f.replied = [2]string{messageID, text}
	return nil
}

func TestFeishuRepo(t *testing.T) {
	api := &fakeFeishuAPI{}
	r := &feishuRepo{client: api}
	ctx := context.Background()

	if name, _ := r.DisplayName(ctx, "ou_1"); name != "Name of ou_1" {
		t.Errorf("Unexpected name %q", name)
	}

	if _, err := r.FetchMedia(ctx, "om_1:img_1"); err != nil {
		t.Fatalf("FetchMedia: %v", err)
	}
	if api.downloaded != [2]string{"om_1", "img_1"} {
		t.Errorf("Unexpected download args %v", api.downloaded)
	}
	if _, err := r.FetchMedia(ctx, "om_1"); err == nil {
		t.Error("Expected error for reference without image key")
	}

	if err := r.Reply(ctx, "om_1", "已記錄: X"); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if api.replied != [2]string{"om_1", "已記錄: X"} {
		t.Errorf("Unexpected reply args %v", api.replied)
	}
}
