package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/biz/repo"
)

// Reply texts sent to users
const (
	ReplyKeywordRecorded = "已記錄: "
	ReplyImageRecorded   = "已紀錄您的圖片: "
	ReplyImageFailed     = "圖片上傳失敗，請稍後再試"
	ReplyInternalError   = "處理訊息時發生錯誤，請稍後再試"
)

// Collaborator failures, wrapped with the underlying error
var (
	ErrProfileLookup = errors.New("profile lookup failed")
	ErrMediaFetch    = errors.New("media fetch failed")
	ErrUpload        = errors.New("upload failed")
	ErrLedgerAppend  = errors.New("ledger append failed")
	ErrInternal      = errors.New("internal error")
)

// Action is what the capture flow did with an event
type Action string

const (
	ActionIgnored         Action = "ignored"
	ActionKeywordRecorded Action = "keyword_recorded"
	ActionImageRecorded   Action = "image_recorded"
	ActionImageFailed     Action = "image_failed"
	ActionFailed          Action = "failed"
)

// Outcome describes the handling of one event
type Outcome struct {
	Action         Action
	Classification domain.Classification
	DisplayName    string
	URL            string // Storage link of a recorded image
	ProfileErr     error  // Set when the display name fell back to a placeholder
	Err            error  // Failed step: ledger append on keywords, fetch/upload/append on images
}

// CaptureConfig contains capture configuration
type CaptureConfig struct {
	Window time.Duration // How long a trigger keeps images eligible
}

// DefaultCaptureConfig returns the default capture configuration
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{Window: domain.DefaultKeywordValidDuration}
}

// CaptureUsecase links trigger keywords to the images that follow them
type CaptureUsecase struct {
	triggers   repo.TriggerRepo
	messenger  repo.MessengerRepo
	ledger     repo.LedgerRepo
	storage    repo.StorageRepo
	classifier *domain.Classifier
	config     CaptureConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewCaptureUsecase creates a new capture usecase
func NewCaptureUsecase(
	triggers repo.TriggerRepo,
	messenger repo.MessengerRepo,
	ledger repo.LedgerRepo,
	storage repo.StorageRepo,
	classifier *domain.Classifier,
	config CaptureConfig,
	logger *slog.Logger,
) *CaptureUsecase {
	if config.Window <= 0 {
		config.Window = domain.DefaultKeywordValidDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CaptureUsecase{
		triggers:   triggers,
		messenger:  messenger,
		ledger:     ledger,
		storage:    storage,
		classifier: classifier,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock replaces the wall clock
func (uc *CaptureUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// Window returns the trigger validity window
func (uc *CaptureUsecase) Window() time.Duration {
	return uc.config.Window
}

// Handle processes one inbound event.
// Collaborator failures are reported through the Outcome; the returned error is only
// set for unexpected failures, after a generic failure reply has been attempted.
func (uc *CaptureUsecase) Handle(ctx context.Context, ev domain.InboundEvent) (out *Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("[MESSAGE] Error handling message", "user_id", ev.UserID, "panic", r)
			uc.reply(ctx, ev.ReplyToken, ReplyInternalError)
			out = &Outcome{Action: ActionFailed}
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	cls := uc.classifier.Classify(ev)
	switch cls.Kind {
	case domain.ClassTrigger:
		out = uc.handleTrigger(ctx, ev, cls)
	case domain.ClassCandidateImage:
		out = uc.handleImage(ctx, ev)
	default:
		out = &Outcome{Action: ActionIgnored}
	}
	out.Classification = cls
	return out, nil
}

// handleTrigger records a trigger keyword and confirms it.
// A ledger failure is logged and reported but does not suppress the reply.
func (uc *CaptureUsecase) handleTrigger(ctx context.Context, ev domain.InboundEvent, cls domain.Classification) *Outcome {
	now := uc.now()
	uc.triggers.Record(ev.UserID, now)

	name, profileErr := uc.resolveName(ctx, ev.UserID)
	out := &Outcome{Action: ActionKeywordRecorded, DisplayName: name, ProfileErr: profileErr}

	entry := domain.LedgerEntry{
		RecordedAt:  now,
		DisplayName: name,
		Kind:        domain.EntryKindKeyword,
		Content:     cls.Payload,
	}
	if err := uc.ledger.Append(ctx, entry); err != nil {
		out.Err = fmt.Errorf("%w: %v", ErrLedgerAppend, err)
		uc.logger.Error("[SHEET] Failed to record to sheet", "user", name, "kind", entry.Kind, "error", err)
	} else {
		uc.logger.Info("[SHEET] Recorded", "kind", entry.Kind, "user", name)
	}

	uc.reply(ctx, ev.ReplyToken, ReplyKeywordRecorded+cls.Payload)
	return out
}

// handleImage captures an image if the sender has a valid trigger
func (uc *CaptureUsecase) handleImage(ctx context.Context, ev domain.InboundEvent) *Outcome {
	now := uc.now()
	if !uc.triggers.IsValid(ev.UserID, now, uc.config.Window) {
		uc.logger.Info("[IGNORE] Ignored image without valid keyword", "user_id", ev.UserID)
		return &Outcome{Action: ActionIgnored}
	}

	name, profileErr := uc.resolveName(ctx, ev.UserID)
	out := &Outcome{DisplayName: name, ProfileErr: profileErr}

	url, err := uc.captureImage(ctx, ev, name, now)
	if err != nil {
		out.Action = ActionImageFailed
		out.Err = err
		uc.logger.Error("[IMAGE] Error handling image", "user_id", ev.UserID, "message_id", ev.MessageID, "error", err)
		uc.reply(ctx, ev.ReplyToken, ReplyImageFailed)
		return out
	}

	out.Action = ActionImageRecorded
	out.URL = url
	uc.reply(ctx, ev.ReplyToken, ReplyImageRecorded+url)
	return out
}

// captureImage fetches, uploads and records an image. It stops at the first failure.
func (uc *CaptureUsecase) captureImage(ctx context.Context, ev domain.InboundEvent, name string, now time.Time) (string, error) {
	content, err := uc.messenger.FetchMedia(ctx, ev.MessageID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaFetch, err)
	}
	uc.logger.Info("[IMAGE] Downloaded content", "message_id", ev.MessageID, "bytes", len(content))

	url, err := uc.storage.Upload(ctx, content, name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	entry := domain.LedgerEntry{
		RecordedAt:  now,
		DisplayName: name,
		Kind:        domain.EntryKindImage,
		Content:     url,
	}
	if err := uc.ledger.Append(ctx, entry); err != nil {
		return "", fmt.Errorf("%w: %v", ErrLedgerAppend, err)
	}
	uc.logger.Info("[SHEET] Recorded", "kind", entry.Kind, "user", name)
	return url, nil
}

// resolveName returns the user's display name, or a placeholder if the lookup fails
func (uc *CaptureUsecase) resolveName(ctx context.Context, userID string) (string, error) {
	name, err := uc.messenger.DisplayName(ctx, userID)
	if err == nil && name != "" {
		return name, nil
	}
	if err == nil {
		err = errors.New("empty display name")
	}
	uc.logger.Warn("[PROFILE] Failed to get user profile", "user_id", userID, "error", err)
	return PlaceholderName(userID), fmt.Errorf("%w: %v", ErrProfileLookup, err)
}

// reply sends a reply; failures are only logged
func (uc *CaptureUsecase) reply(ctx context.Context, replyToken, text string) {
	if err := uc.messenger.Reply(ctx, replyToken, text); err != nil {
		uc.logger.Error("[REPLY] Failed to send reply", "error", err)
		return
	}
	uc.logger.Info("[REPLY] Sent reply", "text", text)
}

// PlaceholderName derives a display name from the first six characters of userID
func PlaceholderName(userID string) string {
	r := []rune(userID)
	if len(r) > 6 {
		r = r[:6]
	}
	return "User-" + string(r)
}
