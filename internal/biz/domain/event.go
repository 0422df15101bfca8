package domain

import "time"

// Platform identifies the messaging platform an event came from
type Platform string

const (
	PlatformLINE   Platform = "line"
	PlatformFeishu Platform = "feishu"
)

// MessageKind is the kind of an inbound chat message
type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindImage MessageKind = "image"
	MessageKindOther MessageKind = "other"
)

// InboundEvent is a platform-neutral inbound message
type InboundEvent struct {
	Platform   Platform
	EventID    string // Platform delivery id, used for duplicate suppression
	UserID     string
	ChatID     string // Group/room/chat id, empty for 1:1 chats on LINE
	ReplyToken string // LINE reply token, or the message id on Feishu
	MessageID  string // Id used to fetch media content
	Kind       MessageKind
	Text       string
	Redelivery bool
	ReceivedAt time.Time
}
