package server

import (
	"context"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/biz/usecase"
)

// EventHandler processes one inbound event
type EventHandler interface {
	Handle(ctx context.Context, ev domain.InboundEvent) (*usecase.Outcome, error)
}

// PendingCounter reports how many triggers are currently held
type PendingCounter interface {
	Len() int
}
