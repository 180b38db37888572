package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/validation"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUpstream           = errors.New("upstream failure")
)

const outboundTimeout = 5 * time.Second

func validate(v any) error {
	if err := validation.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// publish sends an event and only logs on failure; a broker outage never fails the request.
func publish(ctx context.Context, pub mykafka.Publisher, topic, key string, ev mykafka.Event) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, outboundTimeout)
	defer cancel()
	if err := pub.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "type", ev.Type, "error", err)
	}
}
