package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/spacefns/spaceport"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event spaceport.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err

	}

	return nil
}

// Realtime streams events published on the requested channels to output until
// ctx is done. Each list received on input replaces the current subscription.
func (s *SignalService) Realtime(ctx context.Context, input chan []string, output chan spaceport.Event) {
	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	events := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case channels, ok := <-input:
			if !ok {
				return
			}
			err := pubsub.Unsubscribe(ctx)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error unsubscribing",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
			}
			if len(channels) > 0 {
				err = pubsub.Subscribe(ctx, channels...)
				if err != nil {
					slog.ErrorContext(
						ctx, "Error subscribing",
						slog.String("error", err.Error()),
						slog.String("module", "signal"),
					)
				}
			}
		case message, ok := <-events:
			if !ok {
				return
			}
			var event spaceport.Event
			err := json.Unmarshal([]byte(message.Payload), &event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error unmarshalling event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
