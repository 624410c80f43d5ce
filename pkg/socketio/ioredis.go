package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IORedis bridges frames between broker processes over a redis pubsub
// channel. A single process works without it; wiring it in is what lifts
// session addressing beyond one process.
type IORedis[T any] struct {
	Client  *redis.Client
	log     *zap.Logger
	wg      sync.WaitGroup
	channel string
	done    chan struct{}
	quit    sync.Once
}

func NewIORedis[T any](channel string, client *redis.Client, log *zap.Logger) (*IORedis[T], func()) {
	if log == nil {
		log = zap.NewNop()
	}

	io := &IORedis[T]{
		Client:  client,
		log:     log,
		channel: channel,
		done:    make(chan struct{}),
	}

	return io, io.close
}

func (io *IORedis[T]) Publish(ctx context.Context, msg T) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("ioredis: failed to marshal: %w", err)
	}

	if err := io.Client.Publish(ctx, io.channel, string(b)).Err(); err != nil {
		return fmt.Errorf("ioredis: failed to publish: %w", err)
	}

	return nil
}

// Subscribe starts draining the channel in the background until the bridge
// is closed.
func (io *IORedis[T]) Subscribe() <-chan T {
	ch := make(chan T)

	io.wg.Add(1)
	go func() {
		defer io.wg.Done()
		defer close(ch)

		io.subscribe(ch)
	}()

	return ch
}

func (io *IORedis[T]) close() {
	io.quit.Do(func() {
		close(io.done)
		io.wg.Wait()
	})
}

func (io *IORedis[T]) subscribe(ch chan<- T) {
	ctx := context.Background()

	pubsub := io.Client.Subscribe(ctx, io.channel)
	defer pubsub.Close()

	for {
		select {
		case <-io.done:
			return
		case data, ok := <-pubsub.Channel():
			if !ok {
				io.log.Warn("ioredis: pubsub channel closed")

				return
			}

			var msg T
			if err := json.Unmarshal([]byte(data.Payload), &msg); err != nil {
				io.log.Warn("ioredis: unmarshal", zap.Error(err))

				continue
			}

			select {
			case <-io.done:
				return
			case ch <- msg:
			}
		}
	}
}
