package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var ErrRelayDown = errors.New("change relay not subscribed")

// Notifier is told which collections a committed batch touched.
type Notifier interface {
	Notify(ctx context.Context, collections ...string)
}

type changeNotice struct {
	Origin      string    `json:"origin"`
	Collections []string  `json:"collections"`
	At          time.Time `json:"at"`
}

// NewOrigin returns an id for this process. Notices carrying it are not relayed
// back to the local view.
func NewOrigin() string {
	return uuid.NewString()
}

// RedisNotifier notifies the local view and publishes a change notice so
// other instances sharing the store reload their snapshots.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	local   Notifier
	origin  string
}

func NewRedisNotifier(client *redis.Client, channel, origin string, local Notifier) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: channel,
		local:   local,
		origin:  origin,
	}
}

func (n *RedisNotifier) Notify(ctx context.Context, collections ...string) {
	n.local.Notify(ctx, collections...)

	payload, err := json.Marshal(changeNotice{Origin: n.origin, Collections: collections, At: time.Now().UTC()})
	if err == nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		err = n.client.Publish(ctx, n.channel, payload).Err()
	}
	if err != nil {
		logger.Warn("publish change notice failed", "channel", n.channel, "error", err)
	}
}

// decodeNotice returns the collections of a notice published by another
// instance. Own notices and malformed payloads yield ok == false.
func decodeNotice(payload, origin string) (collections []string, ok bool, err error) {
	var notice changeNotice
	if err := json.Unmarshal([]byte(payload), &notice); err != nil {
		return nil, false, err
	}
	if notice.Origin == origin {
		return nil, false, nil
	}
	return notice.Collections, true, nil
}

// Relay forwards change notices published by other instances into a view.
// It resubscribes with backoff when the subscription breaks.
type Relay struct {
	client  *redis.Client
	channel string
	origin  string
	view    Notifier

	subscribed atomic.Bool
}

func NewRelay(client *redis.Client, channel, origin string, view Notifier) *Relay {
	return &Relay{client: client, channel: channel, origin: origin, view: view}
}

// Ping reports whether the relay currently holds a subscription.
func (r *Relay) Ping(ctx context.Context) error {
	if !r.subscribed.Load() {
		return ErrRelayDown
	}
	return ctx.Err()
}

// Run relays notices until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	const (
		minBackoff = 500 * time.Millisecond
		maxBackoff = 30 * time.Second
	)
	log := logger.Component("live").With("channel", r.channel)

	backoff := minBackoff
	for {
		err := r.relayOnce(ctx, log)
		if ctx.Err() != nil {
			return
		}
		if r.subscribed.Swap(false) {
			backoff = minBackoff
		}
		log.Warn("change relay interrupted, resubscribing", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (r *Relay) relayOnce(ctx context.Context, log *slog.Logger) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.subscribed.Store(true)
	log.Info("listening for change notices")

	// notices published while unsubscribed are lost
	r.view.Notify(ctx, domain.CollectionColumns, domain.CollectionTasks)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("subscription channel closed")
			}
			collections, ok, err := decodeNotice(msg.Payload, r.origin)
			if err != nil {
				log.Warn("bad change notice", "error", err)
				continue
			}
			if ok {
				r.view.Notify(ctx, collections...)
			}
		}
	}
}
