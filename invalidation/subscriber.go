package invalidation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pitabwire/util"
	"gocloud.dev/pubsub"

	"github.com/pitabwire/lugha"
	"github.com/pitabwire/lugha/cache"
	"github.com/pitabwire/lugha/internal"
)

// Subscriber receives invalidation messages and evicts the matching
// entries from this instance's cache. It encodes keys with the same
// codec as the write path, so prefix configuration must match the
// publishing instances.
type Subscriber struct {
	url          string
	keyPrefix    string
	raw          cache.RawCache
	subscription *pubsub.Subscription
	isInit       atomic.Bool
}

// NewSubscriber creates a subscriber that evicts from raw using the
// supplied key prefix. Init must be called to start listening.
func NewSubscriber(queueURL, keyPrefix string, raw cache.RawCache) *Subscriber {
	return &Subscriber{
		url:       queueURL,
		keyPrefix: keyPrefix,
		raw:       raw,
	}
}

// URI returns the subscription URL.
func (s *Subscriber) URI() string {
	return s.url
}

// Initiated reports whether the subscription has been opened.
func (s *Subscriber) Initiated() bool {
	return s.isInit.Load()
}

// Init opens the subscription and starts the listen loop.
func (s *Subscriber) Init(ctx context.Context) error {
	if s.isInit.Load() && s.subscription != nil {
		return nil
	}

	err := s.createSubscription(ctx)
	if err != nil {
		return err
	}

	go s.listen(ctx)

	s.isInit.Store(true)
	return nil
}

func (s *Subscriber) createSubscription(ctx context.Context) error {
	if s.subscription != nil {
		return nil
	}

	if strings.TrimSpace(s.url) == "" {
		return errors.New("subscriber URL cannot be empty")
	}

	subs, err := pubsub.OpenSubscription(ctx, s.url)
	if err != nil {
		return fmt.Errorf("could not open topic subscription: %w", err)
	}
	s.subscription = subs

	return nil
}

// Receive pulls one message off the subscription.
func (s *Subscriber) Receive(ctx context.Context) (*pubsub.Message, error) {
	if s.subscription == nil {
		return nil, errors.New("only initialised subscriptions can pull messages")
	}

	return s.subscription.Receive(ctx)
}

func (s *Subscriber) recreateSubscription(ctx context.Context) {
	log := util.Log(ctx).WithField("subscriber", s.url)

	log.Warn("recreating subscription")

	if s.subscription != nil {
		err := s.subscription.Shutdown(ctx)
		if err != nil {
			log.WithError(err).Error("could not shut down broken subscription")
		}
		s.subscription = nil
	}

	err := s.createSubscription(ctx)
	if err != nil {
		log.WithError(err).Error("could not recreate subscription")
	}
}

// Stop shuts the subscription down.
func (s *Subscriber) Stop(ctx context.Context) error {
	var sctx context.Context
	var cancelFunc context.CancelFunc

	select {
	case <-ctx.Done():
		sctx = context.Background()
	default:
		sctx = ctx
	}

	sctx, cancelFunc = context.WithTimeout(sctx, time.Second*1)
	defer cancelFunc()

	s.isInit.Store(false)

	if s.subscription != nil {
		err := s.subscription.Shutdown(sctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// listen pulls messages until the context is cancelled. Evictions are
// cheap and order matters, so messages are handled inline rather than
// fanned out to workers.
func (s *Subscriber) listen(ctx context.Context) {
	logger := util.Log(ctx).
		WithField("function", "subscription").
		WithField("url", s.url)
	logger.Debug("starting to listen for invalidations")

	for {
		select {
		case <-ctx.Done():
			err := s.Stop(ctx)
			if err != nil {
				logger.WithError(err).Error("could not stop subscription")
				return
			}
			logger.Debug("exiting due to canceled context")
			return

		default:
			msg, err := s.Receive(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					// Loop again to check ctx.Done()
					continue
				}

				logger.WithError(err).Error("could not pull message")
				s.recreateSubscription(ctx)
				continue
			}

			if handleErr := s.handle(ctx, msg); handleErr != nil {
				logger.WithError(handleErr).Warn("could not process invalidation message")
				msg.Nack()
				continue
			}

			msg.Ack()
		}
	}
}

// handle evicts the entries named by one message.
func (s *Subscriber) handle(ctx context.Context, msg *pubsub.Message) error {
	switch msg.Metadata[TypeHeader] {
	case TypeSingle:
		var single SingleMessage
		if err := internal.Unmarshal(msg.Body, &single); err != nil {
			return fmt.Errorf("decoding single invalidation: %w", err)
		}

		return s.evict(ctx, single.Resource, single.Key, single.Culture)

	case TypeBatch:
		var batch BatchMessage
		if err := internal.Unmarshal(msg.Body, &batch); err != nil {
			return fmt.Errorf("decoding batch invalidation: %w", err)
		}

		for _, pair := range batch.Pairs {
			if err := s.evict(ctx, batch.Resource, pair.Key, pair.Culture); err != nil {
				return err
			}
		}
		return nil

	default:
		// Unknown shapes are acked, not redelivered forever.
		util.Log(ctx).WithField("type", msg.Metadata[TypeHeader]).
			Warn("ignoring unknown invalidation message type")
		return nil
	}
}

func (s *Subscriber) evict(ctx context.Context, resource, key, culture string) error {
	cacheKey := lugha.EncodeKey(s.keyPrefix, resource, key, culture)

	if err := s.raw.Delete(ctx, cacheKey); err != nil {
		return fmt.Errorf("evicting %q: %w", cacheKey, err)
	}

	return nil
}
