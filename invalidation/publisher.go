package invalidation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/pitabwire/natspubsub" // required for NATS pubsub driver registration
	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub" // required for in-memory pubsub driver registration

	"github.com/pitabwire/lugha"
	"github.com/pitabwire/lugha/internal"
)

// Publisher broadcasts invalidation messages on a pubsub topic. It is
// best effort by contract: callers on the write path log failures and
// move on.
type Publisher struct {
	url    string
	topic  *pubsub.Topic
	isInit atomic.Bool
}

var _ lugha.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher for the supplied queue URL. Init must
// be called before publishing.
func NewPublisher(queueURL string) *Publisher {
	return &Publisher{
		url: queueURL,
	}
}

// Init opens the underlying topic.
func (p *Publisher) Init(ctx context.Context) error {
	if p.isInit.Load() && p.topic != nil {
		return nil
	}

	var err error

	p.topic, err = pubsub.OpenTopic(ctx, p.url)
	if err != nil {
		return err
	}

	p.isInit.Store(true)
	return nil
}

// Initiated reports whether the topic has been opened.
func (p *Publisher) Initiated() bool {
	return p.isInit.Load()
}

// PublishSingle broadcasts a single entry invalidation.
func (p *Publisher) PublishSingle(ctx context.Context, resource, key, culture string) error {
	return p.publish(ctx, TypeSingle, SingleMessage{
		Resource: resource,
		Key:      key,
		Culture:  culture,
	})
}

// PublishBatch broadcasts a resource scoped batch invalidation.
func (p *Publisher) PublishBatch(ctx context.Context, resource string, pairs []lugha.Pair) error {
	return p.publish(ctx, TypeBatch, BatchMessage{
		Resource: resource,
		Pairs:    pairs,
	})
}

func (p *Publisher) publish(ctx context.Context, messageType string, payload any) error {
	topic := p.topic
	if topic == nil {
		return errors.New("publisher is not initialized")
	}

	body, err := internal.Marshal(payload)
	if err != nil {
		return err
	}

	return topic.Send(ctx, &pubsub.Message{
		Body: body,
		Metadata: map[string]string{
			TypeHeader: messageType,
		},
	})
}

const defaultPublisherShutdownTimeoutSeconds = 30

// Stop shuts the topic down, detaching from an already cancelled caller
// context so in-flight sends can drain.
func (p *Publisher) Stop(ctx context.Context) error {
	var sctx context.Context
	var cancelFunc context.CancelFunc

	select {
	case <-ctx.Done():
		sctx = context.Background()
	default:
		sctx = ctx
	}

	sctx, cancelFunc = context.WithTimeout(sctx, time.Second*defaultPublisherShutdownTimeoutSeconds)
	defer cancelFunc()

	p.isInit.Store(false)

	if p.topic == nil {
		return nil
	}

	// mem:// driver is process-local and shared by URL. Shutting it down here can poison
	// subsequent in-process users of the same topic URL (common in tests).
	if strings.HasPrefix(strings.ToLower(p.url), "mem://") {
		p.topic = nil
		return nil
	}

	err := p.topic.Shutdown(sctx)
	if err != nil {
		if isTopicAlreadyShutdownErr(err) {
			p.topic = nil
			return nil
		}
		return err
	}

	p.topic = nil
	return nil
}

func isTopicAlreadyShutdownErr(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(strings.ToLower(err.Error()), "topic has been shutdown")
}
