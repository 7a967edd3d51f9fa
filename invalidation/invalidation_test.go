package invalidation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lugha"
	"github.com/pitabwire/lugha/cache"
	"github.com/pitabwire/lugha/invalidation"
)

type InvalidationTestSuite struct {
	suite.Suite
}

func TestInvalidationTestSuite(t *testing.T) {
	suite.Run(t, new(InvalidationTestSuite))
}

const keyPrefix = "lugha"

// seedEntry warms one cache slot the same way the resolver would.
func (s *InvalidationTestSuite) seedEntry(raw cache.RawCache, resource, key, culture string) string {
	cacheKey := lugha.EncodeKey(keyPrefix, resource, key, culture)

	err := raw.Set(s.T().Context(), cacheKey, []byte(`{"value":"Hello","found":true}`), time.Minute)
	s.Require().NoError(err)

	return cacheKey
}

func (s *InvalidationTestSuite) requireEvicted(raw cache.RawCache, cacheKey string) {
	s.Eventually(func() bool {
		_, found, err := raw.Get(s.T().Context(), cacheKey)
		return err == nil && !found
	}, 5*time.Second, 10*time.Millisecond)
}

func (s *InvalidationTestSuite) TestSingleInvalidationRoundTrip() {
	ctx := s.T().Context()

	queueURL := "mem://invalidation-single"

	publisher := invalidation.NewPublisher(queueURL)
	s.Require().NoError(publisher.Init(ctx))
	s.Require().True(publisher.Initiated())
	defer func() { _ = publisher.Stop(ctx) }()

	raw := cache.NewInMemoryCache()
	defer func() { _ = raw.Close() }()

	subscriber := invalidation.NewSubscriber(queueURL, keyPrefix, raw)
	s.Require().NoError(subscriber.Init(ctx))
	s.Require().True(subscriber.Initiated())
	defer func() { _ = subscriber.Stop(ctx) }()

	evictedKey := s.seedEntry(raw, "Greetings", "Hello", "en")
	survivorKey := s.seedEntry(raw, "Greetings", "Hello", "sw")

	s.Require().NoError(publisher.PublishSingle(ctx, "Greetings", "Hello", "en"))

	s.requireEvicted(raw, evictedKey)

	// Only the named triple is evicted.
	_, found, err := raw.Get(ctx, survivorKey)
	s.Require().NoError(err)
	s.True(found)
}

func (s *InvalidationTestSuite) TestBatchInvalidationRoundTrip() {
	ctx := s.T().Context()

	queueURL := "mem://invalidation-batch"

	publisher := invalidation.NewPublisher(queueURL)
	s.Require().NoError(publisher.Init(ctx))
	defer func() { _ = publisher.Stop(ctx) }()

	raw := cache.NewInMemoryCache()
	defer func() { _ = raw.Close() }()

	subscriber := invalidation.NewSubscriber(queueURL, keyPrefix, raw)
	s.Require().NoError(subscriber.Init(ctx))
	defer func() { _ = subscriber.Stop(ctx) }()

	helloEn := s.seedEntry(raw, "Greetings", "Hello", "en")
	helloInvariant := s.seedEntry(raw, "Greetings", "Hello", "")
	byeEn := s.seedEntry(raw, "Greetings", "Bye", "en")
	otherResource := s.seedEntry(raw, "Emails", "Hello", "en")

	err := publisher.PublishBatch(ctx, "Greetings", []lugha.Pair{
		{Key: "Hello", Culture: "en"},
		{Key: "Hello", Culture: ""},
		{Key: "Bye", Culture: "en"},
	})
	s.Require().NoError(err)

	s.requireEvicted(raw, helloEn)
	s.requireEvicted(raw, helloInvariant)
	s.requireEvicted(raw, byeEn)

	// Entries under other resources are untouched.
	_, found, getErr := raw.Get(ctx, otherResource)
	s.Require().NoError(getErr)
	s.True(found)
}

func (s *InvalidationTestSuite) TestPublishBeforeInitFails() {
	ctx := s.T().Context()

	publisher := invalidation.NewPublisher("mem://invalidation-uninitialised")

	err := publisher.PublishSingle(ctx, "Greetings", "Hello", "en")
	s.Require().Error(err)
}

func (s *InvalidationTestSuite) TestSubscriberRequiresURL() {
	ctx := s.T().Context()

	raw := cache.NewInMemoryCache()
	defer func() { _ = raw.Close() }()

	subscriber := invalidation.NewSubscriber("", keyPrefix, raw)
	s.Require().Error(subscriber.Init(ctx))
}

func (s *InvalidationTestSuite) TestInitIsIdempotent() {
	ctx := s.T().Context()

	queueURL := "mem://invalidation-reinit"

	publisher := invalidation.NewPublisher(queueURL)
	s.Require().NoError(publisher.Init(ctx))
	s.Require().NoError(publisher.Init(ctx))
	defer func() { _ = publisher.Stop(ctx) }()

	raw := cache.NewInMemoryCache()
	defer func() { _ = raw.Close() }()

	subscriber := invalidation.NewSubscriber(queueURL, keyPrefix, raw)
	s.Require().NoError(subscriber.Init(ctx))
	s.Require().NoError(subscriber.Init(ctx))
	defer func() { _ = subscriber.Stop(ctx) }()
}
