package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	tcValKey "github.com/testcontainers/testcontainers-go/modules/valkey"

	"github.com/pitabwire/lugha/cache"
	cacheredis "github.com/pitabwire/lugha/cache/redis"
)

// The redis client is exercised against a Valkey server, which speaks
// the same protocol.
const valKeyImage = "docker.io/valkey/valkey:latest"

type RedisCacheTestSuite struct {
	suite.Suite

	container *tcValKey.ValkeyContainer
	cache     cache.RawCache
}

func TestRedisCacheTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis cache tests in short mode")
	}

	suite.Run(t, new(RedisCacheTestSuite))
}

func (s *RedisCacheTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcValKey.Run(ctx, valKeyImage)
	s.Require().NoError(err)
	s.container = container

	conn, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	c, err := cacheredis.New(cache.WithURI(conn), cache.WithMaxAge(time.Minute))
	s.Require().NoError(err)
	s.cache = c
}

func (s *RedisCacheTestSuite) TearDownSuite() {
	if s.cache != nil {
		s.Require().NoError(s.cache.Close())
	}

	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *RedisCacheTestSuite) TestSetGetRoundTrip() {
	ctx := s.T().Context()

	s.Require().NoError(s.cache.Set(ctx, "roundtrip", []byte(`{"value":"Hello","found":true}`), time.Minute))

	value, found, err := s.cache.Get(ctx, "roundtrip")
	s.Require().NoError(err)
	s.True(found)
	s.Equal([]byte(`{"value":"Hello","found":true}`), value)
}

func (s *RedisCacheTestSuite) TestGetMissing() {
	ctx := s.T().Context()

	value, found, err := s.cache.Get(ctx, "absent")
	s.Require().NoError(err)
	s.False(found)
	s.Nil(value)
}

func (s *RedisCacheTestSuite) TestEntriesExpire() {
	ctx := s.T().Context()

	s.Require().NoError(s.cache.Set(ctx, "expiring", []byte("v"), 100*time.Millisecond))

	s.Eventually(func() bool {
		_, found, err := s.cache.Get(ctx, "expiring")
		return err == nil && !found
	}, 5*time.Second, 50*time.Millisecond)
}

func (s *RedisCacheTestSuite) TestDelete() {
	ctx := s.T().Context()

	s.Require().NoError(s.cache.Set(ctx, "deleted", []byte("v"), time.Minute))
	s.Require().NoError(s.cache.Delete(ctx, "deleted"))

	_, found, err := s.cache.Get(ctx, "deleted")
	s.Require().NoError(err)
	s.False(found)

	// Deleting a missing key is not an error.
	s.Require().NoError(s.cache.Delete(ctx, "deleted"))
}

func (s *RedisCacheTestSuite) TestExists() {
	ctx := s.T().Context()

	found, err := s.cache.Exists(ctx, "presence")
	s.Require().NoError(err)
	s.False(found)

	s.Require().NoError(s.cache.Set(ctx, "presence", []byte("v"), time.Minute))

	found, err = s.cache.Exists(ctx, "presence")
	s.Require().NoError(err)
	s.True(found)
}

func (s *RedisCacheTestSuite) TestFlush() {
	ctx := s.T().Context()

	s.Require().NoError(s.cache.Set(ctx, "flush-a", []byte("1"), time.Minute))
	s.Require().NoError(s.cache.Set(ctx, "flush-b", []byte("2"), time.Minute))

	s.Require().NoError(s.cache.Flush(ctx))

	for _, key := range []string{"flush-a", "flush-b"} {
		_, found, err := s.cache.Get(ctx, key)
		s.Require().NoError(err)
		s.False(found)
	}
}
