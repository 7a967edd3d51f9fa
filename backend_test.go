package lugha_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lugha"
)

type BackendTestSuite struct {
	suite.Suite
}

func TestBackendTestSuite(t *testing.T) {
	suite.Run(t, new(BackendTestSuite))
}

func (s *BackendTestSuite) TestEmptyURIYieldsInMemoryCache() {
	ctx := s.T().Context()

	raw, err := lugha.OpenCache(&lugha.ConfigurationDefault{})
	s.Require().NoError(err)
	defer func() { _ = raw.Close() }()

	s.Require().NoError(raw.Set(ctx, "k", []byte("v"), time.Minute))

	value, found, err := raw.Get(ctx, "k")
	s.Require().NoError(err)
	s.True(found)
	s.Equal([]byte("v"), value)
}

func (s *BackendTestSuite) TestUnsupportedSchemeIsRejected() {
	cfg := lugha.ConfigurationDefault{TranslationCacheURI: "memcached://localhost:11211"}

	_, err := lugha.OpenCache(&cfg)
	s.Require().Error(err)
}
