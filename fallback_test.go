package lugha_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lugha"
)

type FallbackTestSuite struct {
	suite.Suite
}

func TestFallbackTestSuite(t *testing.T) {
	suite.Run(t, new(FallbackTestSuite))
}

func (s *FallbackTestSuite) TestFallbackChain() {
	testCases := []struct {
		name           string
		activeCulture  string
		parentFallback bool
		globalFallback string
		expected       []string
	}{
		{
			name:           "parent walk",
			activeCulture:  "en-US",
			parentFallback: true,
			expected:       []string{"en-US", "en", ""},
		},
		{
			name:           "parent walk unknown region",
			activeCulture:  "fr-FR",
			parentFallback: true,
			expected:       []string{"fr-FR", "fr", ""},
		},
		{
			name:           "parent walk disabled",
			activeCulture:  "en-US",
			parentFallback: false,
			expected:       []string{"en-US", ""},
		},
		{
			name:          "invariant culture only",
			activeCulture: "",
			expected:      []string{""},
		},
		{
			name:           "invariant active ignores global fallback duplicate",
			activeCulture:  "",
			parentFallback: true,
			expected:       []string{""},
		},
		{
			name:           "global fallback appended",
			activeCulture:  "sw-TZ",
			parentFallback: true,
			globalFallback: "en",
			expected:       []string{"sw-TZ", "sw", "en", ""},
		},
		{
			name:           "global fallback already present",
			activeCulture:  "en-US",
			parentFallback: true,
			globalFallback: "en",
			expected:       []string{"en-US", "en", ""},
		},
		{
			name:           "neutral culture",
			activeCulture:  "en",
			parentFallback: true,
			expected:       []string{"en", ""},
		},
		{
			name:           "global fallback without parent walk",
			activeCulture:  "fr-FR",
			parentFallback: false,
			globalFallback: "en",
			expected:       []string{"fr-FR", "en", ""},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			chain := lugha.FallbackChain(tc.activeCulture, tc.parentFallback, tc.globalFallback)
			s.Equal(tc.expected, chain)
		})
	}
}

func (s *FallbackTestSuite) TestFallbackChainInvariants() {
	cultures := []string{"", "en", "en-US", "sw-TZ", "zh-Hans-CN", "custom_REGION-sub"}

	for _, culture := range cultures {
		s.Run("culture "+culture, func() {
			chain := lugha.FallbackChain(culture, true, "en")

			seen := make(map[string]int)
			for _, entry := range chain {
				seen[entry]++
			}

			for entry, count := range seen {
				s.Equalf(1, count, "culture %q appears %d times", entry, count)
			}

			s.Require().NotEmpty(chain)
			s.Equal(lugha.InvariantCulture, chain[len(chain)-1])
		})
	}
}
