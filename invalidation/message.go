// Package invalidation carries cache eviction notices between process
// instances over a gocloud.dev pubsub topic. Publisher and subscriber
// must share the same cache key prefix so evicted keys line up across
// instances.
package invalidation

import "github.com/pitabwire/lugha"

// TypeHeader is the message metadata key discriminating the two
// invalidation shapes.
const TypeHeader = "lugha-invalidation"

const (
	// TypeSingle marks a single entry invalidation.
	TypeSingle = "single"
	// TypeBatch marks a resource scoped batch invalidation.
	TypeBatch = "batch"
)

// SingleMessage tells subscribers to drop one cache entry.
type SingleMessage struct {
	Resource string `json:"resource"`
	Key      string `json:"key"`
	Culture  string `json:"culture"`
}

// BatchMessage tells subscribers to drop every listed entry of one
// resource. The pair list is complete; subscribers never re-query the
// store to expand it.
type BatchMessage struct {
	Resource string       `json:"resource"`
	Pairs    []lugha.Pair `json:"pairs"`
}
