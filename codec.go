package lugha

import "strings"

const (
	keySeparator = ":"

	// cultureSentinel replaces the invariant culture in cache keys so the
	// trailing segment is never empty.
	cultureSentinel = "_"
)

// EncodeKey maps a (resource, key, culture) triple to its cache
// identifier, `{prefix}:{resource}:{key}:{cultureSegment}`. Encoding is
// deterministic and collision free as long as resource and key values do
// not themselves embed the separator; that constraint is documented, not
// enforced.
func EncodeKey(prefix, resource, key, culture string) string {
	segment := culture
	if segment == InvariantCulture {
		segment = cultureSentinel
	}

	return strings.Join([]string{prefix, resource, key, segment}, keySeparator)
}
