package lugha

import (
	"strings"

	"golang.org/x/text/language"
)

// FallbackChain computes the ordered list of cultures to probe for the
// supplied active culture. The chain starts with the active culture,
// optionally walks its parents ("en-US" -> "en") when parentFallback is
// set, then appends the configured global fallback culture and finally
// the invariant culture. Entries are unique and the invariant culture is
// always last, exactly once.
func FallbackChain(activeCulture string, parentFallback bool, globalFallback string) []string {
	const typicalChainLen = 4

	chain := make([]string, 0, typicalChainLen)
	seen := make(map[string]struct{}, typicalChainLen)

	add := func(culture string) {
		if _, ok := seen[culture]; ok {
			return
		}
		seen[culture] = struct{}{}
		chain = append(chain, culture)
	}

	if activeCulture != InvariantCulture {
		add(activeCulture)

		if parentFallback {
			for _, parent := range parentCultures(activeCulture) {
				add(parent)
			}
		}
	}

	if globalFallback != InvariantCulture {
		add(globalFallback)
	}

	add(InvariantCulture)

	return chain
}

// parentCultures walks the parent tags of a culture, most specific
// first, stopping before the root. BCP 47 identifiers walk via the
// language matcher tables; anything unparseable falls back to trimming
// subtag separators.
func parentCultures(culture string) []string {
	tag, err := language.Parse(culture)
	if err != nil {
		return parentCulturesBySeparator(culture)
	}

	var parents []string
	for parent := tag.Parent(); parent != language.Und; parent = parent.Parent() {
		parents = append(parents, parent.String())
	}

	return parents
}

func parentCulturesBySeparator(culture string) []string {
	var parents []string
	for {
		idx := strings.LastIndexAny(culture, "-_")
		if idx <= 0 {
			return parents
		}
		culture = culture[:idx]
		parents = append(parents, culture)
	}
}
