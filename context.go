package lugha

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type contextKey string

func (c contextKey) String() string {
	return "lugha/" + string(c)
}

const ctxKeyCulture = contextKey("cultureKey")

// CultureToContext adds the active culture to the current supplied context.
//
// The resolver itself always takes the culture as an explicit parameter;
// these helpers only bridge ambient request state at the boundary.
func CultureToContext(ctx context.Context, culture string) context.Context {
	return context.WithValue(ctx, ctxKeyCulture, culture)
}

// CultureFromContext extracts the active culture from the supplied
// context if any exists.
func CultureFromContext(ctx context.Context) string {
	culture, ok := ctx.Value(ctxKeyCulture).(string)
	if !ok {
		return InvariantCulture
	}

	return culture
}

// CultureFromHTTPRequest determines the caller's culture from an HTTP
// request, preferring an explicit "lang" form value over the
// Accept-Language header.
func CultureFromHTTPRequest(req *http.Request) string {
	lang := req.FormValue("lang")
	if lang != "" {
		return lang
	}

	return CultureFromAcceptLanguage(req.Header.Get("Accept-Language"))
}

// CultureFromAcceptLanguage picks the best weighted culture out of an
// Accept-Language header value.
func CultureFromAcceptLanguage(header string) string {
	if header == "" {
		return InvariantCulture
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return InvariantCulture
	}

	return tags[0].String()
}
