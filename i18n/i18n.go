// Package i18n holds the API message catalogue and request language negotiation.
package i18n

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/text/language"
)

var (
	PtBR = language.MustParse("pt-BR")
	EnUS = language.MustParse("en-US")
	EsES = language.MustParse("es-ES")

	// Default is used when nothing else matches.
	Default = PtBR

	supported = []language.Tag{PtBR, EnUS, EsES}
	matcher   = language.NewMatcher(supported)
)

type ctxKey struct{}

// Supported lists the catalogue languages, default first.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match maps any language preference string (a tag or an Accept-Language
// header) onto a supported tag.
func Match(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return Default
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default
	}
	return supported[index]
}

// Negotiate picks the response language from ?lang= and then Accept-Language.
func Negotiate(r *http.Request) language.Tag {
	return Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

func FromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return tag
	}
	return Default
}

// T formats key in the context language. Unknown keys fall back to the key.
func T(ctx context.Context, key string, args ...any) string {
	return Translate(FromContext(ctx), key, args...)
}

func Translate(tag language.Tag, key string, args ...any) string {
	msg, ok := catalogue[tag.String()][key]
	if !ok {
		msg, ok = catalogue[Default.String()][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
