package i18n

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegotiate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{name: "default", target: "/", want: "pt-BR"},
		{name: "accept language", target: "/", header: "en-GB,en;q=0.8", want: "en-US"},
		{name: "query wins", target: "/?lang=es", header: "en-US", want: "es-ES"},
		{name: "unsupported", target: "/", header: "ja-JP", want: "pt-BR"},
		{name: "garbage", target: "/?lang=%%%", header: "", want: "pt-BR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Accept-Language", tt.header)
			}
			assert.Equal(t, tt.want, Negotiate(r).String())
		})
	}
}

func TestT(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, "Registro não encontrado", T(ctx, ErrNotFound))

	ctx = WithLanguage(ctx, EnUS)
	assert.Equal(t, "Record not found", T(ctx, ErrNotFound))
	assert.Equal(t, "Field name is required", T(ctx, MsgFieldRequired, "name"))
	assert.Equal(t, "no_such_key", T(ctx, "no_such_key"))
}

func TestCatalogueComplete(t *testing.T) {
	t.Parallel()

	base := catalogue[Default.String()]
	for _, tag := range Supported() {
		msgs := catalogue[tag.String()]
		for key := range base {
			assert.Contains(t, msgs, key, "%s missing %s", tag, key)
		}
	}
}
