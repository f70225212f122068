package view

import (
	"bytes"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultRenderCacheSize is used when a non-positive size is configured.
const DefaultRenderCacheSize = 256

// Renderer turns Markdown post bodies into sanitised HTML. Results are
// memoised by source text.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  *lru.Cache[string, string]
}

// NewRenderer creates a Renderer holding up to cacheSize rendered bodies.
func NewRenderer(cacheSize int) (*Renderer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultRenderCacheSize
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}

	policy := bluemonday.UGCPolicy()
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: policy,
		cache:  cache,
	}, nil
}

// Render converts source to HTML. On a conversion error the sanitised source
// is returned instead.
func (r *Renderer) Render(source string) string {
	if source == "" {
		return ""
	}
	if out, ok := r.cache.Get(source); ok {
		return out
	}

	var buf bytes.Buffer
	var out string
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		out = r.policy.Sanitize(source)
	} else {
		out = string(r.policy.SanitizeBytes(buf.Bytes()))
	}
	r.cache.Add(source, out)
	return out
}
