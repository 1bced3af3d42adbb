package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/plans>; rel="plans"`,
		`</api/v1/sources>; rel="sources"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/plans>; rel="plans"`,
	},
	"/api/v1/plans": {
		`</api/v1/sources>; rel="sources"`,
	},
	"/api/v1/plans/{id}": {
		`</api/v1/plans>; rel="collection"`,
		`</api/v1/plans/{id}/shapes>; rel="shapes"`,
		`</api/v1/plans/{id}/coverage>; rel="coverage"`,
		`</api/v1/plans/{id}/components>; rel="components"`,
		`</api/v1/plans/{id}/export>; rel="export"`,
	},
	"/api/v1/plans/{id}/shapes/{sid}": {
		`</api/v1/plans/{id}/shapes/{sid}/handles>; rel="handles"`,
	},
	"/api/v1/sources": {
		`</api/v1/plans>; rel="plans"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", expand(ctx, link))
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		return v, nil
	}
}

// expand fills {param} placeholders from the request's path parameters.
func expand(ctx huma.Context, link string) string {
	for _, p := range []string{"id", "sid"} {
		link = strings.ReplaceAll(link, "{"+p+"}", ctx.Param(p))
	}
	return link
}
