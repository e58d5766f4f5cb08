package robotevents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	errs "vexrank/pkg/errors"
)

// maxPages is a hard stop for pagination loops in case the server
// misreports last_page.
const maxPages = 10000

// fetchPages walks a paginated collection from page 1 until the metadata
// says the current page is the last one. A response without metadata is
// treated as a complete single page. The pages are concatenated in listing
// order.
func fetchPages[T any](ctx context.Context, c *Client, endpoint, path string, query url.Values) ([]T, error) {
	var out []T

	page := 1
	for {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.perPage))

		body, err := c.get(ctx, endpoint, path, q)
		if err != nil {
			return nil, err
		}

		var env envelope[T]
		if err := json.Unmarshal(body, &env); err != nil {
			preview := string(body)
			if len(preview) > 200 {
				preview = preview[:200] + "..."
			}
			c.logger.ErrorWithFields("failed to parse API response", map[string]interface{}{
				"path":         path,
				"page":         page,
				"error":        err.Error(),
				"body_preview": preview,
			})
			return nil, errs.Wrap(errs.ErrorTypeParsing, err, fmt.Sprintf("decode %s page %d", path, page))
		}

		out = append(out, env.Data...)

		if env.Meta == nil || env.Meta.CurrentPage >= env.Meta.LastPage {
			return out, nil
		}

		page = env.Meta.CurrentPage + 1
		if page > maxPages {
			return nil, errs.New(errs.ErrorTypeUnknown,
				fmt.Sprintf("pagination exceeded %d pages for %s", maxPages, path))
		}
	}
}
