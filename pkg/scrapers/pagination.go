package scrapers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
)

// minAjaxFragmentLen guards against "empty page" responses that still carry
// wrapper markup.
const minAjaxFragmentLen = 50

// collectPaginated fetches the main listing page, then walks the ajax
// pagination endpoint until a page fails or the page cap is reached. A failed
// first listing yields zero candidates; a failed later page stops pagination.
func (b *base) collectPaginated(ctx context.Context, extract func(string) []domain.RawCandidate) []domain.RawCandidate {
	var all []domain.RawCandidate

	if html, ok := b.httpGet(ctx, b.opts.Client, b.cfg.ListURL, nil); ok {
		all = append(all, extract(html)...)
	}

	for page := 1; page < b.opts.MaxPages; page++ {
		offset := page * b.opts.NewsPerPage
		html, ok := b.fetchAjaxPage(ctx, offset, b.opts.NewsPerPage)
		if !ok {
			break
		}
		all = append(all, extract(html)...)
		b.sleep(ctx, b.opts.RequestDelay)
	}

	return all
}

// fetchAjaxPage requests one pagination fragment from the site's ajax
// endpoint and unwraps the HTML payload.
func (b *base) fetchAjaxPage(ctx context.Context, offset, limit int) (string, bool) {
	if b.cfg.AjaxURL == "" {
		return "", false
	}

	params := map[string]string{
		"offset":   strconv.Itoa(offset),
		"limit":    strconv.Itoa(limit),
		"catid":    "0",
		"model":    `TE\Blog\Models\Headlines`,
		"template": "theme.flow::views.ajax-template.all-headline",
	}
	extra := map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "application/json",
	}

	body, ok := b.httpGetWithParams(ctx, b.opts.Client, b.cfg.AjaxURL, params, extra)
	if !ok {
		return "", false
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return "", false
	}

	html, _ := payload["data"].(string)
	if html == "" {
		html, _ = payload["html"].(string)
	}
	if len(html) <= minAjaxFragmentLen {
		return "", false
	}
	return html, true
}
