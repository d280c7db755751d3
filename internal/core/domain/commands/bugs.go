package commands

import (
	"context"
	"fmt"
	"strconv"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"golang.org/x/net/html"
)

const defaultBugsURL = "https://bugs.php.net/search.php?search_for=&boolean=0&limit=30&order_by=id&direction=DESC" +
	"&cmd=display&status=All&bug_type=All&project=PHP&php_os=&phpver=&cve_id=&assign=&author_email=&bug_age=0&bug_updated=0"

// BugSource feeds the polling monitor with the most recent entries of the
// php.net bug tracker, newest first. It registers no command endpoints.
type BugSource struct {
	fetcher port.Fetcher
	url     string
}

func NewBugSource(fetcher port.Fetcher, url string) *BugSource {
	if url == "" {
		url = defaultBugsURL
	}

	return &BugSource{fetcher: fetcher, url: url}
}

func (s *BugSource) GetName() string {
	return "phpbugs"
}

func (s *BugSource) Render(item domain.Item) string {
	return fmt.Sprintf("[tag:bug] #%d: %s – %s", item.ID, item.Title, item.URL)
}

func (s *BugSource) Fetch(ctx context.Context) ([]domain.Item, error) {
	res, err := s.fetcher.Request(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFetchFailed, err)
	}
	if res.Status != 200 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrFetchFailed, res.Status)
	}

	bugs, err := parseBugRows(res.Body)
	if err != nil {
		return nil, err
	}

	return bugs, nil
}

// parseBugRows reads the result table of the tracker's search page. Result
// rows carry a valign attribute; the first cell holds the numeric bug ID and
// the ninth the title.
func parseBugRows(body []byte) ([]domain.Item, error) {
	doc, err := parseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, err)
	}

	rows := findAll(doc, func(n *html.Node) bool {
		return isElement(n, "tr") && hasAttr(n, "valign")
	})

	var bugs []domain.Item
	for _, row := range rows {
		cells := findAll(row, func(n *html.Node) bool { return isElement(n, "td") })
		if len(cells) < 9 {
			continue
		}

		id, err := strconv.Atoi(textContent(cells[0]))
		if err != nil {
			continue
		}

		title := textContent(cells[8])
		if title == "" {
			title = "*none*"
		}

		bugs = append(bugs, domain.Item{
			ID:    id,
			Title: title,
			URL:   fmt.Sprintf("https://bugs.php.net/%d", id),
		})
	}

	if bugs == nil {
		return nil, fmt.Errorf("%w: no result rows found", domain.ErrMalformedResponse)
	}

	return bugs, nil
}
