package commands

import (
	"context"
	"testing"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"

	"github.com/stretchr/testify/assert"
)

const bugsPage = `<html><body><table>
<tr><td>Id</td><td>Date</td><td>Last Modified</td><td>Type</td><td>Status</td>
<td>PHP Version</td><td>OS</td><td>Assigned</td><td>Summary</td></tr>
<tr valign="top"><td><a href="/81112">81112</a></td><td>d</td><td>d</td><td>Bug</td><td>Open</td>
<td>8.1</td><td>Linux</td><td></td><td>Segfault in foo</td></tr>
<tr valign="top"><td><a href="/81111">81111</a></td><td>d</td><td>d</td><td>Bug</td><td>Open</td>
<td>8.1</td><td>Linux</td><td></td><td></td></tr>
</table></body></html>`

func TestBugSourceFetch(t *testing.T) {
	fetcher := &fakeFetcher{responses: map[string]*port.Response{
		defaultBugsURL: jsonResponse(200, bugsPage),
	}}

	source := NewBugSource(fetcher, "")

	items, err := source.Fetch(context.Background())
	assert.NoError(t, err)

	// header row has no valign attribute and is skipped
	assert.Equal(t, []domain.Item{
		{ID: 81112, Title: "Segfault in foo", URL: "https://bugs.php.net/81112"},
		{ID: 81111, Title: "*none*", URL: "https://bugs.php.net/81111"},
	}, items)
}

func TestBugSourceFetchFailures(t *testing.T) {
	type TestCase struct {
		description string
		responses   map[string]*port.Response
	}

	testCases := []TestCase{
		{
			description: "transport error",
			responses:   nil,
		},
		{
			description: "non-200 status",
			responses: map[string]*port.Response{
				defaultBugsURL: jsonResponse(500, ""),
			},
		},
		{
			description: "page without result rows",
			responses: map[string]*port.Response{
				defaultBugsURL: jsonResponse(200, "<html><body>maintenance</body></html>"),
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			source := NewBugSource(&fakeFetcher{responses: testCase.responses}, "")

			items, err := source.Fetch(context.Background())
			assert.Error(t, err)
			assert.Nil(t, items)
		})
	}
}

func TestBugSourceRender(t *testing.T) {
	source := NewBugSource(&fakeFetcher{}, "")

	assert.Equal(t,
		"[tag:bug] #81112: Segfault in foo – https://bugs.php.net/81112",
		source.Render(domain.Item{ID: 81112, Title: "Segfault in foo", URL: "https://bugs.php.net/81112"}))
}
