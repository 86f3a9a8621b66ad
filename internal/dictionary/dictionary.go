package dictionary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"telemarketing/internal/model"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Fetch downloads a data dictionary page.
func Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(b), nil
}

// ParsePlaybook reads feature descriptions from the table rows of a data
// dictionary page. The first cell is the feature id and the second its
// description; header rows and rows with an empty cell are skipped. A feature
// defined twice keeps the last description.
func ParsePlaybook(html string) (model.FeaturePlaybook, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	book := make(model.FeaturePlaybook)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		feature := collapse(cells.Eq(0).Text())
		desc := collapse(cells.Eq(1).Text())
		if feature == "" || desc == "" {
			return
		}
		book[feature] = desc
	})
	return book, nil
}

// Import fetches url and parses its playbook.
func Import(ctx context.Context, url string) (model.FeaturePlaybook, error) {
	html, err := Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParsePlaybook(html)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
