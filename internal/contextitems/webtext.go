// ABOUTME: Fetches a URL and reduces its HTML to readable text for context items
// ABOUTME: Non-content elements are skipped; headings and lists keep light markdown

package contextitems

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

const maxFetchBytes = 2 * 1024 * 1024

// FetchURL retrieves url and returns a readable-text rendering of the
// page for inclusion in a context note.
func FetchURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "tern/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return ExtractText(string(body)), nil
}

// ExtractText reduces an HTML document to readable text.
func ExtractText(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	var b strings.Builder
	walkReadable(doc, &b)
	return strings.TrimSpace(b.String())
}

func walkReadable(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "nav", "footer", "header", "iframe", "noscript":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n# ")
		case "p", "div", "section", "article":
			b.WriteString("\n")
		case "br":
			b.WriteString("\n")
		case "li":
			b.WriteString("\n- ")
		}
	}

	if n.Type == html.TextNode {
		text := strings.Join(strings.Fields(n.Data), " ")
		if text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkReadable(c, b)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6", "li":
			b.WriteString("\n")
		}
	}
}
