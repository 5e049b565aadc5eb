// Package capture fetches rendered page snapshots over HTTP. The host page
// is rendered and geometry-annotated elsewhere (headless browser tooling);
// this client only pulls the resulting document and parses it into a
// domtree.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"offerscope-backend/lib/domtree"
	"offerscope-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

type Client struct {
	http *resty.Client
}

func NewClient() (*Client, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "offerscope.capture")

	return &Client{http: client}, nil
}

// FetchSnapshot downloads the snapshot at url and parses it.
func (c *Client) FetchSnapshot(ctx context.Context, url string) (domtree.Node, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() >= 400 {
		return nil, fmt.Errorf("fetch snapshot: unexpected status %s", res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: parse html: %w", err)
	}
	return domtree.FromDocument(doc), nil
}
