package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	tls "github.com/refraction-networking/utls"

	"github.com/use-agent/prospect/dom"
	"github.com/use-agent/prospect/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN pinned to
// http/1.1, so the server never negotiates h2 over a connection Go's
// http.Transport treats as h1. Computed once and reused per connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// StaticEngine fetches pages over plain HTTP with a Chrome TLS fingerprint.
// One base collector carries the transport; every fetch runs on a clone so
// callbacks never leak between requests.
type StaticEngine struct {
	base *colly.Collector
}

// NewStaticEngine builds the engine with the given default request timeout.
func NewStaticEngine(timeout time.Duration) *StaticEngine {
	c := colly.NewCollector(
		colly.UserAgent(chromeUA),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	c.WithTransport(&http.Transport{
		DialTLSContext:    dialChrome,
		ForceAttemptHTTP2: false,
	})
	return &StaticEngine{base: c}
}

func (e *StaticEngine) Name() string { return "static" }

func (e *StaticEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.base.Clone()
	if req.Timeout > 0 {
		c.SetRequestTimeout(req.Timeout)
	}

	var (
		result   *FetchResult
		fetchErr error
	)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})
	c.OnResponse(func(r *colly.Response) {
		status := r.StatusCode
		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusTooManyRequests:
			fetchErr = models.NewScrapeError(models.ErrCodeBlocked,
				fmt.Sprintf("HTTP %d from %s", status, req.URL), nil)
		case status >= 400:
			fetchErr = models.NewScrapeError(models.ErrCodeNavigation,
				fmt.Sprintf("HTTP %d from %s", status, req.URL), nil)
		case !htmlContentType(r.Headers.Get("Content-Type")):
			fetchErr = fmt.Errorf("static: non-HTML content type %q for %s",
				r.Headers.Get("Content-Type"), req.URL)
		default:
			result = &FetchResult{
				HTML:       string(r.Body),
				Title:      dom.Title(r.Body),
				StatusCode: status,
				FinalURL:   r.Request.URL.String(),
				Engine:     e.Name(),
			}
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = models.NewScrapeError(models.ErrCodeNavigation,
			"request failed for "+req.URL, err)
	})

	if err := c.Visit(req.URL); err != nil && fetchErr == nil && result == nil {
		fetchErr = models.NewScrapeError(models.ErrCodeNavigation,
			"request failed for "+req.URL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if result == nil {
		return nil, models.NewScrapeError(models.ErrCodeNavigation,
			"no response for "+req.URL, nil)
	}
	return result, nil
}

// dialChrome establishes a TLS connection with the pinned Chrome hello.
func dialChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("static: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

func htmlContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

var noscriptRe = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// NeedsBrowser reports whether statically fetched HTML likely depends on JS
// rendering: SPA shells, empty framework roots, noscript warnings, or a
// script-heavy page with almost no visible text.
func NeedsBrowser(rawHTML string) bool {
	text := dom.VisibleText([]byte(rawHTML))
	if len(text) < 200 {
		return true
	}
	lower := strings.ToLower(rawHTML)
	for _, root := range []string{`<div id="root"></div>`, `<div id="app"></div>`, `<div id="__next"></div>`} {
		if strings.Contains(lower, root) {
			return true
		}
	}
	if noscriptRe.MatchString(lower) {
		return true
	}
	return strings.Count(lower, "<script") > 10 && len(text) < 500
}
