// Package gateway implements the API gateway's forwarding logic: it
// authenticates inbound requests once, routes them to the owning
// upstream service and relays the response minus hop-by-hop headers.
package gateway

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// hop-by-hop headers never relayed from the upstream response.
var hopHeaders = []string{"Transfer-Encoding", "Content-Encoding", "Content-Length", "Connection"}

// Upstream is one backend service the gateway forwards to.
type Upstream struct {
	Name    string // used in error messages, e.g. "user"
	BaseURL string // e.g. http://localhost:8001
}

// Proxy forwards requests to upstream services over a shared HTTP
// client with a bounded timeout.
type Proxy struct {
	Client *http.Client
}

// NewProxy constructs a Proxy with a 30s upstream timeout.
func NewProxy() *Proxy {
	return &Proxy{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Forward returns an echo handler that relays the inbound request to
// the upstream, keeping method, path, query string and body intact.
// The Host header is dropped on the way in so the upstream sees its
// own host; hop-by-hop headers are dropped on the way out.  When the
// upstream cannot be reached the gateway answers 503 naming the
// upstream and the underlying error.
func (p *Proxy) Forward(up Upstream) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		target := strings.TrimRight(up.BaseURL, "/") + req.URL.Path
		if req.URL.RawQuery != "" {
			target += "?" + req.URL.RawQuery
		}

		out, err := http.NewRequestWithContext(req.Context(), req.Method, target, req.Body)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build upstream request failed"})
		}
		for k, vv := range req.Header {
			if strings.EqualFold(k, "Host") {
				continue
			}
			for _, v := range vv {
				out.Header.Add(k, v)
			}
		}

		resp, err := p.Client.Do(out)
		if err != nil {
			log.Printf("gateway: %s upstream unreachable: %v", up.Name, err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"error": up.Name + " service unavailable: " + err.Error(),
			})
		}
		defer resp.Body.Close()

		h := c.Response().Header()
		for k, vv := range resp.Header {
			if isHopHeader(k) {
				continue
			}
			for _, v := range vv {
				h.Add(k, v)
			}
		}
		c.Response().WriteHeader(resp.StatusCode)
		if _, err := io.Copy(c.Response(), resp.Body); err != nil {
			// Headers are already on the wire; nothing left to do but log.
			log.Printf("gateway: relay body from %s failed: %v", up.Name, err)
		}
		return nil
	}
}

func isHopHeader(name string) bool {
	for _, h := range hopHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}
