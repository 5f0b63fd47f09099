package probe

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ankityadav/sitewatch/internal/config"
)

// Result is the outcome of a single reachability check.
type Result struct {
	Up     bool
	Reason string
}

type Prober struct {
	client *http.Client
}

func NewProber() *Prober {
	return &Prober{
		client: &http.Client{
			Timeout: config.ProbeTimeout * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= config.MaxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Probe issues one GET against the URL and classifies the outcome.
// Anything in [200,400) counts as up; transport failures and error
// statuses are down with a reason. One attempt, no retries.
func (p *Prober) Probe(url string) Result {
	req, err := http.NewRequest("GET", NormalizeURL(url), nil)
	if err != nil {
		return Result{Up: false, Reason: err.Error()}
	}

	req.Header.Set("User-Agent", "Sitewatch/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Up: false, Reason: "No response received"}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return Result{Up: true}
	}
	return Result{Up: false, Reason: fmt.Sprintf("Status %d", resp.StatusCode)}
}

// NormalizeURL prepends http:// when no scheme was given. The stored
// URL is left as the user typed it.
func NormalizeURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "http://" + url
}
