package probe

import (
	"net/http"
	"time"

	"github.com/ankityadav/sitewatch/internal/config"
)

// Gate answers whether this host has connectivity at all, so a local
// outage does not get recorded as every site going down at once.
type Gate struct {
	client *http.Client
	url    string
}

func NewGate() *Gate {
	return &Gate{
		client: &http.Client{
			Timeout: config.GateTimeout * time.Second,
		},
		url: config.GateURL,
	}
}

// Available issues a HEAD request against a known-stable endpoint and
// reports whether it completed. The status code is not inspected; any
// answer at all means the network is there.
func (g *Gate) Available() bool {
	req, err := http.NewRequest("HEAD", g.url, nil)
	if err != nil {
		return false
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
