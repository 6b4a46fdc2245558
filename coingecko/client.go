// Package coingecko fetches the current ETH/USD price.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const pricePath = "/api/v3/simple/price?ids=ethereum&vs_currencies=usd"

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

func (c *Client) EthPrice(ctx context.Context) (float64, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pricePath, nil)
	if err != nil {
		return 0, errors.Wrap(err, "creating request")
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, errors.Wrap(err, "fetching eth price")
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Printf("Error closing body: %v", err)
		}
	}(response.Body)

	if response.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status [%s] fetching eth price", response.Status)
	}

	var decoded struct {
		Ethereum struct {
			Usd float64 `json:"usd"`
		} `json:"ethereum"`
	}
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return 0, errors.Wrap(err, "decoding response")
	}
	return decoded.Ethereum.Usd, nil
}
