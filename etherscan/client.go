// Package etherscan fetches account transaction histories from an
// etherscan-compatible API.
package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// RawTransaction is one row of the account txlist response. Numeric fields
// arrive as decimal strings and are parsed downstream.
type RawTransaction struct {
	From          string `json:"from"`
	Value         string `json:"value"`
	TimeStamp     string `json:"timeStamp"`
	ReceiptStatus string `json:"txreceipt_status"`
	Input         string `json:"input"`
}

type txListResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"` // an array, or an error string on failures
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Page fetches one page of transactions sent to or from the given address,
// oldest first. A page shorter than pageSize means there are no further pages.
func (c *Client) Page(ctx context.Context, address string, page, pageSize int) ([]RawTransaction, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", address)
	params.Set("page", strconv.Itoa(page))
	params.Set("offset", strconv.Itoa(pageSize))
	params.Set("sort", "asc")
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching transactions page [%d] for [%s]", page, address)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Printf("Error closing body: %v", err)
		}
	}(response.Body)

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status [%s] fetching transactions for [%s]", response.Status, address)
	}

	var decoded txListResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "decoding response")
	}
	if decoded.Status != "1" {
		// past the last page the api reports "No transactions found"
		if decoded.Message == "No transactions found" {
			return []RawTransaction{}, nil
		}
		return nil, fmt.Errorf("api error fetching transactions for [%s]: %s", address, decoded.Message)
	}

	var transactions []RawTransaction
	if err := json.Unmarshal(decoded.Result, &transactions); err != nil {
		return nil, errors.Wrap(err, "decoding transaction list")
	}
	return transactions, nil
}
