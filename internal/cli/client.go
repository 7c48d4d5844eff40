package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kroma-network/zkvm-common/internal/httpx"
	"github.com/kroma-network/zkvm-common/internal/ident"
)

const (
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// apiClient is a thin HTTP client for the witnessd API. Transport
// failures and retryable statuses go through httpx's retry loop.
type apiClient struct {
	base  string
	token string
	hc    *http.Client
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func newClient(cmd *cobra.Command) (*apiClient, error) {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return nil, err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	token, err := cmd.Flags().GetString("token")
	if err != nil {
		return nil, err
	}
	return &apiClient{
		base:  strings.TrimRight(addr, "/"),
		token: token,
		hc:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *apiClient) witnessURL(l2, l1 ident.Hash) string {
	return fmt.Sprintf("%s/api/witness/%s/%s", c.base, l2, l1)
}

func (c *apiClient) do(method, url string, body []byte) (*response, error) {
	build := func() (*http.Request, error) {
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequest(method, url, reqBody)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		return req, nil
	}

	res, err := httpx.Do(c.hc, build, retryAttempts, retryDelay)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return &response{status: res.StatusCode, header: res.Header, body: data}, nil
}

// apiError turns a non-2xx response into an error, preferring the
// structured envelope the service emits over the raw body.
func apiError(resp *response) error {
	var envelope struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.body, &envelope); err != nil || envelope.Error.Code == "" {
		return fmt.Errorf("server returned %d: %s", resp.status, strings.TrimSpace(string(resp.body)))
	}
	return fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
}

func printJSON(w io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, werr := fmt.Fprintln(w, string(data))
		return werr
	}
	_, err := fmt.Fprintln(w, buf.String())
	return err
}
