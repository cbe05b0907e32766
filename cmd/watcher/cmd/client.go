package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/onflow/icq-watcher/engine/watcher/rest/common"
	"github.com/onflow/icq-watcher/model/icq"
)

const apiTimeout = 30 * time.Second

var flagAPIURL string

func addAPIFlags(flags *pflag.FlagSet) {
	flags.StringVar(&flagAPIURL, "api-url", "http://localhost:8070", "base URL of the watcher REST API")
}

// callAPI sends a request to the REST API of a running node and returns the
// response body. Error responses are returned as errors.
func callAPI(ctx context.Context, method string, path string, body interface{}) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := icq.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("could not encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	url := strings.TrimSuffix(flagAPIURL, "/") + "/v1" + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var modelErr common.ModelError
		if icq.Unmarshal(data, &modelErr) == nil && modelErr.Message != "" {
			return nil, fmt.Errorf("request failed (%d): %s", modelErr.Code, modelErr.Message)
		}
		return nil, fmt.Errorf("request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
