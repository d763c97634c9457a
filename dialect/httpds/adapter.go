package httpds

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	subgraph "github.com/the-devoyage/subgraph-go"
)

// HTTPClient is the minimal surface the Execution Adapter needs, narrowed
// from *http.Client for testability — a fake satisfying this interface
// exercises the adapter without a live endpoint.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ HTTPClient = (*http.Client)(nil)

// Execute runs the compiled RequestPlan against client and returns the
// raw response body. Non-2xx responses and transport failures are wrapped
// as BackendError/BackendUnavailable per spec.md §7.
func Execute(ctx context.Context, client HTTPClient, plan *RequestPlan) ([]byte, error) {
	var body io.Reader
	if plan.Body != nil {
		encoded, err := json.Marshal(plan.Body)
		if err != nil {
			return nil, subgraph.NewBackendError("http", plan.Method, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, plan.Method, plan.URL, body)
	if err != nil {
		return nil, subgraph.NewBackendError("http", plan.Method, err)
	}
	for k, v := range plan.Headers {
		req.Header.Set(k, v)
	}
	if plan.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, subgraph.NewBackendUnavailableError("http", err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, subgraph.NewBackendError("http", plan.Method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, subgraph.NewBackendError("http", plan.Method, httpStatusError{resp.StatusCode})
	}
	return data, nil
}

type httpStatusError struct{ code int }

func (e httpStatusError) Error() string {
	return http.StatusText(e.code)
}
