package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
)

// Node is a probe target with a swappable health result, for tests.
type Node struct {
	HealthyMock atomic.Pointer[error]
}

func (n *Node) Healthy(context.Context) error {
	err := n.HealthyMock.Load()
	if err != nil {
		return *err
	}
	return nil
}

func TestRequest(ts *httptest.Server, method, path string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header = http.Header{
			"Content-Type": {"application/json"},
		}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	return resp, respBody, nil
}
