package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// restTransport speaks the command-pipeline HTTP protocol of an
// Upstash-style REST key-value store: a batch POSTed to /pipeline as a
// JSON array of command arrays, or a single command POSTed to the root
// path. The store executes each batch server-side in order, atomically
// as a unit from the caller's perspective.
type restTransport struct {
	url    string
	token  string
	client *fasthttp.Client
}

func newRestTransport(url, token string) *restTransport {
	return &restTransport{
		url:    strings.TrimRight(url, "/"),
		token:  token,
		client: &fasthttp.Client{},
	}
}

// restResult is one per-command outcome in a pipeline response.
type restResult struct {
	Result any    `json:"result"`
	Error  string `json:"error"`
}

func (t *restTransport) Pipeline(ctx context.Context, cmds []Command) ([]any, error) {
	body, err := json.Marshal(cmds)
	if err != nil {
		return nil, err
	}

	respBody, err := t.post(t.url+"/pipeline", body, writeTimeout)
	if err != nil {
		return nil, err
	}

	var results []restResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, fmt.Errorf("decode pipeline response: %w", err)
	}

	out := make([]any, len(results))
	for i, r := range results {
		if r.Error != "" {
			return nil, fmt.Errorf("pipeline command %d: %s", i, r.Error)
		}
		out[i] = r.Result
	}
	return out, nil
}

func (t *restTransport) Read(ctx context.Context, cmd Command) (any, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}

	respBody, err := t.post(t.url, body, readTimeout)
	if err != nil {
		return nil, err
	}

	var result restResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode command response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("command failed: %s", result.Error)
	}
	return result.Result, nil
}

func (t *restTransport) post(url string, body []byte, timeout time.Duration) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.SetBody(body)

	if err := t.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("kv request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("kv request: status %d: %s", resp.StatusCode(), resp.Body())
	}

	// The response buffer is pooled; copy before release.
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}
