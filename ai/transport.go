package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// PostJSON sends in as a JSON body to url and decodes a 2xx response into out.
// Transport failures, non-2xx statuses and undecodable bodies come back as *Error.
func PostJSON(ctx context.Context, hc *http.Client, provider Provider, url string, header http.Header, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return NewError(KindInvalidRequest, provider, "encoding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return NewError(KindConfiguration, provider, "building request", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return ClassifyTransport(ctx, provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ReadErrorResponse(provider, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ClassifyTransport(ctx, provider, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return NewError(KindParse, provider, fmt.Sprintf("decoding response %q", summarizeBody(string(body))), err)
	}
	return nil
}
