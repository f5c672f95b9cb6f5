package openai

import (
	"net/http"

	"github.com/poiesic/secondbrain/ai"
)

// statusDoer is the HTTP client handed to langchaingo. It adds vendor
// headers and turns non-2xx responses into classified *ai.Error values.
type statusDoer struct {
	client   *http.Client
	provider ai.Provider
	headers  map[string]string
}

func (d *statusDoer) Do(req *http.Request) (*http.Response, error) {
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, ai.ClassifyTransport(req.Context(), d.provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, ai.ReadErrorResponse(d.provider, resp)
	}
	return resp, nil
}
