package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// PatchTransport rewrites outgoing completion requests: it sets extra
// headers and applies a JSON patch to JSON bodies.
type PatchTransport struct {
	next    http.RoundTripper
	patch   jsonpatch.Patch
	headers map[string]string
}

// BuildPatchTransport wraps next according to cfg. next is returned as is
// when cfg has neither a patch nor headers.
func BuildPatchTransport(next http.RoundTripper, cfg *PatchRequest) (http.RoundTripper, error) {
	if cfg == nil || (len(cfg.JSONPatch) == 0 && len(cfg.IncludeHeaders) == 0) {
		return next, nil
	}
	if next == nil {
		next = http.DefaultTransport
	}

	t := &PatchTransport{next: next, headers: cfg.IncludeHeaders}
	if len(cfg.JSONPatch) > 0 {
		ops, err := json.Marshal(cfg.JSONPatch)
		if err != nil {
			return nil, fmt.Errorf("marshaling JSON patch configuration: %w", err)
		}
		if t.patch, err = jsonpatch.DecodePatch(ops); err != nil {
			return nil, fmt.Errorf("decoding JSON patch: %w", err)
		}
	}
	return t, nil
}

// RoundTrip implements http.RoundTripper. The caller's request is cloned,
// never modified.
func (t *PatchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}
	if t.patch != nil && req.Body != nil && isJSON(req.Header.Get("Content-Type")) {
		if err := t.patchBody(req); err != nil {
			return nil, err
		}
	}
	return t.next.RoundTrip(req)
}

func (t *PatchTransport) patchBody(req *http.Request) error {
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return fmt.Errorf("reading request body: %w", err)
	}
	body, err = t.patch.Apply(body)
	if err != nil {
		return fmt.Errorf("applying JSON patch: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return nil
}

// isJSON treats a missing content type as JSON; the SDKs always send JSON.
func isJSON(contentType string) bool {
	return contentType == "" || strings.HasPrefix(contentType, "application/json")
}
