package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cortexcart/cortexcart-api/internal/transfer"
)

// ErrUnknownPlatform marks a post whose platform tag has no registered
// publisher. Recorded without any network call.
var ErrUnknownPlatform = errors.New("Unknown platform")

// UpstreamError carries the target platform's own rejection message
// verbatim so failures are debuggable from the dispatch log alone.
type UpstreamError struct {
	Platform   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s rejected the request (status %d): %s", e.Platform, e.StatusCode, e.Message)
}

// decodeGraphError turns a non-2xx Graph API response into an
// UpstreamError, falling back to the raw body when the envelope does not
// parse.
func decodeGraphError(platform string, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading error response: %w", err)
	}

	var graphErr transfer.GraphError
	if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
		return &UpstreamError{Platform: platform, StatusCode: resp.StatusCode, Message: graphErr.Error.Message}
	}

	return &UpstreamError{Platform: platform, StatusCode: resp.StatusCode, Message: string(body)}
}
