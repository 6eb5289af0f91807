package publisher

import (
	"net/http"
	"time"
)

// defaultTimeout bounds every outbound platform call so a hung downstream
// API cannot stall a dispatch cycle.
const defaultTimeout = 60 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}
