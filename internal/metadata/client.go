package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muldr/camscan/internal/logging"
)

const soapContentType = "application/soap+xml; charset=utf-8"

// Client posts SOAP envelopes to device service endpoints over plain HTTP.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient returns a Client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.GetLogger().Named("soap"),
	}
}

// Post sends envelope to serviceURL and returns the response body. A non-2xx
// status is an error; the body is still drained so the connection can be
// reused.
func (c *Client) Post(ctx context.Context, serviceURL, envelope string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serviceURL, strings.NewReader(envelope))
	if err != nil {
		return "", NewNetworkError(fmt.Sprintf("building request for %s", serviceURL), err)
	}
	req.Header.Set("Content-Type", soapContentType)

	c.logger.Debug("posting SOAP request",
		zap.String("url", serviceURL),
		zap.Int("bytes", len(envelope)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", NewNetworkError(fmt.Sprintf("posting to %s", serviceURL), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewNetworkError(fmt.Sprintf("reading response from %s", serviceURL), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("SOAP request rejected",
			zap.String("url", serviceURL),
			zap.Int("status", resp.StatusCode))
		return "", NewHTTPError(resp.StatusCode,
			fmt.Sprintf("%s returned %d %s", serviceURL, resp.StatusCode, statusText(resp.StatusCode)))
	}

	return string(body), nil
}
