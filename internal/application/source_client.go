package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/answerbench/answerbench/internal/config"
)

// sourceOutcome is one source's settled fetch result. Every fetch
// produces exactly one outcome; transport failures and non-2xx
// responses are captured here instead of propagating as errors, so one
// source's trouble can never cancel or discard a sibling's result.
type sourceOutcome struct {
	// payload holds the raw upstream body on success, or a synthetic
	// failure payload carrying the failure reason as its summary.
	payload []byte
	// latency spans dispatch to fully-read response body.
	latency time.Duration
	failed  bool
	// message is the failure reason when failed is set.
	message string
}

// sourceFetcher issues the per-source HTTP calls. A single http.Client
// (with the configured transport timeout) is shared across all sources
// and queries.
type sourceFetcher struct {
	client *http.Client
	log    *logrus.Entry
}

func newSourceFetcher(timeout time.Duration, log *logrus.Entry) *sourceFetcher {
	return &sourceFetcher{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// fetch posts the query to one source and settles its outcome. The
// latency clock starts at dispatch and stops only once the response
// body has been read to EOF, so slow trailing bytes are charged to the
// source that sent them.
func (f *sourceFetcher) fetch(ctx context.Context, src config.Source, query string) sourceOutcome {
	start := time.Now()
	body, err := f.post(ctx, src, query)
	latency := time.Since(start)

	if err != nil {
		f.log.WithFields(logrus.Fields{
			"source":     src.Label,
			"latency_ms": latency.Milliseconds(),
		}).WithError(err).Warn("source request failed")
		return sourceOutcome{
			payload: syntheticPayload(err.Error()),
			latency: latency,
			failed:  true,
			message: err.Error(),
		}
	}

	f.log.WithFields(logrus.Fields{
		"source":     src.Label,
		"latency_ms": latency.Milliseconds(),
		"body_bytes": len(body),
	}).Debug("source replied")
	return sourceOutcome{payload: body, latency: latency}
}

// post sends {"query": ...} to the source and returns the fully-read
// response body. Non-2xx statuses are errors whose message comes from
// the body's detail or error field when one is present.
func (f *sourceFetcher) post(ctx context.Context, src config.Source, query string) ([]byte, error) {
	reqBody, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, src.URL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if src.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+src.APIKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.New(upstreamErrorMessage(body, resp.StatusCode))
	}

	return body, nil
}

// upstreamErrorMessage extracts a human-readable failure reason from a
// non-2xx response body. Upstreams conventionally report errors under a
// detail or error string field; anything else gets a generic marker.
func upstreamErrorMessage(body []byte, statusCode int) string {
	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		for _, field := range []string{"detail", "error"} {
			if v := doc.Get(field); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	return fmt.Sprintf("source returned HTTP %d", statusCode)
}

// syntheticPayload wraps a failure reason in the minimal answer shape,
// so failed sources flow through normalization, scoring, and rendering
// exactly like healthy ones.
func syntheticPayload(message string) []byte {
	payload, err := json.Marshal(map[string]string{
		"output_type": "text",
		"summary":     message,
	})
	if err != nil {
		// Marshaling a map of strings cannot fail; keep the degenerate
		// path total anyway.
		return []byte(`{"output_type":"text","summary":"source request failed"}`)
	}
	return payload
}
