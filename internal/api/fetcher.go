// Package api holds the HTTP clients for the two telemetry sources.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/solacq/solacq/internal/dtu"
	"github.com/solacq/solacq/internal/models"
)

var (
	ErrSourceRequest = errors.New("error requesting telemetry source")
	ErrSourceStatus  = errors.New("error status from telemetry source")
)

const requestTimeout = 30 * time.Second

// DTUClient fetches live field records from the inverter gateway.
type DTUClient struct {
	baseURL string
	limiter *rate.Limiter
}

// NewDTUClient creates a gateway client. The limiter caps outgoing
// requests so rescheduled cycles cannot hammer the device; nil disables
// limiting.
func NewDTUClient(baseURL string, limiter *rate.Limiter) *DTUClient {
	return &DTUClient{baseURL: baseURL, limiter: limiter}
}

// FetchRecordLive performs one blocking GET of /api/record/live and
// decodes the payload. A response that does not match the expected
// shape is malformed inverter data.
func (c *DTUClient) FetchRecordLive(ctx context.Context) (models.RecordLive, error) {
	body, err := get(ctx, fmt.Sprintf("%s/api/record/live", c.baseURL), c.limiter)
	if err != nil {
		return models.RecordLive{}, err
	}

	var rec models.RecordLive
	if err := json.Unmarshal(body, &rec); err != nil {
		return models.RecordLive{}, fmt.Errorf("%w: failed to decode record payload: %v",
			dtu.ErrMalformedInverterData, err)
	}
	return rec, nil
}

// MeterClient fetches the power meter's status payload.
type MeterClient struct {
	baseURL string
	limiter *rate.Limiter
}

func NewMeterClient(baseURL string, limiter *rate.Limiter) *MeterClient {
	return &MeterClient{baseURL: baseURL, limiter: limiter}
}

// FetchStatus performs one blocking GET of the meter status command and
// returns the raw body for normalization.
func (c *MeterClient) FetchStatus(ctx context.Context) ([]byte, error) {
	return get(ctx, fmt.Sprintf("%s/cm?cmnd=Status%%2010", c.baseURL), c.limiter)
}

func get(ctx context.Context, url string, limiter *rate.Limiter) ([]byte, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceRequest, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRequest, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: got %d from %s", ErrSourceStatus, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRequest, err)
	}
	return body, nil
}
