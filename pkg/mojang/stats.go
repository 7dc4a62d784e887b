package mojang

import (
	"context"
	"fmt"
	"net/http"

	"github.com/steviee/nidhogg/internal/transport"
	"github.com/steviee/nidhogg/pkg/apierr"
	"github.com/steviee/nidhogg/pkg/data"
)

// StatisticsRequest is the body of POST /orders/statistics.
type StatisticsRequest struct {
	MetricKeys []data.MetricKey `json:"metricKeys"`
}

// GetSaleStatistics returns the sales summed over keys.
func (c *Client) GetSaleStatistics(ctx context.Context, keys []data.MetricKey) (*data.SaleMetrics, error) {
	if len(keys) == 0 {
		return nil, apierr.InvalidArgument("at least one metric key is required")
	}

	var metrics data.SaleMetrics
	_, err := c.callJSON(ctx, transport.Request{
		Method:  http.MethodPost,
		BaseURL: c.apiBaseURL,
		Path:    endpointStatistics.Expand(),
	}, StatisticsRequest{MetricKeys: keys}, &metrics)
	if err != nil {
		return nil, fmt.Errorf("sale statistics: %w", err)
	}
	return &metrics, nil
}
