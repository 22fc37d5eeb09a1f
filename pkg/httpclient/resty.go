package httpclient

import (
	"context"
	"time"

	"credit-intelligence/pkg/logger"

	"github.com/go-resty/resty/v2"
)

type RestyClient struct {
	client *resty.Client
	log    *logger.Logger
}

func New(log *logger.Logger, baseURL string, timeout time.Duration, bearerToken string) HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if bearerToken != "" {
		client.SetAuthToken(bearerToken)
	}

	return &RestyClient{client: client, log: log}
}

// GET request with optional query params
func (rc *RestyClient) Get(ctx context.Context, endpoint string, queryParams map[string]string, headers map[string]string, result interface{}) (*BaseResponse, error) {
	req := rc.client.R().SetContext(ctx).SetResult(result)

	if queryParams != nil {
		req.SetQueryParams(queryParams)
	}

	if headers != nil {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(endpoint)
	return rc.toBaseResponse(ctx, "GET", endpoint, resp, err)
}

func (rc *RestyClient) toBaseResponse(ctx context.Context, method, endpoint string, resp *resty.Response, err error) (*BaseResponse, error) {
	if err != nil && rc.log != nil {
		rc.log.WarnContext(ctx, "HTTP request failed",
			logger.StringField("method", method),
			logger.StringField("endpoint", endpoint),
			logger.ErrorField(err))
	}
	if resp == nil {
		return &BaseResponse{}, err
	}
	return &BaseResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Headers:    resp.Header(),
	}, err
}
