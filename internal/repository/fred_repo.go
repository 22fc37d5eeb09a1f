package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"credit-intelligence/config"
	"credit-intelligence/internal/dto"
	"credit-intelligence/pkg/httpclient"
	"credit-intelligence/pkg/logger"
	"credit-intelligence/pkg/ratelimit"
)

var ErrNoObservation = errors.New("no observation available")

const fredObservationLookback = 10

type FREDRepository interface {
	// LatestObservation returns the most recent non-missing observation of a series.
	LatestObservation(ctx context.Context, seriesID string) (*dto.FREDObservation, error)
}

type fredRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *ratelimit.TokenLimiter
}

func NewFREDRepository(cfg *config.Config, log *logger.Logger) FREDRepository {
	perMinute := cfg.FRED.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	return newFREDRepository(cfg, log, httpclient.New(log, cfg.FRED.BaseURL, cfg.FRED.Timeout, ""), perMinute)
}

func newFREDRepository(cfg *config.Config, log *logger.Logger, client httpclient.HTTPClient, perMinute int) *fredRepository {
	return &fredRepository{
		httpClient:     client,
		cfg:            cfg,
		logger:         log,
		requestLimiter: ratelimit.NewTokenLimiter(perMinute),
	}
}

func (r *fredRepository) LatestObservation(ctx context.Context, seriesID string) (*dto.FREDObservation, error) {
	if r.requestLimiter.GetRemaining() == 0 {
		r.logger.DebugContext(ctx, "FRED request limit reached, waiting",
			logger.IntField("max_request_per_minute", r.cfg.FRED.MaxRequestPerMinute))
	}
	if err := r.requestLimiter.Wait(ctx, 1); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"series_id":  seriesID,
		"api_key":    r.cfg.FRED.APIKey,
		"file_type":  "json",
		"sort_order": "desc",
		"limit":      strconv.Itoa(fredObservationLookback),
	}

	var fredResp dto.FREDObservationsResponse
	resp, err := r.httpClient.Get(ctx, "/series/observations", queryParams, nil, &fredResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch FRED series %s: %w", seriesID, err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "FRED API returned Non-OK status",
			logger.StringField("series_id", seriesID),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("fred api returned status %d for series %s", resp.StatusCode, seriesID)
	}
	if fredResp.ErrorMessage != "" {
		return nil, fmt.Errorf("fred api error for series %s: %s", seriesID, fredResp.ErrorMessage)
	}

	for _, obs := range fredResp.Observations {
		if obs.Value == dto.FREDMissingValue || obs.Value == "" {
			continue
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping unparsable FRED value",
				logger.StringField("series_id", seriesID),
				logger.StringField("value", obs.Value))
			continue
		}
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid FRED observation date %q: %w", obs.Date, err)
		}
		return &dto.FREDObservation{SeriesID: seriesID, Date: date, Value: value}, nil
	}
	return nil, fmt.Errorf("series %s: %w", seriesID, ErrNoObservation)
}
