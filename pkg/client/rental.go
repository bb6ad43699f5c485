package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "lockrent/pkg/errors"
	"lockrent/pkg/model"
)

const (
	DefaultUserIDHeader = "X-User-ID"
	IdempotencyHeader   = "Idempotency-Key"
)

// RentalClient calls the rental HTTP API on behalf of an authenticated user.
// Error responses are returned as *apperrors.AppError.
type RentalClient struct {
	httpClient   *HttpClient
	userIDHeader string
}

func NewRentalClient(baseURL string) *RentalClient {
	return &RentalClient{
		httpClient:   NewHttpClient(baseURL),
		userIDHeader: DefaultUserIDHeader,
	}
}

func (c *RentalClient) WithUserIDHeader(header string) *RentalClient {
	c.userIDHeader = header
	return c
}

func (c *RentalClient) HTTP() *HttpClient {
	return c.httpClient
}

func lockPath(lockID, action string) string {
	return "/api/v1/locks/" + url.PathEscape(lockID) + "/" + action
}

// EndRental ends userID's rental of lockID. A non-empty idempotencyKey makes
// a repeated call return the first successful response.
func (c *RentalClient) EndRental(ctx context.Context, userID, lockID, idempotencyKey string) (*model.EndRentalResult, error) {
	headers := map[string]string{c.userIDHeader: userID}
	if idempotencyKey != "" {
		headers[IdempotencyHeader] = idempotencyKey
	}

	resp, err := c.httpClient.POST(ctx, lockPath(lockID, "end-rental"), nil, headers)
	if err != nil {
		return nil, err
	}

	var result model.EndRentalResult
	if err := decodeData(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RentalClient) GetLockStatus(ctx context.Context, userID, lockID string) (model.LockStatus, error) {
	resp, err := c.httpClient.GET(ctx, lockPath(lockID, "status"), map[string]string{c.userIDHeader: userID})
	if err != nil {
		return model.LockNotHeld, err
	}

	var status model.LockStatusResponse
	if err := decodeData(resp, &status); err != nil {
		return model.LockNotHeld, err
	}
	return status.Status, nil
}

func (c *RentalClient) ListRentals(ctx context.Context, userID string, limit int, offset int64) (*model.RentalHistory, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.FormatInt(offset, 10))

	resp, err := c.httpClient.GET(ctx, "/api/v1/rentals?"+q.Encode(), map[string]string{c.userIDHeader: userID})
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var page struct {
		Data       []*model.Rental `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}
	if err := resp.DecodeJSON(&page); err != nil {
		return nil, fmt.Errorf("could not decode rental page: %w", err)
	}
	return &model.RentalHistory{
		Rentals: page.Data,
		Total:   page.TotalCount,
		Limit:   page.Limit,
		Offset:  page.Offset,
	}, nil
}

func (c *RentalClient) RetireLock(ctx context.Context, lockID string) (string, error) {
	resp, err := c.httpClient.POST(ctx, lockPath(lockID, "retire"), nil, nil)
	if err != nil {
		return "", err
	}

	var retired model.RetireLockResponse
	if err := decodeData(resp, &retired); err != nil {
		return "", err
	}
	return retired.Mode, nil
}

func decodeData(resp *Response, target any) error {
	if err := checkStatus(resp); err != nil {
		return err
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper: %w", err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data: %w", err)
	}
	return nil
}

// checkStatus turns a non-2xx response into an AppError carrying the
// server's code and retryable flag.
func checkStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var envelope struct {
		Error apperrors.ErrorResponse `json:"error"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil || envelope.Error.Code == "" {
		return apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("unexpected response: %s", http.StatusText(resp.StatusCode)), resp.StatusCode)
	}

	appErr := apperrors.New(envelope.Error.Code, envelope.Error.Message, resp.StatusCode)
	appErr.Retryable = envelope.Error.Retryable
	appErr.Details = envelope.Error.Details
	return appErr
}
