package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"parkspot/pkg/model"
)

const (
	bookingsPath = "/api/bookings"
	readyWait    = 30 * time.Second
)

// BookingClient calls the bookings API as one authenticated user.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL, token string) *BookingClient {
	httpClient := NewHttpClient(baseURL)
	if token != "" {
		httpClient = httpClient.WithBearerToken(token)
	}
	return &BookingClient{httpClient: httpClient}
}

func (c *BookingClient) Create(ctx context.Context, req model.CreateBookingRequest) (*Response, error) {
	return c.httpClient.POST(ctx, bookingsPath, req, nil)
}

// CreateIdempotent sends key in the Idempotency-Key header.
func (c *BookingClient) CreateIdempotent(ctx context.Context, req model.CreateBookingRequest, key string) (*Response, error) {
	return c.httpClient.POST(ctx, bookingsPath, req, map[string]string{"Idempotency-Key": key})
}

func (c *BookingClient) CreateRaw(ctx context.Context, rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw(ctx, bookingsPath, rawBody)
}

func (c *BookingClient) ListMine(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, bookingsPath+"/me")
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, bookingsPath+"/"+url.PathEscape(id))
}

func (c *BookingClient) Cancel(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.PUT(ctx, bookingsPath+"/"+url.PathEscape(id)+"/cancel", nil)
}

func (c *BookingClient) SpotSlots(ctx context.Context, spotID string) (*Response, error) {
	return c.httpClient.GET(ctx, bookingsPath+"/spot/"+url.PathEscape(spotID))
}

func (c *BookingClient) WaitForReady(ctx context.Context) error {
	return c.httpClient.WaitForReady(ctx, readyWait)
}

func DecodeBooking(resp *Response, want int) (*model.Booking, error) {
	var booking model.Booking
	if err := decodeExpect(resp, want, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func DecodeBookingDetails(resp *Response) (*model.BookingDetails, error) {
	var details model.BookingDetails
	if err := decodeExpect(resp, http.StatusOK, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func DecodeBookingList(resp *Response) ([]*model.BookingDetails, error) {
	var list []*model.BookingDetails
	if err := decodeExpect(resp, http.StatusOK, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func DecodeSpotSlots(resp *Response) (*model.SpotSlots, error) {
	var slots model.SpotSlots
	if err := decodeExpect(resp, http.StatusOK, &slots); err != nil {
		return nil, err
	}
	return &slots, nil
}

func decodeExpect(resp *Response, want int, target any) error {
	if resp.StatusCode != want {
		return fmt.Errorf("unexpected response %s, want status %d", resp, want)
	}
	if err := resp.DecodeJSON(target); err != nil {
		return fmt.Errorf("could not decode response %s: %w", resp, err)
	}
	return nil
}
