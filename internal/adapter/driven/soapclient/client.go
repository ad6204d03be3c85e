// Package soapclient is a typed client for the order service, used by the
// client stub binary and by end-to-end tests.
package soapclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/soapmock/internal/soap"
)

// ErrUnauthorized is returned when the service rejects the configured credentials.
var ErrUnauthorized = errors.New("soap service rejected credentials")

// DefaultNamespace is the service namespace assumed until FetchWSDL reads the WSDL.
const DefaultNamespace = "http://example.com/order"

const prefix = "ord"

// Client calls the order service over HTTP with Basic credentials.
type Client struct {
	http      *http.Client
	wsdlHTTP  *http.Client
	endpoint  string
	namespace string
	username  string
	password  string
	logger    *slog.Logger
}

// OrderDetail is the queryStatus answer in detail mode.
type OrderDetail struct {
	ID          int64
	Description string
}

// NewClient creates a Client for endpoint. WSDL fetches go through an
// in-memory HTTP cache so repeated discovery honours the server's
// Cache-Control header.
func NewClient(endpoint, username, password string, logger *slog.Logger) *Client {
	return NewClientWithHTTPClient(&http.Client{Timeout: 30 * time.Second}, endpoint, username, password, logger)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client. The
// WSDL cache wraps httpClient's transport.
func NewClientWithHTTPClient(httpClient *http.Client, endpoint, username, password string, logger *slog.Logger) *Client {
	cache := httpcache.NewMemoryCacheTransport()
	cache.Transport = httpClient.Transport

	return &Client{
		http:      httpClient,
		wsdlHTTP:  &http.Client{Transport: cache, Timeout: httpClient.Timeout},
		endpoint:  endpoint,
		namespace: DefaultNamespace,
		username:  username,
		password:  password,
		logger:    logger,
	}
}

// FetchWSDL fetches and parses the WSDL, adopting the namespace it declares.
func (c *Client) FetchWSDL(ctx context.Context) (*soap.Description, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?wsdl", nil)
	if err != nil {
		return nil, fmt.Errorf("build wsdl request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.wsdlHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch wsdl: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch wsdl: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read wsdl: %w", err)
	}

	desc, err := soap.ParseWSDL(data)
	if err != nil {
		return nil, err
	}
	if desc.Namespace != "" {
		c.namespace = desc.Namespace
	}

	c.logger.Debug("wsdl loaded",
		"service", desc.Name,
		"operations", desc.Operations,
		"from_cache", resp.Header.Get(httpcache.XFromCache) == "1",
	)
	return desc, nil
}

// CreateOrder creates an order and returns its id.
func (c *Client) CreateOrder(ctx context.Context, description string) (int64, error) {
	values, err := c.call(ctx, "createOrder", []soap.Value{{Name: "description", Data: description}})
	if err != nil {
		return 0, err
	}
	return intField(values, "orderId")
}

// QueryStatus returns the status string of an order. It requires the
// server to run in status mode.
func (c *Client) QueryStatus(ctx context.Context, id int64) (string, error) {
	values, err := c.call(ctx, "queryStatus", idParam(id))
	if err != nil {
		return "", err
	}
	return field(values, "status")
}

// QueryOrder returns the id and description of an order. It requires the
// server to run in detail mode.
func (c *Client) QueryOrder(ctx context.Context, id int64) (OrderDetail, error) {
	values, err := c.call(ctx, "queryStatus", idParam(id))
	if err != nil {
		return OrderDetail{}, err
	}
	gotID, err := intField(values, "orderId")
	if err != nil {
		return OrderDetail{}, err
	}
	desc, err := field(values, "description")
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{ID: gotID, Description: desc}, nil
}

// CancelOrder cancels an order and reports whether it existed.
func (c *Client) CancelOrder(ctx context.Context, id int64) (bool, error) {
	values, err := c.call(ctx, "cancelOrder", idParam(id))
	if err != nil {
		return false, err
	}
	raw, err := field(values, "success")
	if err != nil {
		return false, err
	}
	ok, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse success %q: %w", raw, err)
	}
	return ok, nil
}

// ListOrders returns the textual order listing.
func (c *Client) ListOrders(ctx context.Context) (string, error) {
	values, err := c.call(ctx, "listOrders", nil)
	if err != nil {
		return "", err
	}
	return field(values, "orders")
}

// call posts one operation and decodes its response. Faults come back as
// *soap.Fault errors.
func (c *Client) call(ctx context.Context, op string, params []soap.Value) ([]soap.Value, error) {
	body, err := soap.MarshalCall(c.namespace, prefix, op, params)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", op, err)
	}
	c.logger.Debug("soap request", "operation", op, "xml", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"`+c.namespace+"/"+op+`"`)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	c.logger.Debug("soap response", "operation", op, "status", resp.StatusCode, "xml", string(respBody))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusInternalServerError:
		// Both may carry a fault envelope.
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	values, err := soap.DecodeResponse(bytes.NewReader(respBody), op)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}
	return values, nil
}

func idParam(id int64) []soap.Value {
	return []soap.Value{{Name: "orderId", Data: strconv.FormatInt(id, 10)}}
}

func field(values []soap.Value, name string) (string, error) {
	for _, v := range values {
		if v.Name == name {
			return v.Data, nil
		}
	}
	return "", fmt.Errorf("response has no %q element", name)
}

func intField(values []soap.Value, name string) (int64, error) {
	raw, err := field(values, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, raw, err)
	}
	return n, nil
}
