package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/diwise/item-drive/pkg/drive/items"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ItemDriveClient interface {
	CreateItems(ctx context.Context, partials []items.PartialItem) ([]items.Item, error)
	QueryItems(ctx context.Context, queries []facts.Query) ([]items.Item, error)
	RetrieveItem(ctx context.Context, itemID string) (*items.Item, error)
	RetrieveFact(ctx context.Context, factID string) (*facts.Fact, error)
	CheckItems(ctx context.Context, partials []items.PartialItem) error
}

func Debug(enabled string) func(*driveClient) {
	return func(c *driveClient) {
		c.debug = (enabled == "true")
	}
}

// Token sets the bearer token sent along with requests that create items
func Token(token string) func(*driveClient) {
	return func(c *driveClient) {
		c.token = token
	}
}

func NewItemDriveClient(baseURL string, options ...func(*driveClient)) ItemDriveClient {
	c := &driveClient{
		baseURL: baseURL,
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const TraceAttributeItemID string = "item-id"

var tracer = otel.Tracer("item-drive-client")

type driveClient struct {
	baseURL    string
	token      string
	debug      bool
	httpClient http.Client
}

func (c *driveClient) CreateItems(ctx context.Context, partials []items.PartialItem) ([]items.Item, error) {
	var err error

	ctx, span := tracer.Start(ctx, "create-items")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := json.Marshal(partials)
	if err != nil {
		err = fmt.Errorf("failed to marshal items: %s (%w)", err.Error(), errors.ErrBadRequest)
		return nil, err
	}

	resp, respBody, err := c.call(ctx, http.MethodPost, c.baseURL+"/items", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusCreated {
		err = errorFromResponse(resp, respBody)
		return nil, err
	}

	created := []items.Item{}
	err = json.Unmarshal(respBody, &created)
	if err != nil {
		err = fmt.Errorf("failed to decode response: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	return created, nil
}

// QueryItems returns the items matching queries. A nil slice asks for every stored item.
func (c *driveClient) QueryItems(ctx context.Context, queries []facts.Query) ([]items.Item, error) {
	var err error

	ctx, span := tracer.Start(ctx, "query-items")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	endpoint := c.baseURL + "/items"

	if queries != nil {
		var q []byte
		q, err = json.Marshal(queries)
		if err != nil {
			err = fmt.Errorf("failed to marshal query: %s (%w)", err.Error(), errors.ErrBadRequest)
			return nil, err
		}
		endpoint = endpoint + "?query=" + url.QueryEscape(string(q))
	}

	resp, respBody, err := c.call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errorFromResponse(resp, respBody)
		return nil, err
	}

	result := []items.Item{}
	err = json.Unmarshal(respBody, &result)
	if err != nil {
		err = fmt.Errorf("failed to decode response: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	return result, nil
}

func (c *driveClient) RetrieveItem(ctx context.Context, itemID string) (*items.Item, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-item",
		trace.WithAttributes(attribute.String(TraceAttributeItemID, itemID)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	resp, respBody, err := c.call(ctx, http.MethodGet, c.baseURL+"/items/"+url.PathEscape(itemID), nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errorFromResponse(resp, respBody)
		return nil, err
	}

	item := &items.Item{}
	err = json.Unmarshal(respBody, item)
	if err != nil {
		err = fmt.Errorf("failed to decode response: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	return item, nil
}

func (c *driveClient) RetrieveFact(ctx context.Context, factID string) (*facts.Fact, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-fact")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	resp, respBody, err := c.call(ctx, http.MethodGet, c.baseURL+"/facts/"+url.PathEscape(factID), nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errorFromResponse(resp, respBody)
		return nil, err
	}

	f := &facts.Fact{}
	err = json.Unmarshal(respBody, f)
	if err != nil {
		err = fmt.Errorf("failed to decode response: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	return f, nil
}

// CheckItems validates partials against the ontology of the drive without storing them
func (c *driveClient) CheckItems(ctx context.Context, partials []items.PartialItem) error {
	var err error

	ctx, span := tracer.Start(ctx, "check-items")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := json.Marshal(partials)
	if err != nil {
		err = fmt.Errorf("failed to marshal items: %s (%w)", err.Error(), errors.ErrBadRequest)
		return err
	}

	resp, respBody, err := c.call(ctx, http.MethodPost, c.baseURL+"/items/check", bytes.NewReader(body))
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusNoContent {
		err = errorFromResponse(resp, respBody)
		return err
	}

	return nil
}

func errorFromResponse(resp *http.Response, body []byte) error {
	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode >= http.StatusBadRequest {
		return errors.NewErrorFromProblemReport(resp.StatusCode, contentType, body)
	}
	return fmt.Errorf("item drive returned status code %d (content-type: %s, body: %s)", resp.StatusCode, contentType, string(body))
}

func (c *driveClient) call(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		err = fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
		return nil, nil, err
	}

	req.Header.Add("Accept", "application/json")
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Add("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to send request: %s (%w)", err.Error(), errors.ErrRequest)
		return nil, nil, err
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, nil, err
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
	}

	return resp, respBody, nil
}
