package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diwise/item-drive/internal/pkg/application/itemdrive"
	"github.com/diwise/item-drive/internal/pkg/infrastructure/storage/memory"
	"github.com/diwise/item-drive/internal/pkg/presentation/api/rest/auth"
	driveerrors "github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/diwise/item-drive/pkg/drive/items"
	"github.com/go-chi/chi/v5"
	"github.com/matryer/is"
)

const token string = "s3cr3t"

func TestCreateItems(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/items", strings.NewReader(ontologyJSON), token)
	is.Equal(resp.StatusCode, http.StatusCreated) // Check status code

	created := []items.Item{}
	is.NoErr(json.Unmarshal([]byte(body), &created))
	is.Equal(len(created), 3)
}

func TestCreateSingleItem(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodPost, "/items", strings.NewReader(ethanJSON), token)
	is.Equal(resp.StatusCode, http.StatusCreated) // Check status code
	is.True(strings.Contains(body, `"itemID":"https://example.com/ethan"`))
}

func TestCreateItemsWithoutTokenIsUnauthorized(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodPost, "/items", strings.NewReader(ethanJSON), "")

	is.Equal(resp.StatusCode, http.StatusUnauthorized) // Check status code
}

func TestCreateItemsWithBadDataReturnsBadRequest(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodPost, "/items", strings.NewReader("this is not my json"), token)

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
}

func TestCreateItemsWithMissingValueReturnsBadRequest(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodPost, "/items", strings.NewReader(`{"facts":[{"property":"name"}]}`), token)

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
}

func TestCreateItemsWithWrongContentTypeReturnsUnsupportedMediaType(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/items", strings.NewReader(ethanJSON))
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusUnsupportedMediaType) // Check status code
}

func TestQueryItems(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createItems(is, ts, ontologyJSON, ethanJSON)

	query := url.QueryEscape(`[{"property":"https://schema.org/name","value":"Ethan"}]`)
	resp, body := newTestRequest(is, ts, http.MethodGet, "/items?query="+query, nil, "")
	is.Equal(resp.StatusCode, http.StatusOK) // Check status code

	result := []items.Item{}
	is.NoErr(json.Unmarshal([]byte(body), &result))
	is.Equal(len(result), 1)
	is.Equal(result[0].ItemID, "https://example.com/ethan")
}

func TestQueryAllItems(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createItems(is, ts, ontologyJSON, ethanJSON)

	resp, body := newTestRequest(is, ts, http.MethodGet, "/items", nil, "")
	is.Equal(resp.StatusCode, http.StatusOK) // Check status code

	result := []items.Item{}
	is.NoErr(json.Unmarshal([]byte(body), &result))
	is.Equal(len(result), 4)
}

func TestQueryItemsWithEmptyQueryReturnsNothing(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createItems(is, ts, ethanJSON)

	resp, body := newTestRequest(is, ts, http.MethodGet, "/items?query=%5B%5D", nil, "")
	is.Equal(resp.StatusCode, http.StatusOK) // Check status code
	is.Equal(body, "[]")
}

func TestQueryItemsWithBadQueryReturnsBadRequest(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/items?query=notjson", nil, "")

	is.Equal(resp.StatusCode, http.StatusBadRequest) // Check status code
}

func TestRetrieveItem(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createItems(is, ts, ethanJSON)

	resp, body := newTestRequest(is, ts, http.MethodGet, "/items/"+url.PathEscape("https://example.com/ethan"), nil, "")
	is.Equal(resp.StatusCode, http.StatusOK) // Check status code

	item := items.Item{}
	is.NoErr(json.Unmarshal([]byte(body), &item))
	is.Equal(len(item.Facts), 2)
}

func TestRetrieveUnknownItemReturnsNotFound(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/items/nobody", nil, "")

	is.Equal(resp.StatusCode, http.StatusNotFound) // Check status code
	is.True(strings.Contains(body, driveerrors.ProblemTypeNotFound))
}

func TestRetrieveFact(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	created := createItems(is, ts, ethanJSON)
	factID := created[0].Facts[0].FactID

	resp, body := newTestRequest(is, ts, http.MethodGet, "/facts/"+factID, nil, "")
	is.Equal(resp.StatusCode, http.StatusOK) // Check status code

	f := facts.Fact{}
	is.NoErr(json.Unmarshal([]byte(body), &f))
	is.Equal(f.FactID, factID)

	resp, _ = newTestRequest(is, ts, http.MethodGet, "/facts/nothing", nil, "")
	is.Equal(resp.StatusCode, http.StatusNotFound) // Check status code
}

func TestCheckItems(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createItems(is, ts, ontologyJSON)

	resp, _ := newTestRequest(is, ts, http.MethodPost, "/items/check", strings.NewReader(ethanJSON), "")
	is.Equal(resp.StatusCode, http.StatusNoContent) // Check status code

	resp, body := newTestRequest(is, ts, http.MethodPost, "/items/check", strings.NewReader(robotJSON), "")
	is.Equal(resp.StatusCode, http.StatusUnprocessableEntity) // Check status code
	is.True(strings.Contains(body, driveerrors.ProblemTypeSchemaViolation))
	is.True(strings.Contains(body, string(driveerrors.ReasonUnknownType)))
}

func TestCheckStoredItem(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createItems(is, ts, ontologyJSON, ethanJSON)

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/items/"+url.PathEscape("https://example.com/ethan")+"/check", nil, "")
	is.Equal(resp.StatusCode, http.StatusNoContent) // Check status code

	resp, _ = newTestRequest(is, ts, http.MethodGet, "/items/nobody/check", nil, "")
	is.Equal(resp.StatusCode, http.StatusNotFound) // Check status code
}

func TestRetrievePropertiesOfType(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	createItems(is, ts, ontologyJSON)

	resp, body := newTestRequest(is, ts, http.MethodGet, "/types/"+url.PathEscape("https://schema.org/Person")+"/properties", nil, "")
	is.Equal(resp.StatusCode, http.StatusOK) // Check status code

	result := []items.Item{}
	is.NoErr(json.Unmarshal([]byte(body), &result))
	is.Equal(len(result), 1)
	is.Equal(result[0].ItemID, "https://schema.org/name")
}

func TestCreateItemsCanHandleAlreadyExistsError(t *testing.T) {
	is := is.New(t)

	app := &itemdrive.ItemDriveMock{
		InsertItemsFunc: func(ctx context.Context, partials []items.PartialItem) ([]items.Item, error) {
			return nil, driveerrors.NewAlreadyExistsError("fact f1 already exists")
		},
	}

	ts := setupTestWithApp(is, app)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodPost, "/items", strings.NewReader(ethanJSON), token)

	is.Equal(resp.StatusCode, http.StatusConflict) // Check status code
	is.Equal(len(app.InsertItemsCalls()), 1)
}

func TestQueryItemsCanHandleInternalError(t *testing.T) {
	is := is.New(t)

	app := &itemdrive.ItemDriveMock{
		FetchItemsFunc: func(ctx context.Context, queries []facts.Query) ([]items.Item, error) {
			return nil, fmt.Errorf("some unknown error")
		},
	}

	ts := setupTestWithApp(is, app)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/items", nil, "")

	is.Equal(resp.StatusCode, http.StatusInternalServerError) // Check status code
	is.True(app.FetchItemsCalls()[0].Queries == nil)           // an absent query should mean all items
}

func setupTest(t *testing.T) (*is.I, *httptest.Server, itemdrive.ItemDrive) {
	is := is.New(t)
	app := itemdrive.New(memory.New())
	return is, setupTestWithApp(is, app), app
}

func setupTestWithApp(is *is.I, app itemdrive.ItemDrive) *httptest.Server {
	r := chi.NewRouter()

	err := RegisterHandlers(context.Background(), r, strings.NewReader(auth.DefaultPolicy), token, app)
	is.NoErr(err)

	return httptest.NewServer(r)
}

func createItems(is *is.I, ts *httptest.Server, documents ...string) []items.Item {
	created := []items.Item{}

	for _, doc := range documents {
		resp, body := newTestRequest(is, ts, http.MethodPost, "/items", strings.NewReader(doc), token)
		is.Equal(resp.StatusCode, http.StatusCreated) // items should be created

		result := []items.Item{}
		is.NoErr(json.Unmarshal([]byte(body), &result))
		created = append(created, result...)
	}

	return created
}

func newTestRequest(is *is.I, ts *httptest.Server, method, path string, body io.Reader, bearer string) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, body)
	req.Header.Add("Content-Type", "application/json")

	if bearer != "" {
		req.Header.Add("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	return resp, string(bytes.TrimSpace(respBody))
}

const ontologyJSON string = `[
	{"itemID": "https://schema.org/Person", "facts": [
		{"property": "@type", "value": {"@id": "http://www.w3.org/2000/01/rdf-schema#Class"}}
	]},
	{"itemID": "https://schema.org/Text", "facts": [
		{"property": "@type", "value": {"@id": "http://www.w3.org/2000/01/rdf-schema#Class"}}
	]},
	{"itemID": "https://schema.org/name", "facts": [
		{"property": "@type", "value": {"@id": "http://www.w3.org/1999/02/22-rdf-syntax-ns#Property"}},
		{"property": "https://schema.org/domainIncludes", "value": {"@id": "https://schema.org/Person"}},
		{"property": "https://schema.org/rangeIncludes", "value": {"@id": "https://schema.org/Text"}}
	]}
]`

const ethanJSON string = `{"itemID": "https://example.com/ethan", "facts": [
	{"property": "@type", "value": {"@id": "https://schema.org/Person"}},
	{"property": "https://schema.org/name", "value": {"@value": "Ethan"}}
]}`

const robotJSON string = `{"itemID": "https://example.com/robbie", "facts": [
	{"property": "@type", "value": {"@id": "https://schema.org/Robot"}}
]}`
