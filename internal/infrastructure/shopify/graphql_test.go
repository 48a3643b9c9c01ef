package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ave-shopify-connector/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// newGraphQLTestClient spins up a TLS server standing in for a store's Admin
// GraphQL endpoint. Responses are served in order, one per request.
func newGraphQLTestClient(t *testing.T, responses ...string) (*Client, domain.StoreCredential, *[]recordedRequest) {
	t.Helper()
	requests := &[]recordedRequest{}
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/"+DefaultAPIVersion+"/graphql.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		var req recordedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*requests = append(*requests, req)

		body := `{"data":{}}`
		if len(responses) > 0 {
			body = responses[0]
			responses = responses[1:]
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client := NewClient(DefaultAPIVersion, server.Client(), zerolog.Nop())
	cred := domain.StoreCredential{ID: 1, URL: server.URL, Token: "shpat_test"}
	return client, cred, requests
}

func TestAddNote(t *testing.T) {
	client, cred, requests := newGraphQLTestClient(t,
		`{"data":{"orderUpdate":{"order":{"id":"gid://shopify/Order/700","note":"hola"},"userErrors":[]}}}`,
	)

	data, err := client.AddNote(context.Background(), cred, "700", "hola")

	require.NoError(t, err)
	assert.NotNil(t, data)
	require.Len(t, *requests, 1)
	input := (*requests)[0].Variables["input"].(map[string]any)
	assert.Equal(t, "gid://shopify/Order/700", input["id"])
	assert.Equal(t, "hola", input["note"])
}

func TestAddNoteAcceptsGIDInput(t *testing.T) {
	client, cred, requests := newGraphQLTestClient(t,
		`{"data":{"orderUpdate":{"userErrors":[]}}}`,
	)

	_, err := client.AddNote(context.Background(), cred, "gid://shopify/Order/700", "hola")

	require.NoError(t, err)
	input := (*requests)[0].Variables["input"].(map[string]any)
	assert.Equal(t, "gid://shopify/Order/700", input["id"])
}

func TestAddNoteUserErrors(t *testing.T) {
	client, cred, _ := newGraphQLTestClient(t,
		`{"data":{"orderUpdate":{"userErrors":[{"field":["id"],"message":"Order not found"}]}}}`,
	)

	_, err := client.AddNote(context.Background(), cred, "700", "hola")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Order not found")
}

func TestAddTimelineComment(t *testing.T) {
	client, cred, requests := newGraphQLTestClient(t,
		`{"data":{"timelineCommentCreate":{"timelineComment":{"id":"gid://shopify/TimelineComment/1"},"userErrors":[]}}}`,
	)

	_, err := client.AddTimelineComment(context.Background(), cred, "700", "comentario")

	require.NoError(t, err)
	input := (*requests)[0].Variables["input"].(map[string]any)
	assert.Equal(t, "gid://shopify/Order/700", input["subjectId"])
	assert.Equal(t, "comentario", input["message"])
}

func TestCancelOrderVariables(t *testing.T) {
	client, cred, requests := newGraphQLTestClient(t,
		`{"data":{"orderCancel":{"job":{"id":"gid://shopify/Job/1"},"orderCancelUserErrors":[]}}}`,
	)

	_, err := client.CancelOrder(context.Background(), cred, "700", "")

	require.NoError(t, err)
	vars := (*requests)[0].Variables
	assert.Equal(t, "gid://shopify/Order/700", vars["orderId"])
	assert.Equal(t, "DECLINED", vars["reason"])
	assert.Equal(t, false, vars["refund"])
	assert.Equal(t, true, vars["restock"])
}

func TestCloseOrder(t *testing.T) {
	client, cred, _ := newGraphQLTestClient(t,
		`{"data":{"orderClose":{"order":{"id":"gid://shopify/Order/700"},"userErrors":[]}}}`,
	)

	_, err := client.CloseOrder(context.Background(), cred, "700")

	require.NoError(t, err)
}

func TestGraphQLTopLevelErrors(t *testing.T) {
	client, cred, _ := newGraphQLTestClient(t,
		`{"errors":[{"message":"Throttled"}]}`,
	)

	_, err := client.OpenOrder(context.Background(), cred, "700")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Throttled")
}

func TestGraphQLRemoteError(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)
	client := NewClient(DefaultAPIVersion, server.Client(), zerolog.Nop())
	cred := domain.StoreCredential{URL: server.URL, Token: "bad"}

	_, err := client.CloseOrder(context.Background(), cred, "700")

	require.Error(t, err)
	assert.True(t, domain.IsRemoteCallError(err))
}

func TestFulfillOrder(t *testing.T) {
	client, cred, requests := newGraphQLTestClient(t,
		`{"data":{"order":{"fulfillmentOrders":{"nodes":[
			{"id":"gid://shopify/FulfillmentOrder/55","status":"OPEN"},
			{"id":"gid://shopify/FulfillmentOrder/56","status":"CLOSED"}
		]}}}}`,
		`{"data":{"fulfillmentCreateV2":{"fulfillment":{"id":"gid://shopify/Fulfillment/9","status":"SUCCESS"},"userErrors":[]}}}`,
	)

	_, err := client.FulfillOrder(context.Background(), cred, "700")

	require.NoError(t, err)
	require.Len(t, *requests, 2)

	fulfillment := (*requests)[1].Variables["fulfillment"].(map[string]any)
	byFO := fulfillment["lineItemsByFulfillmentOrder"].([]any)
	require.Len(t, byFO, 1)
	assert.Equal(t, "gid://shopify/FulfillmentOrder/55", byFO[0].(map[string]any)["fulfillmentOrderId"])
}

func TestFulfillOrderNoOpenFulfillmentOrders(t *testing.T) {
	client, cred, _ := newGraphQLTestClient(t,
		`{"data":{"order":{"fulfillmentOrders":{"nodes":[
			{"id":"gid://shopify/FulfillmentOrder/55","status":"CLOSED"}
		]}}}}`,
	)

	_, err := client.FulfillOrder(context.Background(), cred, "700")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no open fulfillment orders")
}

func TestOrderGID(t *testing.T) {
	assert.Equal(t, "gid://shopify/Order/700", orderGID("700"))
	assert.Equal(t, "gid://shopify/Order/700", orderGID("gid://shopify/Order/700"))
}
