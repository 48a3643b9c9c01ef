package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ave-shopify-connector/internal/domain"
)

// Order state transitions and notes go through the Admin GraphQL API, which
// is the only surface Shopify exposes them on consistently. Requests are
// small fixed documents sent directly over HTTP.

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type userError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

func (c *Client) graphqlEndpoint(shop string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(shop, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", host, c.apiVersion)
}

// graphql runs one query against the store's Admin GraphQL endpoint and
// returns the raw data portion of the response.
func (c *Client) graphql(ctx context.Context, cred domain.StoreCredential, query string, variables map[string]any) (json.RawMessage, error) {
	endpoint := c.graphqlEndpoint(cred.URL)

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.RemoteCallError{Op: "POST", URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", cred.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.RemoteCallError{Op: "POST", URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.RemoteCallError{
			Op:  "POST",
			URL: endpoint,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, raw),
		}
	}

	var decoded struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &domain.RemoteCallError{Op: "POST", URL: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(decoded.Errors) > 0 {
		msgs := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("graphql errors from %s: %s", cred.URL, strings.Join(msgs, "; "))
	}
	return decoded.Data, nil
}

func userErrorsToError(op string, errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(e.Field) > 0 {
			msgs = append(msgs, strings.Join(e.Field, ".")+": "+e.Message)
			continue
		}
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("%s: %s", op, strings.Join(msgs, "; "))
}

// orderGID builds the GraphQL global id for an order from a bare numeric id
// or an already decorated one.
func orderGID(storeOrderID string) string {
	return "gid://shopify/Order/" + digitsOnly(storeOrderID)
}

// AddNote replaces the order's note.
func (c *Client) AddNote(ctx context.Context, cred domain.StoreCredential, storeOrderID, note string) (json.RawMessage, error) {
	query := `
mutation orderUpdate($input: OrderInput!) {
	orderUpdate(input: $input) {
		order { id note }
		userErrors { field message }
	}
}`
	data, err := c.graphql(ctx, cred, query, map[string]any{
		"input": map[string]any{
			"id":   orderGID(storeOrderID),
			"note": note,
		},
	})
	if err != nil {
		return nil, err
	}
	var decoded struct {
		OrderUpdate struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"orderUpdate"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode orderUpdate: %w", err)
	}
	if err := userErrorsToError("orderUpdate", decoded.OrderUpdate.UserErrors); err != nil {
		return nil, err
	}
	return data, nil
}

// AddTimelineComment posts a comment to the order's timeline.
func (c *Client) AddTimelineComment(ctx context.Context, cred domain.StoreCredential, storeOrderID, message string) (json.RawMessage, error) {
	query := `
mutation timelineCommentCreate($input: TimelineCommentCreateInput!) {
	timelineCommentCreate(input: $input) {
		timelineComment { id }
		userErrors { field message }
	}
}`
	data, err := c.graphql(ctx, cred, query, map[string]any{
		"input": map[string]any{
			"subjectId": orderGID(storeOrderID),
			"message":   message,
		},
	})
	if err != nil {
		return nil, err
	}
	var decoded struct {
		TimelineCommentCreate struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"timelineCommentCreate"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode timelineCommentCreate: %w", err)
	}
	if err := userErrorsToError("timelineCommentCreate", decoded.TimelineCommentCreate.UserErrors); err != nil {
		return nil, err
	}
	return data, nil
}

// OpenOrder re-opens a closed order.
func (c *Client) OpenOrder(ctx context.Context, cred domain.StoreCredential, storeOrderID string) (json.RawMessage, error) {
	query := `
mutation orderOpen($input: OrderOpenInput!) {
	orderOpen(input: $input) {
		order { id }
		userErrors { field message }
	}
}`
	data, err := c.graphql(ctx, cred, query, map[string]any{
		"input": map[string]any{"id": orderGID(storeOrderID)},
	})
	if err != nil {
		return nil, err
	}
	var decoded struct {
		OrderOpen struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"orderOpen"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode orderOpen: %w", err)
	}
	if err := userErrorsToError("orderOpen", decoded.OrderOpen.UserErrors); err != nil {
		return nil, err
	}
	return data, nil
}

// CloseOrder archives an order.
func (c *Client) CloseOrder(ctx context.Context, cred domain.StoreCredential, storeOrderID string) (json.RawMessage, error) {
	query := `
mutation orderClose($input: OrderCloseInput!) {
	orderClose(input: $input) {
		order { id }
		userErrors { field message }
	}
}`
	data, err := c.graphql(ctx, cred, query, map[string]any{
		"input": map[string]any{"id": orderGID(storeOrderID)},
	})
	if err != nil {
		return nil, err
	}
	var decoded struct {
		OrderClose struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"orderClose"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode orderClose: %w", err)
	}
	if err := userErrorsToError("orderClose", decoded.OrderClose.UserErrors); err != nil {
		return nil, err
	}
	return data, nil
}

// CancelOrder cancels an order with the given reason.
func (c *Client) CancelOrder(ctx context.Context, cred domain.StoreCredential, storeOrderID, reason string) (json.RawMessage, error) {
	if reason == "" {
		reason = "DECLINED"
	}
	query := `
mutation orderCancel($orderId: ID!, $reason: OrderCancelReason!, $refund: Boolean!, $restock: Boolean!) {
	orderCancel(orderId: $orderId, reason: $reason, refund: $refund, restock: $restock) {
		job { id }
		orderCancelUserErrors { field message }
	}
}`
	data, err := c.graphql(ctx, cred, query, map[string]any{
		"orderId": orderGID(storeOrderID),
		"reason":  strings.ToUpper(reason),
		"refund":  false,
		"restock": true,
	})
	if err != nil {
		return nil, err
	}
	var decoded struct {
		OrderCancel struct {
			UserErrors []userError `json:"orderCancelUserErrors"`
		} `json:"orderCancel"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode orderCancel: %w", err)
	}
	if err := userErrorsToError("orderCancel", decoded.OrderCancel.UserErrors); err != nil {
		return nil, err
	}
	return data, nil
}

// FulfillOrder fulfills the order's open fulfillment orders.
func (c *Client) FulfillOrder(ctx context.Context, cred domain.StoreCredential, storeOrderID string) (json.RawMessage, error) {
	lookup := `
query orderFulfillmentOrders($id: ID!) {
	order(id: $id) {
		fulfillmentOrders(first: 10) {
			nodes { id status }
		}
	}
}`
	data, err := c.graphql(ctx, cred, lookup, map[string]any{"id": orderGID(storeOrderID)})
	if err != nil {
		return nil, err
	}
	var decoded struct {
		Order *struct {
			FulfillmentOrders struct {
				Nodes []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
				} `json:"nodes"`
			} `json:"fulfillmentOrders"`
		} `json:"order"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode fulfillmentOrders: %w", err)
	}
	if decoded.Order == nil || len(decoded.Order.FulfillmentOrders.Nodes) == 0 {
		return nil, fmt.Errorf("order %s on %s has no fulfillment orders", storeOrderID, cred.URL)
	}

	byFulfillmentOrder := make([]map[string]any, 0, len(decoded.Order.FulfillmentOrders.Nodes))
	for _, node := range decoded.Order.FulfillmentOrders.Nodes {
		if node.Status != "OPEN" && node.Status != "IN_PROGRESS" {
			continue
		}
		byFulfillmentOrder = append(byFulfillmentOrder, map[string]any{
			"fulfillmentOrderId": node.ID,
		})
	}
	if len(byFulfillmentOrder) == 0 {
		return nil, fmt.Errorf("order %s on %s has no open fulfillment orders", storeOrderID, cred.URL)
	}

	mutation := `
mutation fulfillmentCreateV2($fulfillment: FulfillmentV2Input!) {
	fulfillmentCreateV2(fulfillment: $fulfillment) {
		fulfillment { id status }
		userErrors { field message }
	}
}`
	data, err = c.graphql(ctx, cred, mutation, map[string]any{
		"fulfillment": map[string]any{
			"lineItemsByFulfillmentOrder": byFulfillmentOrder,
		},
	})
	if err != nil {
		return nil, err
	}
	var result struct {
		FulfillmentCreateV2 struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"fulfillmentCreateV2"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode fulfillmentCreateV2: %w", err)
	}
	if err := userErrorsToError("fulfillmentCreateV2", result.FulfillmentCreateV2.UserErrors); err != nil {
		return nil, err
	}
	return data, nil
}
