package crm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"ave-shopify-connector/internal/domain"
	"ave-shopify-connector/internal/ports"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production Ave CRM shopify API root.
const DefaultBaseURL = "https://api.aveonline.co/api-shopify/public/api"

// Gateway implements ports.CRMGateway against the Ave CRM API. Every
// operation issues exactly one remote call and interprets the {data: [...]}
// envelope.
type Gateway struct {
	baseURL string
	gate    *HTTPClient
	logger  zerolog.Logger
}

// NewGateway creates a CRM gateway. An empty baseURL falls back to the
// production API root.
func NewGateway(baseURL string, gate *HTTPClient, logger zerolog.Logger) *Gateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		gate:    gate,
		logger:  logger,
	}
}

var _ ports.CRMGateway = (*Gateway)(nil)

type credentialEnvelope struct {
	Data []domain.StoreCredential `json:"data"`
}

type referenceEnvelope struct {
	Data []domain.CrossReference `json:"data"`
}

type orderEnvelope struct {
	Data []domain.OrderRecord `json:"data"`
}

func authHeader(token string) map[string]string {
	return map[string]string{"Authorization": token}
}

// lookupStoreTokens is the error-carrying form of the token lookup. A nil
// slice with a nil error means the envelope was absent or empty.
func (g *Gateway) lookupStoreTokens(ctx context.Context, path, authToken string) ([]domain.StoreCredential, error) {
	var env credentialEnvelope
	if err := g.gate.Do(ctx, "GET", g.baseURL+path, authHeader(authToken), nil, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, nil
	}
	return env.Data, nil
}

// StoreTokensByCompany collapses lookup failures into nil: downstream, "no
// stores configured" and "lookup failed" are indistinguishable.
func (g *Gateway) StoreTokensByCompany(ctx context.Context, companyID, authToken string) []domain.StoreCredential {
	tokens, err := g.lookupStoreTokens(ctx, "/token/"+url.PathEscape(companyID), authToken)
	if err != nil {
		g.logger.Warn().Err(err).Str("company", companyID).Msg("Store token lookup failed, treating as no stores")
		return nil
	}
	return tokens
}

// StoreTokenByCompanyAgent returns the first credential for the
// company/agent pair, with the same null-collapsing rule.
func (g *Gateway) StoreTokenByCompanyAgent(ctx context.Context, companyID, authToken string, agentID int64) *domain.StoreCredential {
	path := "/token/" + url.PathEscape(companyID) + "/" + strconv.FormatInt(agentID, 10)
	tokens, err := g.lookupStoreTokens(ctx, path, authToken)
	if err != nil {
		g.logger.Warn().Err(err).
			Str("company", companyID).
			Int64("agent", agentID).
			Msg("Agent store token lookup failed, treating as no store")
		return nil
	}
	if len(tokens) == 0 {
		return nil
	}
	return &tokens[0]
}

// OrderByNumber resolves an order number through the CRM order log.
func (g *Gateway) OrderByNumber(ctx context.Context, authToken, orderNumber string) (*domain.OrderRecord, error) {
	var env orderEnvelope
	u := g.baseURL + "/orders/log/" + url.PathEscape(orderNumber)
	if err := g.gate.Do(ctx, "GET", u, authHeader(authToken), nil, &env); err != nil {
		return nil, fmt.Errorf("order log lookup: %w", err)
	}
	if len(env.Data) == 0 {
		return nil, nil
	}
	return &env.Data[0], nil
}

func (g *Gateway) references(ctx context.Context, authToken, param string, ids []int64) ([]domain.CrossReference, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values := url.Values{}
	for _, id := range ids {
		values.Add(param+"[]", strconv.FormatInt(id, 10))
	}
	u := g.baseURL + "/productEcommerce?" + values.Encode()
	var env referenceEnvelope
	if err := g.gate.Do(ctx, "GET", u, authHeader(authToken), nil, &env); err != nil {
		return nil, fmt.Errorf("cross-reference lookup: %w", err)
	}
	return env.Data, nil
}

// CrossReferences returns all known mappings for the given internal ids.
func (g *Gateway) CrossReferences(ctx context.Context, authToken string, productIDs []int64) ([]domain.CrossReference, error) {
	return g.references(ctx, authToken, "products_id", productIDs)
}

// DropshippingReferences returns all known mappings keyed by dropshipping id.
func (g *Gateway) DropshippingReferences(ctx context.Context, authToken string, dropshippingIDs []int64) ([]domain.CrossReference, error) {
	return g.references(ctx, authToken, "product_dropshipping_id", dropshippingIDs)
}

// PutCrossReferences upserts new mappings through the productEcommerce
// endpoint.
func (g *Gateway) PutCrossReferences(ctx context.Context, authToken string, refs []domain.CrossReference) error {
	if len(refs) == 0 {
		return nil
	}
	if err := g.gate.Do(ctx, "POST", g.baseURL+"/productEcommerce", authHeader(authToken), refs, nil); err != nil {
		return fmt.Errorf("cross-reference upsert: %w", err)
	}
	g.logger.Debug().Int("count", len(refs)).Msg("Persisted cross-references")
	return nil
}
