package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"ave-shopify-connector/internal/domain"
)

type fakeCRM struct {
	mu         sync.Mutex
	tokens     []domain.StoreCredential
	agentToken *domain.StoreCredential
	order      *domain.OrderRecord
	orderErr   error
	refs       []domain.CrossReference
	dropRefs   []domain.CrossReference
	refsErr    error
	putErr     error
	putCalls   [][]domain.CrossReference
}

func (f *fakeCRM) StoreTokensByCompany(_ context.Context, _, _ string) []domain.StoreCredential {
	return f.tokens
}

func (f *fakeCRM) StoreTokenByCompanyAgent(_ context.Context, _, _ string, _ int64) *domain.StoreCredential {
	return f.agentToken
}

func (f *fakeCRM) OrderByNumber(_ context.Context, _, _ string) (*domain.OrderRecord, error) {
	return f.order, f.orderErr
}

func (f *fakeCRM) CrossReferences(_ context.Context, _ string, _ []int64) ([]domain.CrossReference, error) {
	return f.refs, f.refsErr
}

func (f *fakeCRM) DropshippingReferences(_ context.Context, _ string, _ []int64) ([]domain.CrossReference, error) {
	return f.dropRefs, f.refsErr
}

func (f *fakeCRM) PutCrossReferences(_ context.Context, _ string, refs []domain.CrossReference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.putCalls = append(f.putCalls, refs)
	return nil
}

// fakeStore records every operation as "op:shop" and fails the operations
// listed in failOps (keyed the same way).
type fakeStore struct {
	mu       sync.Mutex
	calls    []string
	failOps  map[string]error
	created  *domain.StoreProduct
	updated  *domain.StoreProduct
	newOrder *domain.StoreOrder
}

func (f *fakeStore) record(op string, cred domain.StoreCredential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := op + ":" + cred.URL
	f.calls = append(f.calls, key)
	if err, ok := f.failOps[key]; ok {
		return err
	}
	return nil
}

func (f *fakeStore) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) CreateProduct(_ context.Context, cred domain.StoreCredential, _ *domain.CanonicalProduct) (*domain.StoreProduct, error) {
	if err := f.record("create_product", cred); err != nil {
		return nil, err
	}
	if f.created != nil {
		return f.created, nil
	}
	return &domain.StoreProduct{ID: "1"}, nil
}

func (f *fakeStore) UpdateProduct(_ context.Context, cred domain.StoreCredential, _ string, _ *domain.CanonicalProduct) (*domain.StoreProduct, error) {
	if err := f.record("update_product", cred); err != nil {
		return nil, err
	}
	if f.updated != nil {
		return f.updated, nil
	}
	return &domain.StoreProduct{ID: "1"}, nil
}

func (f *fakeStore) UpdateVariantStock(_ context.Context, cred domain.StoreCredential, _ string, _ int) error {
	return f.record("update_stock", cred)
}

func (f *fakeStore) CreateOrder(_ context.Context, cred domain.StoreCredential, _ *domain.CanonicalOrder) (*domain.StoreOrder, error) {
	if err := f.record("create_order", cred); err != nil {
		return nil, err
	}
	if f.newOrder != nil {
		return f.newOrder, nil
	}
	return &domain.StoreOrder{ID: "700", Name: "#1001"}, nil
}

func (f *fakeStore) rawOp(op string, cred domain.StoreCredential) (json.RawMessage, error) {
	if err := f.record(op, cred); err != nil {
		return nil, err
	}
	return json.RawMessage(`{}`), nil
}

func (f *fakeStore) CancelOrder(_ context.Context, cred domain.StoreCredential, _, _ string) (json.RawMessage, error) {
	return f.rawOp("cancel_order", cred)
}

func (f *fakeStore) AddNote(_ context.Context, cred domain.StoreCredential, _, _ string) (json.RawMessage, error) {
	return f.rawOp("add_note", cred)
}

func (f *fakeStore) AddTimelineComment(_ context.Context, cred domain.StoreCredential, _, _ string) (json.RawMessage, error) {
	return f.rawOp("add_comment", cred)
}

func (f *fakeStore) OpenOrder(_ context.Context, cred domain.StoreCredential, _ string) (json.RawMessage, error) {
	return f.rawOp("open_order", cred)
}

func (f *fakeStore) FulfillOrder(_ context.Context, cred domain.StoreCredential, _ string) (json.RawMessage, error) {
	return f.rawOp("fulfill_order", cred)
}

func (f *fakeStore) CloseOrder(_ context.Context, cred domain.StoreCredential, _ string) (json.RawMessage, error) {
	return f.rawOp("close_order", cred)
}

var errStoreDown = errors.New("store unavailable")
