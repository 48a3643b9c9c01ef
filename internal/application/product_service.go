package application

import (
	"context"

	"ave-shopify-connector/internal/domain"
	"ave-shopify-connector/internal/infrastructure/metrics"
	"ave-shopify-connector/internal/ports"

	"github.com/rs/zerolog"
)

// ProductService orchestrates product fan-out across every store tied to a
// company: payload construction once, reference reconciliation and dispatch
// per store.
type ProductService struct {
	crm         ports.CRMGateway
	stores      ports.StoreClient
	metrics     *metrics.Collector
	logger      zerolog.Logger
	concurrency int
}

func NewProductService(crm ports.CRMGateway, stores ports.StoreClient, collector *metrics.Collector, logger zerolog.Logger, concurrency int) *ProductService {
	if concurrency <= 0 {
		concurrency = DefaultFanOutConcurrency
	}
	return &ProductService{
		crm:         crm,
		stores:      stores,
		metrics:     collector,
		logger:      logger.With().Str("component", "product_service").Logger(),
		concurrency: concurrency,
	}
}

// Post creates the product in every store that does not already hold it.
// Returns a nil report when the company has no stores configured.
func (s *ProductService) Post(ctx context.Context, authToken string, in domain.ProductInput, rctx RequestContext) (*domain.FanOutReport, error) {
	stores := s.crm.StoreTokensByCompany(ctx, in.CompanyID, authToken)
	if len(stores) == 0 {
		s.metrics.Skipped("product_post")
		s.logger.Info().Str("company", in.CompanyID).Msg("no stores configured, skipping product post")
		return nil, nil
	}

	product := BuildProduct(in, rctx)
	refs, candidates, dropshipping, err := s.fetchReferences(ctx, authToken, product)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, stores, s.concurrency, func(ctx context.Context, cred domain.StoreCredential) domain.StoreResult {
		res := s.createInStore(ctx, authToken, cred, product, refs, candidates, dropshipping)
		s.metrics.Dispatch("product_post", res.Success)
		return res
	}), nil
}

// Put pushes the current product state to every store that already maps it.
// Stores without a mapping report failure instead of creating a duplicate.
func (s *ProductService) Put(ctx context.Context, authToken string, in domain.ProductInput, rctx RequestContext) (*domain.FanOutReport, error) {
	if in.ProductID == 0 {
		return nil, domain.NewValidationError("productId", "El ID del producto no puede estar vacio.")
	}

	stores := s.crm.StoreTokensByCompany(ctx, in.CompanyID, authToken)
	if len(stores) == 0 {
		s.metrics.Skipped("product_put")
		s.logger.Info().Str("company", in.CompanyID).Msg("no stores configured, skipping product put")
		return nil, nil
	}

	product := BuildProduct(in, rctx)
	refs, candidates, dropshipping, err := s.fetchReferences(ctx, authToken, product)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, stores, s.concurrency, func(ctx context.Context, cred domain.StoreCredential) domain.StoreResult {
		res := domain.StoreResult{Shop: cred.URL, Sent: product}
		existing, _ := PartitionExisting(candidates, refs, cred.ID)
		mapped, ok := existing[productKey(product, dropshipping)]
		if !ok {
			res.Error = "El producto no tiene referencia en la tienda."
			s.metrics.Dispatch("product_put", false)
			return res
		}
		updated, err := s.stores.UpdateProduct(ctx, cred, mapped, product)
		if err != nil {
			res.Error = err.Error()
			s.logger.Warn().Err(err).Str("shop", cred.URL).Int64("product", product.ID).Msg("product update failed")
		} else {
			res.Success = true
			res.Result = updated
		}
		s.metrics.Dispatch("product_put", res.Success)
		return res
	}), nil
}

// Sync reconciles the product against every store: update where a mapping
// exists, create and persist new references where it does not.
func (s *ProductService) Sync(ctx context.Context, authToken string, in domain.ProductInput, rctx RequestContext) (*domain.FanOutReport, error) {
	stores := s.crm.StoreTokensByCompany(ctx, in.CompanyID, authToken)
	if len(stores) == 0 {
		s.metrics.Skipped("product_sync")
		s.logger.Info().Str("company", in.CompanyID).Msg("no stores configured, skipping product sync")
		return nil, nil
	}

	product := BuildProduct(in, rctx)
	refs, candidates, dropshipping, err := s.fetchReferences(ctx, authToken, product)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, stores, s.concurrency, func(ctx context.Context, cred domain.StoreCredential) domain.StoreResult {
		existing, _ := PartitionExisting(candidates, refs, cred.ID)
		var res domain.StoreResult
		if mapped, ok := existing[productKey(product, dropshipping)]; ok {
			res = domain.StoreResult{Shop: cred.URL, Sent: product}
			updated, err := s.stores.UpdateProduct(ctx, cred, mapped, product)
			if err != nil {
				res.Error = err.Error()
				s.logger.Warn().Err(err).Str("shop", cred.URL).Int64("product", product.ID).Msg("product sync update failed")
			} else {
				res.Success = true
				res.Result = updated
			}
		} else {
			res = s.createInStore(ctx, authToken, cred, product, refs, candidates, dropshipping)
		}
		s.metrics.Dispatch("product_sync", res.Success)
		return res
	}), nil
}

// PutStock updates per-variant inventory in every store. A store succeeds
// only when every one of its variant updates succeeded; individual variant
// outcomes are always reported.
func (s *ProductService) PutStock(ctx context.Context, authToken string, in domain.StockInput) (*domain.FanOutReport, error) {
	if len(in.Variants) == 0 {
		return nil, domain.NewValidationError("variants", "La lista de variantes no puede estar vacia.")
	}

	stores := s.crm.StoreTokensByCompany(ctx, in.CompanyID, authToken)
	if len(stores) == 0 {
		s.metrics.Skipped("product_stock")
		s.logger.Info().Str("company", in.CompanyID).Msg("no stores configured, skipping stock update")
		return nil, nil
	}

	ids := make([]int64, 0, len(in.Variants))
	for _, v := range in.Variants {
		ids = append(ids, v.ID)
	}
	refs, err := s.crm.CrossReferences(ctx, authToken, ids)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, stores, s.concurrency, func(ctx context.Context, cred domain.StoreCredential) domain.StoreResult {
		res := domain.StoreResult{Shop: cred.URL}
		existing, _ := PartitionExisting(ids, refs, cred.ID)
		allOK := true
		for _, v := range in.Variants {
			outcome := domain.VariantStockResult{VariantID: v.ID}
			ref, ok := existing[v.ID]
			if !ok {
				outcome.Error = "La variante no tiene referencia en la tienda."
			} else {
				outcome.StoreRef = ref
				if err := s.stores.UpdateVariantStock(ctx, cred, ref, v.Stock); err != nil {
					outcome.Error = err.Error()
					s.logger.Warn().Err(err).Str("shop", cred.URL).Int64("variant", v.ID).Msg("variant stock update failed")
				} else {
					outcome.Success = true
				}
			}
			if !outcome.Success {
				allOK = false
			}
			res.Variants = append(res.Variants, outcome)
		}
		res.Success = allOK
		s.metrics.Dispatch("product_stock", res.Success)
		return res
	}), nil
}

// createInStore is the shared create path of Post and Sync: skip stores that
// already map the product, otherwise create and persist the derived
// references back to the CRM. A failed persistence marks the store result
// failed so the caller retries and reconciliation catches the orphan.
func (s *ProductService) createInStore(ctx context.Context, authToken string, cred domain.StoreCredential, product *domain.CanonicalProduct, refs []domain.CrossReference, candidates []int64, dropshipping bool) domain.StoreResult {
	res := domain.StoreResult{Shop: cred.URL, Sent: product}

	existing, _ := PartitionExisting(candidates, refs, cred.ID)
	if _, ok := existing[productKey(product, dropshipping)]; ok {
		res.Success = true
		res.Precreated = true
		res.References = precreatedReferences(product, existing, cred.ID, dropshipping)
		return res
	}

	created, err := s.stores.CreateProduct(ctx, cred, product)
	if err != nil {
		res.Error = err.Error()
		s.logger.Warn().Err(err).Str("shop", cred.URL).Int64("product", product.ID).Msg("product create failed")
		return res
	}
	res.Result = created

	// Products without an internal id have nothing to reconcile against.
	if productKey(product, dropshipping) != 0 {
		derived := deriveReferences(product, created, cred.ID, dropshipping)
		res.References = derived
		if err := s.crm.PutCrossReferences(ctx, authToken, derived); err != nil {
			res.Error = err.Error()
			s.logger.Error().Err(err).Str("shop", cred.URL).Int64("product", product.ID).Msg("cross reference persistence failed")
			return res
		}
	}

	res.Success = true
	return res
}

// fetchReferences loads the known mappings for the product: dropshipping ids
// take precedence when they resolve to anything, otherwise the plain
// product and variant ids are used. Returns the candidate id set the
// references are keyed by.
func (s *ProductService) fetchReferences(ctx context.Context, authToken string, product *domain.CanonicalProduct) ([]domain.CrossReference, []int64, bool, error) {
	if ds := product.DropshippingIDs(); len(ds) > 0 {
		refs, err := s.crm.DropshippingReferences(ctx, authToken, ds)
		if err != nil {
			return nil, nil, false, err
		}
		if len(refs) > 0 {
			return refs, ds, true, nil
		}
	}

	var ids []int64
	if product.ID != 0 {
		ids = append(ids, product.ID)
	}
	ids = append(ids, product.VariantIDs()...)
	if len(ids) == 0 {
		return nil, nil, false, nil
	}
	refs, err := s.crm.CrossReferences(ctx, authToken, ids)
	if err != nil {
		return nil, nil, false, err
	}
	return refs, ids, false, nil
}

func productKey(product *domain.CanonicalProduct, dropshipping bool) int64 {
	if dropshipping && product.DropshippingID != 0 {
		return product.DropshippingID
	}
	return product.ID
}

func variantKey(v domain.CanonicalVariant, dropshipping bool) int64 {
	if dropshipping && v.DropshippingID != 0 {
		return v.DropshippingID
	}
	return v.ID
}

// deriveReferences joins the store's create response back to the canonical
// product: the product row first, then one row per identified variant
// matched by SKU. Variants the store response does not echo back get an
// empty ref so the product row still lands.
func deriveReferences(product *domain.CanonicalProduct, created *domain.StoreProduct, storeID int64, dropshipping bool) []domain.CrossReference {
	refType := domain.ProductTypeOwn
	if dropshipping {
		refType = domain.ProductTypeDropshipping
	}

	pk := productKey(product, dropshipping)
	refs := []domain.CrossReference{{
		ProductID:  pk,
		ProductRef: NormalizeStoreRef(created.ID),
		TokenID:    storeID,
		Type:       refType,
	}}

	bySKU := make(map[string]string, len(created.Variants))
	for _, sv := range created.Variants {
		if sv.SKU != "" {
			bySKU[sv.SKU] = NormalizeStoreRef(sv.ID)
		}
	}
	for _, v := range product.Variants {
		vk := variantKey(v, dropshipping)
		if vk == 0 {
			continue
		}
		parent := pk
		refs = append(refs, domain.CrossReference{
			ProductID:  vk,
			ParentID:   &parent,
			ProductRef: bySKU[v.SKU],
			TokenID:    storeID,
			Type:       refType,
		})
	}
	return refs
}

// precreatedReferences reconstructs the reference set for a store that
// already holds the product, from the mappings the CRM reported.
func precreatedReferences(product *domain.CanonicalProduct, existing map[int64]string, storeID int64, dropshipping bool) []domain.CrossReference {
	refType := domain.ProductTypeOwn
	if dropshipping {
		refType = domain.ProductTypeDropshipping
	}

	pk := productKey(product, dropshipping)
	refs := []domain.CrossReference{{
		ProductID:  pk,
		ProductRef: existing[pk],
		TokenID:    storeID,
		Type:       refType,
	}}
	for _, v := range product.Variants {
		vk := variantKey(v, dropshipping)
		if vk == 0 {
			continue
		}
		ref, ok := existing[vk]
		if !ok {
			continue
		}
		parent := pk
		refs = append(refs, domain.CrossReference{
			ProductID:  vk,
			ParentID:   &parent,
			ProductRef: ref,
			TokenID:    storeID,
			Type:       refType,
		})
	}
	return refs
}
