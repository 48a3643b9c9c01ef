package application

import (
	"context"
	"errors"
	"strings"

	"ave-shopify-connector/internal/domain"
	"ave-shopify-connector/internal/infrastructure/metrics"
	"ave-shopify-connector/internal/ports"

	"github.com/rs/zerolog"
)

// OrderTarget identifies the single store order an action applies to: the
// company/agent pair that resolves the store credential and the Ave order
// number that resolves the store-side order id.
type OrderTarget struct {
	CompanyID   string `json:"idempresa"`
	AgentID     int64  `json:"id_agente"`
	OrderNumber string `json:"orderId"`
}

// NoteInput is an AddNote request.
type NoteInput struct {
	OrderTarget
	Note string `json:"note"`
}

// CommentInput is an AddTimelineComment request.
type CommentInput struct {
	OrderTarget
	Message string `json:"message"`
}

// CancelInput is a Cancel request. Reason defaults to DECLINED.
type CancelInput struct {
	OrderTarget
	Reason string `json:"reason,omitempty"`
}

// StatusInput is a ChangeStatus request carrying the CRM-side status label.
type StatusInput struct {
	OrderTarget
	Status string `json:"status"`
}

// resolvedTarget is an OrderTarget after both lookups succeeded.
type resolvedTarget struct {
	cred    domain.StoreCredential
	orderID string
}

// OrderService orchestrates order creation fan-out and single-store order
// actions addressed by Ave order number.
type OrderService struct {
	crm         ports.CRMGateway
	stores      ports.StoreClient
	metrics     *metrics.Collector
	logger      zerolog.Logger
	concurrency int
}

func NewOrderService(crm ports.CRMGateway, stores ports.StoreClient, collector *metrics.Collector, logger zerolog.Logger, concurrency int) *OrderService {
	if concurrency <= 0 {
		concurrency = DefaultFanOutConcurrency
	}
	return &OrderService{
		crm:         crm,
		stores:      stores,
		metrics:     collector,
		logger:      logger.With().Str("component", "order_service").Logger(),
		concurrency: concurrency,
	}
}

// Post creates the order in every store tied to the company. Returns a nil
// report when the company has no stores configured.
func (s *OrderService) Post(ctx context.Context, authToken string, in domain.OrderInput) (*domain.FanOutReport, error) {
	stores := s.crm.StoreTokensByCompany(ctx, in.CompanyID, authToken)
	if len(stores) == 0 {
		s.metrics.Skipped("order_post")
		s.logger.Info().Str("company", in.CompanyID).Msg("no stores configured, skipping order post")
		return nil, nil
	}

	order := BuildOrder(in)

	return fanOut(ctx, stores, s.concurrency, func(ctx context.Context, cred domain.StoreCredential) domain.StoreResult {
		res := domain.StoreResult{Shop: cred.URL, Sent: order}
		created, err := s.stores.CreateOrder(ctx, cred, order)
		if err != nil {
			res.Error = err.Error()
			s.logger.Warn().Err(err).Str("shop", cred.URL).Msg("order create failed")
		} else {
			res.Success = true
			res.Result = created
		}
		s.metrics.Dispatch("order_post", res.Success)
		return res
	}), nil
}

// Cancel cancels the store order behind an Ave order number.
func (s *OrderService) Cancel(ctx context.Context, authToken string, in CancelInput) (*domain.OrderActionResult, error) {
	target, err := s.resolveTarget(ctx, authToken, in.OrderTarget)
	if err != nil {
		return s.targetFailure("order_cancel", err)
	}
	reason := in.Reason
	if reason == "" {
		reason = "DECLINED"
	}
	raw, err := s.stores.CancelOrder(ctx, target.cred, target.orderID, reason)
	return s.actionResult("order_cancel", target, raw, err)
}

// AddNote replaces the note on the store order behind an Ave order number.
func (s *OrderService) AddNote(ctx context.Context, authToken string, in NoteInput) (*domain.OrderActionResult, error) {
	target, err := s.resolveTarget(ctx, authToken, in.OrderTarget)
	if err != nil {
		return s.targetFailure("order_note", err)
	}
	raw, err := s.stores.AddNote(ctx, target.cred, target.orderID, in.Note)
	return s.actionResult("order_note", target, raw, err)
}

// AddTimelineComment appends a timeline comment to the store order behind an
// Ave order number.
func (s *OrderService) AddTimelineComment(ctx context.Context, authToken string, in CommentInput) (*domain.OrderActionResult, error) {
	target, err := s.resolveTarget(ctx, authToken, in.OrderTarget)
	if err != nil {
		return s.targetFailure("order_comment", err)
	}
	raw, err := s.stores.AddTimelineComment(ctx, target.cred, target.orderID, in.Message)
	return s.actionResult("order_comment", target, raw, err)
}

// ChangeStatus mirrors a CRM status transition onto the store order: always
// write a note recording the transition, then run the store action mapped to
// the status. The two sub-steps are reported independently and a failing
// step never hides the other.
func (s *OrderService) ChangeStatus(ctx context.Context, authToken string, in StatusInput) (*domain.StatusChangeReport, error) {
	if strings.TrimSpace(in.Status) == "" {
		return nil, domain.NewValidationError("status", "El estado no puede estar vacio.")
	}
	target, err := s.resolveTarget(ctx, authToken, in.OrderTarget)
	if err != nil {
		if domain.IsValidationError(err) {
			return nil, err
		}
		s.metrics.Dispatch("order_status", false)
		return &domain.StatusChangeReport{Error: err.Error()}, nil
	}

	report := &domain.StatusChangeReport{Success: true}
	report.Note = s.rawResult(s.stores.AddNote(ctx, target.cred, target.orderID, "Nota desde Aveonline - estado de pedido: "+in.Status))
	report.Change = s.statusAction(ctx, target, in.Status)
	s.metrics.Dispatch("order_status", report.Success)
	return report, nil
}

// statusAction maps a normalized CRM status label to its store operation.
// Unknown labels fail the change step without failing the call.
func (s *OrderService) statusAction(ctx context.Context, target resolvedTarget, status string) *domain.OrderActionResult {
	switch normalizeStatus(status) {
	case "solicitada", "sin confirmar", "pre confirmado", "en alistamiento",
		"lista para despacho", "procesando guia", "en bodega de origen", "en devolucion":
		return s.rawResult(s.stores.OpenOrder(ctx, target.cred, target.orderID))
	case "en reparto":
		return s.rawResult(s.stores.FulfillOrder(ctx, target.cred, target.orderID))
	case "entregada":
		return s.rawResult(s.stores.CloseOrder(ctx, target.cred, target.orderID))
	case "anulada", "anulada full":
		if _, err := s.stores.AddNote(ctx, target.cred, target.orderID, "Pedido marcado como 'Anulado' desde Aveonline"); err != nil {
			return &domain.OrderActionResult{Error: err.Error()}
		}
		return s.rawResult(s.stores.CloseOrder(ctx, target.cred, target.orderID))
	case "modificado por comprador", "error en cobertura", "direccion incompleta",
		"sin producto", "sin inventario", "preparado por otro operador", "novedad":
		return s.rawResult(s.stores.AddNote(ctx, target.cred, target.orderID, "Pedido con estado: "+ucFirst(normalizeStatus(status))))
	default:
		return &domain.OrderActionResult{Error: "Estado no reconocido: " + status}
	}
}

// resolveTarget validates the addressing fields and runs the two CRM
// lookups. Validation failures come back as ValidationError; lookup misses
// as plain errors the callers fold into soft results.
func (s *OrderService) resolveTarget(ctx context.Context, authToken string, t OrderTarget) (resolvedTarget, error) {
	var zero resolvedTarget
	if strings.TrimSpace(t.OrderNumber) == "" {
		return zero, domain.NewValidationError("orderId", "El ID de la orden no puede estar vacio.")
	}
	if strings.TrimSpace(t.CompanyID) == "" {
		return zero, domain.NewValidationError("idempresa", "El ID de la empresa no puede estar vacio.")
	}
	if t.AgentID == 0 {
		return zero, domain.NewValidationError("id_agente", "El ID del agente no puede estar vacio.")
	}

	cred := s.crm.StoreTokenByCompanyAgent(ctx, t.CompanyID, authToken, t.AgentID)
	if cred == nil {
		return zero, errors.New("No se encontro una tienda Shopify asociada a la empresa y el agente.")
	}
	record, err := s.crm.OrderByNumber(ctx, authToken, t.OrderNumber)
	if err != nil {
		return zero, err
	}
	if record == nil || record.ShopifyOrderID == "" {
		return zero, errors.New("No se encontro la orden " + t.OrderNumber + " en el registro de pedidos.")
	}
	return resolvedTarget{cred: *cred, orderID: record.ShopifyOrderID}, nil
}

// targetFailure converts a resolveTarget error: validation errors stay hard,
// lookup misses become a failed result.
func (s *OrderService) targetFailure(operation string, err error) (*domain.OrderActionResult, error) {
	if domain.IsValidationError(err) {
		return nil, err
	}
	s.metrics.Dispatch(operation, false)
	return &domain.OrderActionResult{Error: err.Error()}, nil
}

func (s *OrderService) actionResult(operation string, target resolvedTarget, raw any, err error) (*domain.OrderActionResult, error) {
	res := s.rawResult(raw, err)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", target.cred.URL).Str("order", target.orderID).Str("operation", operation).Msg("order action failed")
	}
	s.metrics.Dispatch(operation, res.Success)
	return res, nil
}

func (s *OrderService) rawResult(raw any, err error) *domain.OrderActionResult {
	if err != nil {
		return &domain.OrderActionResult{Error: err.Error()}
	}
	return &domain.OrderActionResult{Success: true, Result: raw}
}

// normalizeStatus lowercases, trims and collapses internal whitespace so the
// CRM's free-form status labels compare stably.
func normalizeStatus(status string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(status))), " ")
}

func ucFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
