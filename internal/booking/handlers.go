package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"baydelivery/internal/api"
	"baydelivery/internal/events"
	"baydelivery/internal/job"
	"baydelivery/internal/pricing"
	"baydelivery/pkg/db"
)

type Handlers struct {
	DB       *pgxpool.Pool
	Requests *Repository
	Jobs     *job.Repository
	Quotes   *QuoteCache
}

// CalculateRequest is the wire shape of POST /quote/calculate. Numeric
// fields ride as strings/numbers the json package handles; the service
// and payment fields accept the documented aliases.
type CalculateRequest struct {
	ServiceType   string `json:"service_type"`
	PaymentMethod string `json:"payment_method"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	JobAddress    string `json:"job_address"`
	Description   string `json:"description"`

	EstimatedHours     json.Number `json:"estimated_hours"`
	CrewSize           int         `json:"crew_size"`
	RequiresTwoWorkers bool        `json:"requires_two_workers"`

	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`

	GarbageBagCount int `json:"garbage_bag_count"`
	MattressesCount int `json:"mattresses_count"`
	BoxSpringsCount int `json:"box_springs_count"`

	ScrapPickupLocation string `json:"scrap_pickup_location"`

	RequestedJobDate    string `json:"requested_job_date"`
	RequestedTimeWindow string `json:"requested_time_window"`
	Notes               string `json:"notes"`
}

type quoteResponse struct {
	QuoteID    string   `json:"quote_id"`
	Service    string   `json:"service_type"`
	Currency   string   `json:"currency"`
	CashTotal  string   `json:"total_cash_cad"`
	EMTTotal   string   `json:"total_emt_cad"`
	Disclaimer string   `json:"disclaimer"`
	Notes      []string `json:"notes,omitempty"`
}

// toPricingRequest builds the typed pricing request. Unknown service or
// payment strings surface as validation errors here, before the engine.
func (cr *CalculateRequest) toPricingRequest() (*pricing.Request, error) {
	svc, err := pricing.ParseServiceType(cr.ServiceType)
	if err != nil {
		return nil, &pricing.ValidationError{Code: "SERVICE_TYPE_INVALID", Message: err.Error()}
	}
	pay, err := pricing.ParsePaymentMethod(cr.PaymentMethod)
	if err != nil {
		return nil, &pricing.ValidationError{Code: "PAYMENT_METHOD_INVALID", Message: err.Error()}
	}

	hours := decimal.Zero
	if cr.EstimatedHours != "" {
		hours, err = decimal.NewFromString(cr.EstimatedHours.String())
		if err != nil {
			return nil, &pricing.ValidationError{Code: "HOURS_INVALID", Message: "estimated hours is not a number"}
		}
	}

	req := &pricing.Request{
		Service:            svc,
		Payment:            pay,
		CustomerName:       cr.CustomerName,
		CustomerPhone:      cr.CustomerPhone,
		JobAddress:         cr.JobAddress,
		Description:        cr.Description,
		Hours:              hours,
		CrewSize:           cr.CrewSize,
		RequiresTwoWorkers: cr.RequiresTwoWorkers,
	}

	switch svc {
	case pricing.ServiceSmallMove, pricing.ServiceItemDelivery:
		if cr.PickupAddress != "" || cr.DropoffAddress != "" {
			req.Move = &pricing.MoveDetails{PickupAddress: cr.PickupAddress, DropoffAddress: cr.DropoffAddress}
		}
	case pricing.ServiceHaulAway:
		req.HaulAway = &pricing.HaulAwayDetails{
			GarbageBags: cr.GarbageBagCount,
			Mattresses:  cr.MattressesCount,
			BoxSprings:  cr.BoxSpringsCount,
		}
	case pricing.ServiceScrapPickup:
		loc := pricing.ScrapCurbside
		if cr.ScrapPickupLocation == string(pricing.ScrapInside) {
			loc = pricing.ScrapInside
		}
		req.Scrap = &pricing.ScrapDetails{Location: loc}
	}

	return req, nil
}

func (h Handlers) Calculate(w http.ResponseWriter, r *http.Request) {
	var cr CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&cr); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	req, err := cr.toPricingRequest()
	if err == nil {
		var b *pricing.Breakdown
		b, err = pricing.Calculate(req)
		if err == nil {
			q := h.Quotes.Put(req, b)
			api.WriteJSON(w, http.StatusOK, quoteResponse{
				QuoteID:    q.ID,
				Service:    string(b.Service),
				Currency:   "CAD",
				CashTotal:  b.CashTotal.StringFixed(2),
				EMTTotal:   b.EMTTotal.StringFixed(2),
				Disclaimer: b.Disclaimer,
				Notes:      b.Notes,
			})
			return
		}
	}

	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		api.WriteError(w, http.StatusBadRequest, verr.Code, verr.Error())
		return
	}
	api.WriteInternal(w, "quote calculate", err)
}

type decisionRequest struct {
	Action string `json:"action"`

	// Optional scheduling preferences, recorded on accept.
	RequestedJobDate    string `json:"requested_job_date"`
	RequestedTimeWindow string `json:"requested_time_window"`
	Notes               string `json:"notes"`
}

// CustomerDecision handles POST /quote/{id}/decision. The quote is not
// persisted until this endpoint runs: on first invocation the cached
// quote materializes as a customer_pending row, then the accept/decline
// transition applies in the same transaction. Replays on the same quote
// find the existing row and fall into the normal conflict path.
func (h Handlers) CustomerDecision(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "id")
	if quoteID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing quote id")
		return
	}

	var body decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	var target Status
	switch body.Action {
	case "accept":
		target = StatusCustomerAccepted
	case "decline":
		target = StatusCustomerDeclined
	default:
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "action must be accept or decline")
		return
	}

	cached, haveQuote := h.Quotes.Get(quoteID)

	var out *QuoteRequest
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		req, err := GetForUpdateByQuoteID(r.Context(), tx, quoteID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			if !haveQuote {
				return pgx.ErrNoRows
			}
			req, err = insertPending(r.Context(), tx, cached, body)
			if err != nil {
				return err
			}
		}

		if err := Transition(r.Context(), tx, req, target, api.ActorFromContext(r.Context())); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		writeTransitionError(w, err, "quote not found")
		return
	}

	h.Quotes.Delete(quoteID)
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"request_id": out.ID,
		"status":     out.Status,
	})
}

// insertPending materializes the cached quote as a customer_pending row
// and inserts its creation event. Runs inside the decision transaction.
func insertPending(ctx context.Context, tx pgx.Tx, cached *CachedQuote, body decisionRequest) (*QuoteRequest, error) {
	rawReq, err := json.Marshal(cached.Request)
	if err != nil {
		return nil, err
	}

	req := &QuoteRequest{
		ID:            uuid.NewString(),
		QuoteID:       cached.ID,
		ServiceType:   string(cached.Breakdown.Service),
		CustomerName:  cached.Request.CustomerName,
		CustomerPhone: cached.Request.CustomerPhone,
		JobAddress:    cached.Request.JobAddress,
		Description:   cached.Request.Description,
		PaymentMethod: string(cached.Request.Payment),
		CashTotal:     cached.Breakdown.CashTotal.StringFixed(2),
		EMTTotal:      cached.Breakdown.EMTTotal.StringFixed(2),

		RequestedJobDate:    body.RequestedJobDate,
		RequestedTimeWindow: body.RequestedTimeWindow,
		Notes:               body.Notes,
		RequestJSON:         rawReq,
		Status:              StatusCustomerPending,
	}
	if cached.Request.Move != nil {
		req.PickupAddress = cached.Request.Move.PickupAddress
		req.DropoffAddress = cached.Request.Move.DropoffAddress
	}

	if err := Insert(ctx, tx, req); err != nil {
		return nil, err
	}
	// Re-read under lock: the insert may have lost a race on quote_id, in
	// which case the winner's row is the one we transition.
	persisted, err := GetForUpdateByQuoteID(ctx, tx, cached.ID)
	if err != nil {
		return nil, err
	}
	if persisted.ID == req.ID {
		if err := events.Insert(ctx, tx, req.ID, "REQUEST_CREATED", "Quote request created", "customer",
			time.Now(), map[string]any{"quoteId": cached.ID, "serviceType": req.ServiceType}); err != nil {
			return nil, err
		}
	}
	return persisted, nil
}

type adminDecisionRequest struct {
	Action string `json:"action"`
}

// AdminDecision handles POST /admin/api/quote-requests/{id}/decision.
// Approval materializes the job inside the same transaction as the
// status write; if either fails the request stays customer_accepted and
// the approval can be retried.
func (h Handlers) AdminDecision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	var body adminDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	var target Status
	switch body.Action {
	case "approve":
		target = StatusAdminApproved
	case "reject":
		target = StatusRejected
	default:
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "action must be approve or reject")
		return
	}

	var (
		out *QuoteRequest
		j   *job.Job
	)
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		req, err := GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}

		if err := Transition(r.Context(), tx, req, target, api.ActorFromContext(r.Context())); err != nil {
			return err
		}

		if target == StatusAdminApproved {
			j, err = job.Materialize(r.Context(), tx, req.ID, req.RequestedJobDate, req.RequestedTimeWindow)
			if err != nil {
				return err
			}
		}
		out = req
		return nil
	})
	if err != nil {
		writeTransitionError(w, err, "quote request not found")
		return
	}

	resp := map[string]any{
		"request_id": out.ID,
		"status":     out.Status,
	}
	if j != nil {
		resp["job_id"] = j.ID
	}
	api.WriteJSON(w, http.StatusOK, resp)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" {
		if _, err := ParseStatus(status); err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status filter")
			return
		}
	}

	items, err := h.Requests.List(r.Context(), status, 50)
	if err != nil {
		api.WriteInternal(w, "list quote requests", err)
		return
	}
	if items == nil {
		items = []QuoteRequest{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return
	}

	req, err := h.Requests.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "quote request not found")
			return
		}
		api.WriteInternal(w, "get quote request", err)
		return
	}

	history, err := events.ListByRequest(r.Context(), h.DB, req.ID)
	if err != nil {
		api.WriteInternal(w, "list request events", err)
		return
	}

	resp := map[string]any{"request": req, "events": history}
	if req.Status == StatusAdminApproved {
		if j, err := h.Jobs.GetByRequestID(r.Context(), req.ID); err == nil {
			resp["job"] = j
		}
	}
	api.WriteJSON(w, http.StatusOK, resp)
}

func (h Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	items, err := h.Jobs.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		api.WriteInternal(w, "list jobs", err)
		return
	}
	if items == nil {
		items = []job.Job{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func writeTransitionError(w http.ResponseWriter, err error, notFoundMsg string) {
	var conflict *StateConflictError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", notFoundMsg)
	case errors.As(err, &conflict):
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", conflict.Error())
	default:
		api.WriteInternal(w, "transition", err)
	}
}
