// Package handler exposes the peripheral node's registration and
// synchronization endpoints over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hcen/internal/platform/middleware"
	"hcen/internal/sync/models"
	"hcen/internal/sync/service"
	"hcen/internal/transport/http/shared"
	id "hcen/pkg/domain"
	dErrors "hcen/pkg/domain-errors"
	"hcen/pkg/requestcontext"
)

// Sweeper triggers one reconciliation pass on demand.
type Sweeper interface {
	Sweep(ctx context.Context)
}

// Handler handles patient and document registration endpoints.
type Handler struct {
	logger       *slog.Logger
	service      *service.Service
	sweeper      Sweeper
	jwtValidator middleware.JWTValidator
}

// New creates the sync Handler.
func New(svc *service.Service, sweeper Sweeper, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		service:      svc,
		sweeper:      sweeper,
		jwtValidator: jwtValidator,
	}
}

// Register registers the sync routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	syncRouter := chi.NewRouter()
	syncRouter.Use(middleware.Recovery(h.logger))
	syncRouter.Use(middleware.RequestID)
	syncRouter.Use(middleware.Logger(h.logger))
	syncRouter.Use(middleware.Timeout(60 * time.Second))
	syncRouter.Use(middleware.ContentTypeJSON)
	syncRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	syncRouter.Post("/pacientes", h.handleRegisterPatient)
	syncRouter.Get("/pacientes/{cedula}/verificar", h.handleVerifyPatient)
	syncRouter.Post("/documentos", h.handleRegisterDocument)
	syncRouter.Get("/sync/pendientes", h.handlePendingCounts)
	syncRouter.Post("/sync/sweep", h.handleSweep)

	r.Mount("/", syncRouter)
}

// syncResponse is the wire form of a SyncResult.
type syncResponse struct {
	Status  models.Status `json:"estado"`
	Message string        `json:"mensaje"`
	Detail  string        `json:"detalle,omitempty"`
}

func toResponse(result models.SyncResult) syncResponse {
	return syncResponse{Status: result.Status, Message: result.Message, Detail: result.ErrorDetail}
}

// registerPatientRequest is the inbound patient body. The tenant comes from
// the access token, never from the body.
type registerPatientRequest struct {
	Cedula        string     `json:"cedula"`
	DocumentType  string     `json:"tipoDocumento"`
	FirstName     string     `json:"primerNombre"`
	SecondName    string     `json:"segundoNombre"`
	FirstSurname  string     `json:"primerApellido"`
	SecondSurname string     `json:"segundoApellido"`
	Email         string     `json:"email"`
	BirthDate     *time.Time `json:"fechaNacimiento"`
}

// handleRegisterPatient stores the patient locally and attempts an inline
// central sync. Local persistence failing is an error; central sync failing
// is not, it only shows in the returned estado.
func (h *Handler) handleRegisterPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	tenantID := middleware.GetTenantID(r)

	var body registerPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.WarnContext(ctx, "invalid patient registration body",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	cedula, err := id.ParseCedula(body.Cedula)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	docType, err := id.ParseDocumentType(body.DocumentType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	req := models.UserSyncRequest{
		Cedula:        cedula,
		DocumentType:  docType,
		FirstName:     body.FirstName,
		SecondName:    body.SecondName,
		FirstSurname:  body.FirstSurname,
		SecondSurname: body.SecondSurname,
		Email:         body.Email,
		BirthDate:     body.BirthDate,
		TenantID:      &tenantID,
	}

	result, err := h.service.RegisterPatient(ctx, req)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInvalidInput) || dErrors.Is(err, dErrors.CodeConflict) {
			h.logger.WarnContext(ctx, "patient registration rejected",
				"request_id", requestID,
				"cedula", cedula,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "patient registration failed",
			"request_id", requestID,
			"cedula", cedula,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to register patient"))
		return
	}

	h.logger.InfoContext(ctx, "patient registered",
		"request_id", requestID,
		"cedula", cedula,
		"tenant_id", tenantID,
		"subject", requestcontext.Subject(ctx),
		"estado", result.Status,
	)
	shared.WriteJSON(w, http.StatusCreated, toResponse(result))
}

// handleVerifyPatient reports whether the cedula is known to the central
// registry. A central outage reads as "not registered".
func (h *Handler) handleVerifyPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cedula, err := id.ParseCedula(chi.URLParam(r, "cedula"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	exists := h.service.PatientExistsCentrally(ctx, cedula)
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"existe": exists})
}

// registerDocumentRequest is the inbound document body.
type registerDocumentRequest struct {
	DocumentID string     `json:"documentoId"`
	Cedula     string     `json:"cedula"`
	CreatedAt  *time.Time `json:"fechaCreacion"`
}

// handleRegisterDocument stores the document locally and attempts an inline
// batch sync for the patient's pending documents at this clinic.
func (h *Handler) handleRegisterDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	tenantID := middleware.GetTenantID(r)

	var body registerDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.WarnContext(ctx, "invalid document registration body",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	documentID, err := id.ParseDocumentID(body.DocumentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	cedula, err := id.ParseCedula(body.Cedula)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	createdAt := time.Now()
	if body.CreatedAt != nil {
		createdAt = *body.CreatedAt
	}

	doc := models.DocumentSyncRequest{
		DocumentID: documentID,
		TenantID:   tenantID,
		Cedula:     cedula,
		CreatedAt:  createdAt,
	}

	result, err := h.service.RegisterDocument(ctx, doc)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInvalidInput) || dErrors.Is(err, dErrors.CodeConflict) {
			h.logger.WarnContext(ctx, "document registration rejected",
				"request_id", requestID,
				"document_id", documentID,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "document registration failed",
			"request_id", requestID,
			"document_id", documentID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to register document"))
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toResponse(result))
}

// handlePendingCounts reports the current sync backlog.
func (h *Handler) handlePendingCounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, documents, err := h.service.PendingCounts(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "pending counts failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to count pending records"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]int{
		"usuariosPendientes":   users,
		"documentosPendientes": documents,
	})
}

// handleSweep runs one reconciliation pass inline. Operators use this after
// restoring central connectivity instead of waiting for the next tick.
func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	h.sweeper.Sweep(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
