package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/taxlens/gst-optimizer/internal/api/middleware"
	"github.com/taxlens/gst-optimizer/internal/clients"
	"github.com/taxlens/gst-optimizer/internal/config"
	"github.com/taxlens/gst-optimizer/internal/ingest"
	"github.com/taxlens/gst-optimizer/internal/pipeline"
)

// UploadHandler handles invoice batch uploads.
type UploadHandler struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(cfg *config.Config, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		cfg: cfg,
		log: log,
	}
}

// Upload handles POST /api/upload. It decodes the multipart file, validates
// the schema, runs the analysis pipeline, and responds with the assembled
// payload. Decode and schema failures reject the request; stage failures
// degrade inside the pipeline.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "No selected file")
		return
	}

	decoder, err := ingest.ForFilename(header.Filename)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Only CSV and XLSX files are allowed")
		return
	}

	ds, err := decoder.Decode(file)
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to decode upload")
		middleware.WriteError(w, http.StatusBadRequest, "Error processing file: "+err.Error())
		return
	}

	if err := pipeline.NewSchemaValidator().Validate(ds); err != nil {
		var schemaErr *pipeline.SchemaError
		if errors.As(err, &schemaErr) {
			middleware.WriteError(w, http.StatusBadRequest,
				"Missing required columns: "+strings.Join(schemaErr.Missing, ", "))
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := pipeline.NewAnalysisPipeline(
		h.log,
		h.cfg.Trees,
		h.cfg.Contamination,
		h.cfg.Seed,
		decimal.NewFromFloat(h.cfg.HighValueThreshold),
	)
	ds = p.Run(ds)

	insights := pipeline.NewInsightGenerator(h.log).Generate(ds)

	h.log.Info().
		Str("filename", header.Filename).
		Int("invoices", ds.Len()).
		Msg("Upload processed")

	middleware.WriteJSON(w, http.StatusOK, pipeline.Assemble(ds, insights))
}

// ClientsHandler handles client registry endpoints.
type ClientsHandler struct {
	repo clients.Repository
	log  zerolog.Logger
}

// NewClientsHandler creates a new clients handler.
func NewClientsHandler(repo clients.Repository, log zerolog.Logger) *ClientsHandler {
	return &ClientsHandler{
		repo: repo,
		log:  log,
	}
}

// ListClients handles GET /api/clients
func (h *ClientsHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.repo.List(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list clients")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	// Return array directly for frontend compatibility
	if list == nil {
		list = []*clients.Client{}
	}
	middleware.WriteJSON(w, http.StatusOK, list)
}

// CreateClient handles POST /api/clients
func (h *ClientsHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           *string  `json:"name"`
		GSTIN          *string  `json:"gstin"`
		BusinessType   *string  `json:"business_type"`
		AnnualTurnover *float64 `json:"annual_turnover"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var missing []string
	if req.Name == nil {
		missing = append(missing, "name")
	}
	if req.GSTIN == nil {
		missing = append(missing, "gstin")
	}
	if req.BusinessType == nil {
		missing = append(missing, "business_type")
	}
	if req.AnnualTurnover == nil {
		missing = append(missing, "annual_turnover")
	}
	if len(missing) > 0 {
		middleware.WriteError(w, http.StatusBadRequest,
			"Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	client := &clients.Client{
		Name:           *req.Name,
		GSTIN:          *req.GSTIN,
		BusinessType:   *req.BusinessType,
		AnnualTurnover: *req.AnnualTurnover,
	}

	if err := h.repo.Add(r.Context(), client); err != nil {
		h.log.Error().Err(err).Msg("Failed to create client")
		middleware.WriteError(w, http.StatusInternalServerError, "Error creating client")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, client)
}
