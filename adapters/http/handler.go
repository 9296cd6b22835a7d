// Package http provides the REST surface for table editing.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/gridpatch/adapters/xlsx"
	"github.com/artpar/gridpatch/app"
	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/domain/table"
	"github.com/artpar/gridpatch/ports"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 10 << 20

// ErrorResponseBody represents an error response body for swagger docs.
type ErrorResponseBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details for swagger docs.
type ErrorDetail struct {
	Code    string `json:"code" example:"out_of_range"`
	Message string `json:"message" example:"remove_row: row 4 outside 0..2"`
}

// DocumentResponse is a stored document.
type DocumentResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Rev       int64          `json:"rev"`
	Body      map[string]any `json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateDocumentRequest creates a document. An empty id is assigned.
type CreateDocumentRequest struct {
	ID   string         `json:"id,omitempty"`
	Body map[string]any `json:"body"`
}

// ShapeResponse describes how the table is stored.
type ShapeResponse struct {
	RowType    string `json:"row_type" example:"pricingRow"`
	CellsField string `json:"cells_field" example:"cells"`
	CellType   string `json:"cell_type" example:"string"`
	Structured bool   `json:"structured"`
}

// TableResponse is the current table of a document.
type TableResponse struct {
	DocumentID string        `json:"document_id"`
	Rev        int64         `json:"rev"`
	Field      string        `json:"field"`
	Shape      ShapeResponse `json:"shape"`
	Rows       int           `json:"rows"`
	Columns    int           `json:"columns"`
	Table      any           `json:"table"`
}

// ResultResponse is the outcome of a gesture.
type ResultResponse struct {
	DocumentID string      `json:"document_id"`
	Rev        int64       `json:"rev"`
	Patch      patch.Event `json:"patch"`
	Table      any         `json:"table"`
	Diagnostic string      `json:"diagnostic,omitempty"`
}

// PendingResponse is the confirmation state of a document.
type PendingResponse struct {
	DocumentID string `json:"document_id"`
	Pending    bool   `json:"pending"`
	Action     string `json:"action,omitempty" example:"remove_row"`
	Index      int    `json:"index"`
	Message    string `json:"message,omitempty" example:"Are you sure you want to delete the table row?"`
}

// UpdateCellRequest replaces the text of a string cell.
type UpdateCellRequest struct {
	Text string `json:"text"`
}

// ReorderRequest moves a row.
type ReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// VersionResponse represents the version endpoint response.
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
	Service string `json:"service" example:"gridpatch"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// errBadRequest marks input the handler could not parse.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// TableHandler forwards HTTP requests to the table editor.
type TableHandler struct {
	editor *app.TableEditor
	logger zerolog.Logger
}

// NewTableHandler creates a new table handler.
func NewTableHandler(editor *app.TableEditor, logger zerolog.Logger) *TableHandler {
	return &TableHandler{
		editor: editor,
		logger: logger.With().Str("component", "http").Logger(),
	}
}

// Routes returns the document and table routes, mounted under /api/v1.
func (h *TableHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)

	r.Route("/documents/{id}", func(r chi.Router) {
		r.Get("/", h.GetDocument)

		r.Route("/table", func(r chi.Router) {
			r.Get("/", h.GetTable)
			r.Delete("/", h.RequestClear)
			r.Post("/initialize", h.Initialize)
			r.Post("/rows", h.AddRow)
			r.Delete("/rows/{row}", h.RequestRemoveRow)
			r.Post("/columns", h.AddColumn)
			r.Delete("/columns/{cell}", h.RequestRemoveColumn)
			r.Put("/rows/{row}/cells/{cell}", h.UpdateCell)
			r.Post("/rows/{row}/cells/{cell}/patch", h.NestedPatch)
			r.Post("/reorder", h.Reorder)
			r.Post("/import", h.Import)
			r.Get("/export", h.Export)

			r.Get("/pending", h.GetPending)
			r.Post("/pending/confirm", h.Confirm)
			r.Post("/pending/cancel", h.Cancel)
		})
	})

	return r
}

// -----------------------------------------------------------------------------
// Documents
// -----------------------------------------------------------------------------

// ListDocuments lists documents holding the table.
//
//	@Summary	List documents
//	@Tags		Documents
//	@Produce	json
//	@Success	200	{array}	DocumentResponse
//	@Router		/api/v1/documents [get]
func (h *TableHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.editor.Documents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = documentResponse(d)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateDocument stores a new document.
//
//	@Summary	Create document
//	@Tags		Documents
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateDocumentRequest	true	"Document"
//	@Success	201		{object}	DocumentResponse
//	@Failure	400		{object}	ErrorResponseBody
//	@Failure	409		{object}	ErrorResponseBody
//	@Router		/api/v1/documents [post]
func (h *TableHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Body == nil {
		req.Body = map[string]any{}
	}
	doc, err := h.editor.CreateDocument(r.Context(), req.ID, req.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentResponse(doc))
}

// GetDocument returns a stored document.
//
//	@Summary	Get document
//	@Tags		Documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	DocumentResponse
//	@Failure	404	{object}	ErrorResponseBody
//	@Router		/api/v1/documents/{id} [get]
func (h *TableHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	_, doc, err := h.editor.Table(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

// -----------------------------------------------------------------------------
// Table gestures
// -----------------------------------------------------------------------------

// GetTable returns the table of a document.
//
//	@Summary	Get table
//	@Tags		Table
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	TableResponse
//	@Failure	404	{object}	ErrorResponseBody
//	@Router		/api/v1/documents/{id}/table [get]
func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	g, doc, err := h.editor.Table(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shape := h.editor.Shape()
	writeJSON(w, http.StatusOK, TableResponse{
		DocumentID: doc.ID,
		Rev:        doc.Rev,
		Field:      h.editor.Field(),
		Shape: ShapeResponse{
			RowType:    shape.RowTypeName,
			CellsField: shape.CellsFieldName,
			CellType:   shape.CellType.Name,
			Structured: shape.CellType.Structured,
		},
		Rows:    len(g),
		Columns: g.Columns(),
		Table:   g.Encode(shape),
	})
}

// Initialize creates a one-cell table.
//
//	@Summary	Initialize table
//	@Tags		Table
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	ResultResponse
//	@Router		/api/v1/documents/{id}/table/initialize [post]
func (h *TableHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	res, err := h.editor.Initialize(r.Context(), chi.URLParam(r, "id"))
	h.writeResult(w, r, res, err)
}

// AddRow appends an empty row.
//
//	@Summary	Add row
//	@Tags		Table
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	ResultResponse
//	@Router		/api/v1/documents/{id}/table/rows [post]
func (h *TableHandler) AddRow(w http.ResponseWriter, r *http.Request) {
	res, err := h.editor.AddRow(r.Context(), chi.URLParam(r, "id"))
	h.writeResult(w, r, res, err)
}

// AddColumn appends an empty cell to every row.
//
//	@Summary	Add column
//	@Tags		Table
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	ResultResponse
//	@Router		/api/v1/documents/{id}/table/columns [post]
func (h *TableHandler) AddColumn(w http.ResponseWriter, r *http.Request) {
	res, err := h.editor.AddColumn(r.Context(), chi.URLParam(r, "id"))
	h.writeResult(w, r, res, err)
}

// UpdateCell replaces the text of a string cell.
//
//	@Summary	Update string cell
//	@Tags		Table
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Document ID"
//	@Param		row		path		int					true	"Row index"
//	@Param		cell	path		int					true	"Cell index"
//	@Param		request	body		UpdateCellRequest	true	"Cell text"
//	@Success	200		{object}	ResultResponse
//	@Failure	422		{object}	ErrorResponseBody
//	@Router		/api/v1/documents/{id}/table/rows/{row}/cells/{cell} [put]
func (h *TableHandler) UpdateCell(w http.ResponseWriter, r *http.Request) {
	row, cell, err := cellParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req UpdateCellRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.editor.UpdateStringCell(r.Context(), chi.URLParam(r, "id"), req.Text, row, cell)
	h.writeResult(w, r, res, err)
}

// NestedPatch applies a cell-relative patch event to a structured cell.
//
//	@Summary	Patch structured cell
//	@Tags		Table
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string	true	"Document ID"
//	@Param		row		path		int		true	"Row index"
//	@Param		cell	path		int		true	"Cell index"
//	@Success	200		{object}	ResultResponse
//	@Failure	422		{object}	ErrorResponseBody
//	@Router		/api/v1/documents/{id}/table/rows/{row}/cells/{cell}/patch [post]
func (h *TableHandler) NestedPatch(w http.ResponseWriter, r *http.Request) {
	row, cell, err := cellParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var nested patch.Event
	if err := decodeBody(r, &nested); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.editor.ReceiveNestedPatch(r.Context(), chi.URLParam(r, "id"), nested, row, cell)
	h.writeResult(w, r, res, err)
}

// Reorder moves a row. Invalid moves succeed with a diagnostic and no patch.
//
//	@Summary	Reorder row
//	@Tags		Table
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Document ID"
//	@Param		request	body		ReorderRequest	true	"Move"
//	@Success	200		{object}	ResultResponse
//	@Failure	422		{object}	ErrorResponseBody
//	@Router		/api/v1/documents/{id}/table/reorder [post]
func (h *TableHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.editor.ReorderRow(r.Context(), chi.URLParam(r, "id"), req.From, req.To)
	h.writeResult(w, r, res, err)
}

// Import replaces the table with the first (or named) sheet of a workbook.
//
//	@Summary	Import spreadsheet
//	@Tags		Table
//	@Accept		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Produce	json
//	@Param		id		path		string	true	"Document ID"
//	@Param		sheet	query		string	false	"Sheet name"
//	@Success	200		{object}	ResultResponse
//	@Failure	400		{object}	ErrorResponseBody
//	@Router		/api/v1/documents/{id}/table/import [post]
func (h *TableHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, badRequest("read body: %v", err))
		return
	}
	matrix, err := xlsx.Import(bytes.NewReader(data), r.URL.Query().Get("sheet"))
	if err != nil {
		h.writeError(w, r, badRequest("%v", err))
		return
	}
	res, err := h.editor.Import(r.Context(), chi.URLParam(r, "id"), matrix)
	h.writeResult(w, r, res, err)
}

// Export writes the table as a workbook.
//
//	@Summary	Export spreadsheet
//	@Tags		Table
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param		id		path	string	true	"Document ID"
//	@Param		sheet	query	string	false	"Sheet name"
//	@Success	200
//	@Failure	422	{object}	ErrorResponseBody
//	@Router		/api/v1/documents/{id}/table/export [get]
func (h *TableHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, _, err := h.editor.Table(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := xlsx.Export(&buf, g, h.editor.Shape(), r.URL.Query().Get("sheet")); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error().Err(err).Msg("failed to write export")
	}
}

// -----------------------------------------------------------------------------
// Confirmation
// -----------------------------------------------------------------------------

// RequestRemoveRow asks for confirmation before removing a row.
//
//	@Summary	Request row removal
//	@Tags		Confirmation
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Param		row	path		int		true	"Row index"
//	@Success	202	{object}	PendingResponse
//	@Router		/api/v1/documents/{id}/table/rows/{row} [delete]
func (h *TableHandler) RequestRemoveRow(w http.ResponseWriter, r *http.Request) {
	row, err := intParam(r, "row")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	p, err := h.editor.RequestRemoveRow(r.Context(), id, row)
	h.writePending(w, r, id, p, err)
}

// RequestRemoveColumn asks for confirmation before removing a column.
//
//	@Summary	Request column removal
//	@Tags		Confirmation
//	@Produce	json
//	@Param		id		path		string	true	"Document ID"
//	@Param		cell	path		int		true	"Column index"
//	@Success	202		{object}	PendingResponse
//	@Router		/api/v1/documents/{id}/table/columns/{cell} [delete]
func (h *TableHandler) RequestRemoveColumn(w http.ResponseWriter, r *http.Request) {
	cell, err := intParam(r, "cell")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	p, err := h.editor.RequestRemoveColumn(r.Context(), id, cell)
	h.writePending(w, r, id, p, err)
}

// RequestClear asks for confirmation before removing the whole table.
//
//	@Summary	Request table clear
//	@Tags		Confirmation
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	202	{object}	PendingResponse
//	@Router		/api/v1/documents/{id}/table [delete]
func (h *TableHandler) RequestClear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.editor.RequestClear(r.Context(), id)
	h.writePending(w, r, id, p, err)
}

// GetPending returns the confirmation awaiting an answer.
//
//	@Summary	Get pending confirmation
//	@Tags		Confirmation
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	PendingResponse
//	@Router		/api/v1/documents/{id}/table/pending [get]
func (h *TableHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.editor.Pending(id)
	if !ok {
		writeJSON(w, http.StatusOK, PendingResponse{DocumentID: id})
		return
	}
	writeJSON(w, http.StatusOK, pendingResponse(id, p))
}

// Confirm applies the pending destructive operation.
//
//	@Summary	Confirm pending operation
//	@Tags		Confirmation
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	ResultResponse
//	@Failure	409	{object}	ErrorResponseBody	"Nothing pending"
//	@Failure	422	{object}	ErrorResponseBody
//	@Router		/api/v1/documents/{id}/table/pending/confirm [post]
func (h *TableHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	res, err := h.editor.ConfirmPending(r.Context(), chi.URLParam(r, "id"))
	h.writeResult(w, r, res, err)
}

// Cancel drops the pending destructive operation.
//
//	@Summary	Cancel pending operation
//	@Tags		Confirmation
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	PendingResponse
//	@Failure	409	{object}	ErrorResponseBody	"Nothing pending"
//	@Router		/api/v1/documents/{id}/table/pending/cancel [post]
func (h *TableHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.editor.CancelPending(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := pendingResponse(id, p)
	resp.Pending = false
	writeJSON(w, http.StatusOK, resp)
}

// -----------------------------------------------------------------------------
// System
// -----------------------------------------------------------------------------

// Health returns a simple liveness check.
//
//	@Summary	Liveness check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// VersionHandler returns the service version.
//
//	@Summary	Get service version
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	VersionResponse
//	@Router		/version [get]
func VersionHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, VersionResponse{Version: version, Service: "gridpatch"})
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (h *TableHandler) writeResult(w http.ResponseWriter, r *http.Request, res app.Result, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := ResultResponse{
		DocumentID: res.Document.ID,
		Rev:        res.Document.Rev,
		Patch:      res.Patch,
		Table:      res.Grid.Encode(h.editor.Shape()),
		Diagnostic: res.Diagnostic,
	}
	if resp.Patch == nil {
		resp.Patch = patch.Event{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TableHandler) writePending(w http.ResponseWriter, r *http.Request, id string, p table.Pending, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, pendingResponse(id, p))
}

func (h *TableHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		h.logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, ErrorResponseBody{Error: ErrorDetail{Code: code, Message: err.Error()}})
}

// classify maps an error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ports.ErrDocumentNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ports.ErrDocumentExists):
		return http.StatusConflict, "document_exists"
	case errors.Is(err, ports.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, table.ErrNoPending):
		return http.StatusConflict, "no_pending"
	case errors.Is(err, table.ErrOutOfRange):
		return http.StatusUnprocessableEntity, "out_of_range"
	case errors.Is(err, table.ErrWrongCellType):
		return http.StatusUnprocessableEntity, "wrong_cell_type"
	case errors.Is(err, table.ErrMalformedTable):
		return http.StatusUnprocessableEntity, "malformed_table"
	case errors.Is(err, patch.ErrPathNotFound),
		errors.Is(err, patch.ErrTypeMismatch),
		errors.Is(err, patch.ErrInvalidInsert):
		return http.StatusUnprocessableEntity, "invalid_patch"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func cellParams(r *http.Request) (int, int, error) {
	row, err := intParam(r, "row")
	if err != nil {
		return 0, 0, err
	}
	cell, err := intParam(r, "cell")
	if err != nil {
		return 0, 0, err
	}
	return row, cell, nil
}

func documentResponse(d ports.Document) DocumentResponse {
	return DocumentResponse{
		ID:        d.ID,
		Type:      d.Type,
		Rev:       d.Rev,
		Body:      d.Body,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func pendingResponse(id string, p table.Pending) PendingResponse {
	return PendingResponse{
		DocumentID: id,
		Pending:    true,
		Action:     p.Action.String(),
		Index:      p.Index,
		Message:    p.Message,
	}
}
