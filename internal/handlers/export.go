// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	redis_a "github.com/anvikram/stocktrack-be/internal/adapters/redis_adapter"
	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
)

// Exports pull everything in one page. The ledger stays small enough that
// streaming is not worth the complexity.
const exportPageSize = 10000

// ExportMetadata contains metadata about the export
type ExportMetadata struct {
	ExportDate time.Time `json:"export_date"`
	TotalRows  int       `json:"total_rows"`
	Barcode    string    `json:"barcode,omitempty"`
	Direction  string    `json:"direction,omitempty"`
	DateFrom   string    `json:"date_from,omitempty"`
	DateTo     string    `json:"date_to,omitempty"`
}

// JSONExportResponse is the JSON export envelope
type JSONExportResponse struct {
	Transactions []domain.LedgerEntry `json:"transactions"`
	Metadata     ExportMetadata       `json:"metadata"`
}

// ExportHandler handles ledger export operations
type ExportHandler struct {
	ledger ports.LedgerRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(ledger ports.LedgerRepository, cache ports.CacheRepository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		ledger: ledger,
		cache:  cache,
		logger: logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/export/excel
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	entries, err := h.loadEntries(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load ledger for export",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateExcelFile(entries)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("ledger_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "excel export completed",
		slog.Int("total_rows", len(entries)),
		slog.String("filename", filename))
}

// ExportJSON handles GET /api/v1/export/json
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	cacheKey := redis_a.BuildKey(redis_a.PrefixExport, "json", h.cacheKeyFromParams(params))
	var cachedData []byte
	if err := h.cache.Get(ctx, cacheKey, &cachedData); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Length", strconv.Itoa(len(cachedData)))

		if _, err := w.Write(cachedData); err != nil {
			h.logger.ErrorContext(ctx, "failed to write cached JSON response",
				slog.String("error", err.Error()))
		}
		return
	}

	entries, err := h.loadEntries(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load ledger for export",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	response := JSONExportResponse{
		Transactions: entries,
		Metadata: ExportMetadata{
			ExportDate: time.Now(),
			TotalRows:  len(entries),
			Barcode:    params.Barcode,
			Direction:  params.Direction,
			DateFrom:   params.DateFrom,
			DateTo:     params.DateTo,
		},
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal export response",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to generate JSON")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseData)))

	if _, err := w.Write(responseData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write JSON response",
			slog.String("error", err.Error()))
		return
	}

	// Cache the serialized payload off the request path.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.cache.Set(cacheCtx, cacheKey, responseData); err != nil {
			h.logger.WarnContext(cacheCtx, "failed to cache export response",
				slog.String("error", err.Error()))
		}
	}()

	h.logger.InfoContext(ctx, "json export completed",
		slog.Int("total_rows", len(entries)))
}

func (h *ExportHandler) parseExportParams(r *http.Request) ports.LedgerListParams {
	params := parseLedgerListParams(r)
	params.Page = 1
	params.PageSize = exportPageSize
	params.SortBy = "created_at"
	params.SortOrder = "desc"
	return params
}

func (h *ExportHandler) loadEntries(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, error) {
	result, err := h.ledger.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return result.Entries, nil
}

var excelHeaders = []string{
	"ID", "Date", "Barcode", "Product Name", "Type", "Quantity",
	"Recipient Name", "Recipient Phone", "Memo", "Notes",
}

// generateExcelFile renders the ledger rows into an in-memory workbook.
func (h *ExportHandler) generateExcelFile(entries []domain.LedgerEntry) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range excelHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for i := range entries {
		dataRow := sheet.AddRow()
		for _, value := range h.entryToExcelRow(&entries[i]) {
			cell := dataRow.AddCell()
			cell.Value = value
		}
	}

	for i := 0; i < len(excelHeaders); i++ {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func (h *ExportHandler) entryToExcelRow(entry *domain.LedgerEntry) []string {
	return []string{
		entry.ID.String(),
		entry.CreatedAt.Format("2006-01-02 15:04:05"),
		entry.Barcode,
		entry.ProductName,
		string(entry.Direction),
		strconv.Itoa(entry.Quantity),
		entry.RecipientName,
		entry.RecipientPhone,
		entry.Memo,
		entry.Notes,
	}
}

func (h *ExportHandler) cacheKeyFromParams(params ports.LedgerListParams) string {
	key := "all"
	if params.Barcode != "" {
		key += "_bc_" + params.Barcode
	}
	if params.Direction != "" {
		key += "_dir_" + params.Direction
	}
	if params.DateFrom != "" {
		key += "_from_" + params.DateFrom
	}
	if params.DateTo != "" {
		key += "_to_" + params.DateTo
	}
	return key
}
