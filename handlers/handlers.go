package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"dispodeals/dom"
	"dispodeals/models"
	"dispodeals/scheduler"
	"dispodeals/scraper"
	"dispodeals/services"

	"github.com/gorilla/mux"
)

const defaultMaxBodyBytes = 1 << 20

type Handlers struct {
	deals        *services.DealService
	parser       *scraper.Parser
	taskManager  *scheduler.TaskManager
	maxBodyBytes int64
}

// NewHandlers wires the HTTP handlers. taskManager may be nil when live
// scanning is disabled.
func NewHandlers(deals *services.DealService, parser *scraper.Parser, taskManager *scheduler.TaskManager, maxBodyBytes int64) *Handlers {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Handlers{
		deals:        deals,
		parser:       parser,
		taskManager:  taskManager,
		maxBodyBytes: maxBodyBytes,
	}
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"service": "ddd-api",
	})
}

// IngestDeal accepts a single raw deal
func (h *Handlers) IngestDeal(w http.ResponseWriter, r *http.Request) {
	var body interface{}
	if !h.decodeBody(w, r, &body, true) {
		return
	}

	resp, err := h.deals.Ingest(r.Context(), body)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Reason)
			return
		}
		log.Printf("Failed to ingest deal: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store deal")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetEnhancedDeals is a placeholder until enrichment exists; query
// parameters are accepted and ignored
func (h *Handlers) GetEnhancedDeals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.EnhancedResponse{Deals: []models.Deal{}})
}

// IngestExtension accepts a batch payload produced by a menu scan
func (h *Handlers) IngestExtension(w http.ResponseWriter, r *http.Request) {
	var payload models.ExtensionPayload
	if !h.decodeBody(w, r, &payload, false) {
		return
	}

	resp, err := h.deals.IngestBatch(r.Context(), &payload)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Reason)
			return
		}
		log.Printf("Failed to ingest batch: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to store batch")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type analyzeRequest struct {
	Site       string              `json:"site"`
	URL        string              `json:"url"`
	HTML       string              `json:"html"`
	Previous   []models.ScoredItem `json:"previous"`
	ReturnHTML bool                `json:"return_html"`
}

type analyzeResponse struct {
	OK     bool                 `json:"ok"`
	Items  []models.ScoredItem  `json:"items"`
	Count  int                  `json:"count"`
	Parser string               `json:"parser"`
	Badges map[models.Badge]int `json:"badges,omitempty"`
	HTML   string               `json:"html,omitempty"`
}

// Analyze runs the parser over posted menu HTML. When previous items are
// sent they are re-attached to the cards found in this document.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	site := models.ParseSite(req.Site)
	if !site.Supported() && req.URL != "" {
		site = models.DetectSite(req.URL)
	}
	if !site.Supported() {
		parser := req.Site
		if parser == "" {
			parser = string(models.SiteUnknown)
		}
		writeJSON(w, http.StatusOK, analyzeResponse{Items: []models.ScoredItem{}, Parser: parser})
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		writeError(w, http.StatusBadRequest, "html required")
		return
	}

	doc, err := dom.ParseHTMLString(req.HTML)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid html")
		return
	}

	items := scraper.ScoreItems(h.parser.ParseItems(doc, site))
	if len(req.Previous) > 0 {
		items = scraper.Reattach(req.Previous, items)
	}

	resp := analyzeResponse{
		OK:     true,
		Items:  items,
		Count:  len(items),
		Parser: string(site),
		Badges: models.BadgeCounts(items),
	}
	if req.ReturnHTML {
		if resp.HTML, err = doc.Render(); err != nil {
			log.Printf("Failed to render analyzed html: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitScan queues a live scan of a menu URL
func (h *Handlers) SubmitScan(w http.ResponseWriter, r *http.Request) {
	if h.taskManager == nil {
		writeError(w, http.StatusServiceUnavailable, models.ErrBrowserDisabled.Error())
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if !h.decodeBody(w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}

	task, err := h.taskManager.SubmitTask(strings.TrimSpace(req.URL))
	if err != nil {
		if errors.Is(err, models.ErrUnsupportedSite) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to submit scan")
		return
	}

	view := task.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"ok":      true,
		"task_id": view.ID,
		"status":  view.Status,
		"message": view.Message,
	})
}

// GetScanTask returns the status of a scan task
func (h *Handlers) GetScanTask(w http.ResponseWriter, r *http.Request) {
	if h.taskManager == nil {
		writeError(w, http.StatusServiceUnavailable, models.ErrBrowserDisabled.Error())
		return
	}

	task, err := h.taskManager.GetTask(mux.Vars(r)["taskId"])
	if err != nil {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	writeJSON(w, http.StatusOK, task.Snapshot())
}

// GetScanStats returns statistics about the task manager
func (h *Handlers) GetScanStats(w http.ResponseWriter, r *http.Request) {
	if h.taskManager == nil {
		writeError(w, http.StatusServiceUnavailable, models.ErrBrowserDisabled.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":     h.taskManager.GetStats(),
		"timestamp": time.Now(),
	})
}

// decodeBody reads a JSON body of at most maxBodyBytes. With allowEmpty an
// empty body decodes as an empty object.
func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.UseNumber()

	err := dec.Decode(dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF) && allowEmpty:
		if v, ok := dst.(*interface{}); ok {
			*v = map[string]interface{}{}
		}
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid request body")
	return false
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"ok": false, "error": message})
}
