package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/derma-consult/internal/config"
	"github.com/kirillkom/derma-consult/internal/core/domain"
	"github.com/kirillkom/derma-consult/internal/core/ports"
	"github.com/kirillkom/derma-consult/internal/observability/metrics"
)

type Router struct {
	cfg     config.Config
	consult ports.ConsultationService
	corpus  ports.CorpusManager
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	consult ports.ConsultationService,
	corpus ports.CorpusManager,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:     cfg,
		consult: consult,
		corpus:  corpus,
		metrics: m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/readyz", rt.readyz)
	mux.HandleFunc("/v1/consultations", rt.createConsultation)
	mux.HandleFunc("/v1/corpus", rt.corpusStatus)
	mux.HandleFunc("/v1/corpus/documents", rt.listCorpusDocuments)
	mux.HandleFunc("/v1/corpus/documents/", rt.getCorpusDocument)
	mux.HandleFunc("/v1/corpus/reload", rt.reloadCorpus)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.ServiceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = recoverMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports whether the reference corpus holds at least one cached
// document. Callers use it to choose between full and no-attachment mode.
func (rt *Router) readyz(w http.ResponseWriter, _ *http.Request) {
	status := rt.corpus.Status()
	if !status.Ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":           "empty",
			"cached_documents": status.Documents,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ready",
		"cached_documents": status.Documents,
	})
}

func (rt *Router) createConsultation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.ConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	started := time.Now()
	reply, err := rt.consult.Consult(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		outcome := "ok"
		if reply.Mode == domain.ModeError {
			outcome = "error"
		}
		rt.metrics.RecordConsultation(rt.cfg.ServiceName, string(reply.Mode), outcome, time.Since(started))
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) corpusStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	status := rt.corpus.Status()
	state := "empty"
	if status.Ready {
		state = "ready"
	}
	filenames := status.Filenames
	if filenames == nil {
		filenames = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "reference corpus",
		"status":           state,
		"cached_documents": status.Documents,
		"documents":        filenames,
	})
}

func (rt *Router) listCorpusDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	docs := rt.corpus.Documents()
	if len(docs) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reference corpus is empty"})
		return
	}

	views := make([]corpusDocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, corpusDocumentViewFrom(doc))
	}
	writeJSON(w, http.StatusOK, views)
}

func (rt *Router) getCorpusDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	filename := strings.TrimPrefix(r.URL.Path, "/v1/corpus/documents/")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document filename is required"})
		return
	}

	doc, ok := rt.corpus.Document(filename)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}
	writeJSON(w, http.StatusOK, corpusDocumentViewFrom(doc))
}

func (rt *Router) reloadCorpus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	count, err := rt.corpus.Reload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.SetCorpusDocuments(count)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "reloaded",
		"cached_documents": count,
	})
}

// corpusDocumentView is the external document shape. The provider handle
// itself stays internal; clients only learn whether one exists.
type corpusDocumentView struct {
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	MimeType   string    `json:"mime_type"`
	Summary    string    `json:"summary,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	HasHandle  bool      `json:"has_handle"`
}

func corpusDocumentViewFrom(doc domain.ReferenceDocument) corpusDocumentView {
	return corpusDocumentView{
		Filename:   doc.Filename,
		SizeBytes:  doc.SizeBytes,
		MimeType:   doc.MimeType,
		Summary:    doc.Summary,
		UploadedAt: doc.UploadedAt,
		HasHandle:  doc.HasHandle(),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
