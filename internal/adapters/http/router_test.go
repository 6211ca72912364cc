package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/derma-consult/internal/config"
	"github.com/kirillkom/derma-consult/internal/core/domain"
	"github.com/kirillkom/derma-consult/internal/core/ports"
	"github.com/kirillkom/derma-consult/internal/observability/metrics"
)

type consultServiceFake struct {
	req       domain.ConsultationRequest
	reply     domain.ConsultationReply
	err       error
	panicking bool
}

func (f *consultServiceFake) Consult(_ context.Context, req domain.ConsultationRequest) (domain.ConsultationReply, error) {
	if f.panicking {
		panic("orchestrator exploded")
	}
	f.req = req
	if f.err != nil {
		return domain.ConsultationReply{}, f.err
	}
	return f.reply, nil
}

type corpusManagerFake struct {
	docs      []domain.ReferenceDocument
	reloadErr error
	reloads   int
}

func (f *corpusManagerFake) Sync(context.Context) (int, error) { return len(f.docs), nil }
func (f *corpusManagerFake) Reload(context.Context) (int, error) {
	f.reloads++
	if f.reloadErr != nil {
		return 0, f.reloadErr
	}
	return len(f.docs), nil
}
func (f *corpusManagerFake) Status() domain.CorpusStatus {
	names := make([]string, 0, len(f.docs))
	for _, doc := range f.docs {
		names = append(names, doc.Filename)
	}
	return domain.CorpusStatus{Ready: len(f.docs) > 0, Documents: len(f.docs), Filenames: names}
}
func (f *corpusManagerFake) Documents() []domain.ReferenceDocument { return f.docs }
func (f *corpusManagerFake) Document(filename string) (domain.ReferenceDocument, bool) {
	for _, doc := range f.docs {
		if doc.Filename == filename {
			return doc, true
		}
	}
	return domain.ReferenceDocument{}, false
}

func newTestHandler(consult ports.ConsultationService, corpus ports.CorpusManager) http.Handler {
	cfg := config.Config{ServiceName: "derma-consult-test"}
	return NewRouter(cfg, consult, corpus, metrics.NewHTTPServerMetrics(cfg.ServiceName)).Handler()
}

func seededCorpus() *corpusManagerFake {
	return &corpusManagerFake{docs: []domain.ReferenceDocument{
		{
			Filename:   "Injectable Fillers.pdf",
			Handle:     "files/fillers",
			MimeType:   "application/pdf",
			SizeBytes:  2048,
			UploadedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
	}}
}

func TestCreateConsultationReturnsReply(t *testing.T) {
	service := &consultServiceFake{reply: domain.ConsultationReply{
		ConsultationID:     "c-1",
		Text:               "상담 답변",
		Mode:               domain.ModeFull,
		Category:           "필러",
		ReferencedDocument: "Injectable Fillers.pdf",
	}}
	handler := newTestHandler(service, seededCorpus())

	payload, _ := json.Marshal(map[string]any{
		"query":   "필러 맞고 싶어요",
		"history": []map[string]string{{"role": "user", "content": "안녕하세요"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/consultations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var reply domain.ConsultationReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.ConsultationID != "c-1" || reply.Mode != domain.ModeFull {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if service.req.Query != "필러 맞고 싶어요" {
		t.Fatalf("expected query forwarded, got %q", service.req.Query)
	}
	if len(service.req.History) != 1 || service.req.History[0].Content != "안녕하세요" {
		t.Fatalf("expected history forwarded, got %+v", service.req.History)
	}
}

func TestCreateConsultationRejectsInvalidJSON(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{}, seededCorpus())

	req := httptest.NewRequest(http.MethodPost, "/v1/consultations", strings.NewReader("{not json"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestCreateConsultationMapsInvalidInputTo400(t *testing.T) {
	service := &consultServiceFake{err: domain.WrapError(domain.ErrInvalidInput, "consult", errors.New("empty query"))}
	handler := newTestHandler(service, seededCorpus())

	req := httptest.NewRequest(http.MethodPost, "/v1/consultations", strings.NewReader(`{"query":""}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "empty query") {
		t.Fatalf("expected error body, got %s", res.Body.String())
	}
}

func TestCreateConsultationMapsTemporaryTo502(t *testing.T) {
	service := &consultServiceFake{err: domain.WrapError(domain.ErrTemporary, "gemini.generate", errors.New("overloaded"))}
	handler := newTestHandler(service, seededCorpus())

	req := httptest.NewRequest(http.MethodPost, "/v1/consultations", strings.NewReader(`{"query":"q"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
}

func TestCreateConsultationMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{}, seededCorpus())

	req := httptest.NewRequest(http.MethodGet, "/v1/consultations", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestCorpusStatusReportsDocuments(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{}, seededCorpus())

	req := httptest.NewRequest(http.MethodGet, "/v1/corpus", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body struct {
		Message         string   `json:"message"`
		Status          string   `json:"status"`
		CachedDocuments int      `json:"cached_documents"`
		Documents       []string `json:"documents"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "reference corpus" || body.Status != "ready" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.CachedDocuments != 1 || len(body.Documents) != 1 {
		t.Fatalf("expected one cached document, got %+v", body)
	}
}

func TestCorpusStatusEmpty(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{}, &corpusManagerFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/corpus", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"status":"empty"`) {
		t.Fatalf("expected empty status, got %s", res.Body.String())
	}
}

func TestCorpusDocumentsReturn404WhenEmpty(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{}, &corpusManagerFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/corpus/documents", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestCorpusDocumentByFilename(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{}, seededCorpus())

	req := httptest.NewRequest(http.MethodGet, "/v1/corpus/documents/Injectable%20Fillers.pdf", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := res.Body.String()

	var view corpusDocumentView
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Filename != "Injectable Fillers.pdf" || !view.HasHandle {
		t.Fatalf("unexpected view %+v", view)
	}
	if strings.Contains(body, "files/fillers") {
		t.Fatalf("expected provider handle hidden from response")
	}
}

func TestCorpusDocumentUnknownReturns404(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{}, seededCorpus())

	req := httptest.NewRequest(http.MethodGet, "/v1/corpus/documents/missing.pdf", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestCorpusReloadReturnsCount(t *testing.T) {
	corpus := seededCorpus()
	handler := newTestHandler(&consultServiceFake{}, corpus)

	req := httptest.NewRequest(http.MethodPost, "/v1/corpus/reload", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if corpus.reloads != 1 {
		t.Fatalf("expected one reload call, got %d", corpus.reloads)
	}
	if !strings.Contains(res.Body.String(), `"cached_documents":1`) {
		t.Fatalf("expected count in body, got %s", res.Body.String())
	}
}

func TestCorpusReloadMapsTemporaryTo502(t *testing.T) {
	corpus := &corpusManagerFake{reloadErr: domain.WrapError(domain.ErrTemporary, "gemini.upload", errors.New("quota"))}
	handler := newTestHandler(&consultServiceFake{}, corpus)

	req := httptest.NewRequest(http.MethodPost, "/v1/corpus/reload", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
}

func TestReadyzReflectsCorpusState(t *testing.T) {
	emptyHandler := newTestHandler(&consultServiceFake{}, &corpusManagerFake{})
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	res := httptest.NewRecorder()
	emptyHandler.ServeHTTP(res, req)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for empty corpus, got %d", res.Code)
	}

	readyHandler := newTestHandler(&consultServiceFake{}, seededCorpus())
	res = httptest.NewRecorder()
	readyHandler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready corpus, got %d", res.Code)
	}
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{}, seededCorpus())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if got := res.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id passthrough, got %q", got)
	}
}

func TestPanicConvertsToInternalError(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{panicking: true}, seededCorpus())

	req := httptest.NewRequest(http.MethodPost, "/v1/consultations", strings.NewReader(`{"query":"q"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "internal error") {
		t.Fatalf("expected generic error body, got %s", res.Body.String())
	}
	if strings.Contains(res.Body.String(), "orchestrator exploded") {
		t.Fatalf("expected panic detail hidden from client")
	}
}

func TestMetricsEndpointExposesRequestCounters(t *testing.T) {
	handler := newTestHandler(&consultServiceFake{reply: domain.ConsultationReply{Mode: domain.ModeFull}}, seededCorpus())

	warmup := httptest.NewRequest(http.MethodPost, "/v1/consultations", strings.NewReader(`{"query":"q"}`))
	handler.ServeHTTP(httptest.NewRecorder(), warmup)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "derma_http_requests_total") {
		t.Fatalf("expected request counter exposed, got:\n%s", body)
	}
	if !strings.Contains(body, "derma_pipeline_consultations_total") {
		t.Fatalf("expected consultation counter exposed, got:\n%s", body)
	}
}
