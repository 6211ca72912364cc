package httpadapter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

// The published contract and the router are maintained by hand; this test
// keeps them from drifting apart.
func TestOpenAPIContractMatchesRouter(t *testing.T) {
	ctx := context.Background()
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromFile("../../../api/openapi.yaml")
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	if err := doc.Validate(ctx); err != nil {
		t.Fatalf("validate contract: %v", err)
	}

	for _, path := range []string{
		"/healthz",
		"/readyz",
		"/v1/consultations",
		"/v1/corpus",
		"/v1/corpus/documents",
		"/v1/corpus/documents/{filename}",
		"/v1/corpus/reload",
		"/metrics",
	} {
		if doc.Paths.Find(path) == nil {
			t.Fatalf("route %s missing from contract", path)
		}
	}

	service := &consultServiceFake{reply: domain.ConsultationReply{ConsultationID: "c-1", Text: "답변", Mode: domain.ModeFull}}
	handler := newTestHandler(service, seededCorpus())

	for path, item := range doc.Paths.Map() {
		target := strings.ReplaceAll(path, "{filename}", "Injectable%20Fillers.pdf")
		for method, op := range item.Operations() {
			var body io.Reader
			if method == http.MethodPost && path == "/v1/consultations" {
				body = strings.NewReader(`{"query":"필러 시술이 궁금해요"}`)
			}

			req := httptest.NewRequest(method, target, body)
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if op.Responses.Status(res.Code) == nil {
				t.Fatalf("%s %s answered %d, which the contract does not document", method, path, res.Code)
			}
		}
	}
}
