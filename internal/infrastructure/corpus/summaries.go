package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"gopkg.in/yaml.v3"
)

const previewRuneLimit = 200

// defaultSummaries carries the curated descriptions for the shipped
// textbook corpus. The selector prompt quotes these verbatim.
var defaultSummaries = map[string]string{
	"Cosmetic Dermatology- Products And Procedures Cosmetic -- Draelos, Zoe Kececioglu -- ( WeLib.org ).pdf":                         "화장품 및 미용 시술에 관한 포괄적인 가이드. 다양한 피부 문제와 해결책을 다룹니다.",
	"Textbook of Cosmetic Dermatology (Series in Cosmetic and -- Robert L Baran; Howard Ira Maibach -- ( WeLib.org ).pdf":            "미용 피부과학의 종합적인 교과서. 전문적인 시술과 치료법을 상세히 설명합니다.",
	"Injectable Fillers in Aesthetic Medicine -- Mauricio de Maio, Berthold Rzany (auth.) -- ( WeLib.org ).pdf":                      "필러 시술에 특화된 전문서. 주사형 필러의 종류, 시술법, 부작용 등을 다룹니다.",
	"Skills for Communicating with Patients, 3rd Edition -- Juliet Draper, Suzanne M. Kurtz, Jonathan Silverman -- ( WeLib.org ).pdf": "환자와의 효과적인 소통 방법에 관한 가이드북입니다.",
}

// SummaryRegistry resolves the human-readable summary for a corpus file:
// curated entry first, then a first-page text preview, then the filename
// stem.
type SummaryRegistry struct {
	curated map[string]string
}

// NewSummaryRegistry builds the registry from the embedded defaults,
// overlaid with the YAML mapping at overridePath when given. A missing
// override file falls back to the defaults with a warning; a malformed one
// is an error.
func NewSummaryRegistry(overridePath string, logger *slog.Logger) (*SummaryRegistry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	curated := make(map[string]string, len(defaultSummaries))
	for name, summary := range defaultSummaries {
		curated[name] = summary
	}

	if overridePath != "" {
		raw, err := os.ReadFile(overridePath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("summary_registry_fallback", "path", overridePath, "error", err)
		case err != nil:
			return nil, fmt.Errorf("read summary registry: %w", err)
		default:
			var overrides map[string]string
			if err := yaml.Unmarshal(raw, &overrides); err != nil {
				return nil, fmt.Errorf("parse summary registry: %w", err)
			}
			for name, summary := range overrides {
				curated[name] = summary
			}
		}
	}

	return &SummaryRegistry{curated: curated}, nil
}

func (r *SummaryRegistry) For(filename, path string) string {
	if summary, ok := r.curated[filename]; ok {
		return summary
	}
	if preview := pdfPreview(path); preview != "" {
		return preview
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// pdfPreview extracts first-page text for files the curated registry does
// not cover. Extraction failures simply yield no preview.
func pdfPreview(path string) string {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	if reader.NumPage() < 1 {
		return ""
	}
	page := reader.Page(1)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return collapseWhitespace(text, previewRuneLimit)
}

func collapseWhitespace(s string, limit int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	runes := []rune(collapsed)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return collapsed
}
