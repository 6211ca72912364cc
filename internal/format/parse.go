package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

// ErrEmptyResponse reports model output that contained no usable text after
// fence stripping.
var ErrEmptyResponse = errors.New("empty model response")

// StripFences drops the ```json code fence the generation model tends to
// wrap its output in even when asked for bare JSON.
func StripFences(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", ErrEmptyResponse
	}
	return cleaned, nil
}

// ParseResult extracts the structured consultation payload from raw model
// output.
func ParseResult(raw string) (domain.ConsultationResult, error) {
	cleaned, err := StripFences(raw)
	if err != nil {
		return domain.ConsultationResult{}, err
	}

	var result domain.ConsultationResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return domain.ConsultationResult{}, fmt.Errorf("parse consultation result: %w", err)
	}
	return result, nil
}
