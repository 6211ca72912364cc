package ports

import (
	"context"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

// ConsultationService is the inbound contract for running one consultation
// query through the full pipeline.
type ConsultationService interface {
	Consult(ctx context.Context, req domain.ConsultationRequest) (domain.ConsultationReply, error)
}
