package metrics

import "time"

// Pipeline-side recording. All methods are called from adapters and
// bootstrap, never from core use cases.

func (m *HTTPServerMetrics) RecordConsultation(service, mode, outcome string, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.consultationsTotal.WithLabelValues(service, mode, outcome).Inc()
	m.pipelineStepDuration.WithLabelValues(service, "consultation").Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordPipelineStep(service, step string, duration time.Duration) {
	if step == "" {
		step = "unknown"
	}
	m.pipelineStepDuration.WithLabelValues(service, step).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordProviderRetry(service, operation string) {
	if operation == "" {
		operation = "unknown"
	}
	m.providerRetriesTotal.WithLabelValues(service, operation).Inc()
}

func (m *HTTPServerMetrics) SetCorpusDocuments(count int) {
	if count < 0 {
		return
	}
	m.corpusDocuments.Set(float64(count))
}
