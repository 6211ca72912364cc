package domain

// ConsultationResult mirrors the JSON object the generation model is
// instructed to produce. Field names are the wire contract; renderers must
// tolerate any subset being absent.
type ConsultationResult struct {
	ConsultationStage    string       `json:"consultation_stage,omitempty"`
	AnalyzedData         AnalyzedData `json:"analyzed_data,omitempty"`
	ClarifiedConcern     string       `json:"clarified_user_concern,omitempty"`
	OverallSummary       string       `json:"overall_summary,omitempty"`
	SkinIssues           []SkinIssue  `json:"skin_issues,omitempty"`
	ClinicSelectionGuide string       `json:"clinic_selection_guide,omitempty"`
}

type AnalyzedData struct {
	SubmittedPhotos     []string `json:"submitted_photos,omitempty"`
	ConversationHistory string   `json:"conversation_history,omitempty"`
}

type SkinIssue struct {
	IdentifiedProblem  string           `json:"identified_problem,omitempty"`
	RecommendedOptions []string         `json:"recommended_options,omitempty"`
	DetailedAnalysis   []OptionAnalysis `json:"detailed_analysis,omitempty"`
}

type OptionAnalysis struct {
	Option              string         `json:"option,omitempty"`
	ConfidenceScore     float64        `json:"confidence_score,omitempty"`
	MedicalPrinciple    string         `json:"medical_principle,omitempty"`
	Citation            string         `json:"citation,omitempty"`
	DetailedExplanation string         `json:"detailed_explanation,omitempty"`
	ProcedurePlan       *ProcedurePlan `json:"procedure_plan,omitempty"`
}

type ProcedurePlan struct {
	RecommendedSessions string `json:"recommended_sessions,omitempty"`
	ExpectedDowntime    string `json:"expected_downtime,omitempty"`
	PreProcedureCare    string `json:"pre_procedure_care,omitempty"`
	PostProcedureCare   string `json:"post_procedure_care,omitempty"`
	ExpectedCostRange   string `json:"expected_cost_range,omitempty"`
}
