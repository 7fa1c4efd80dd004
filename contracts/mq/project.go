package mq

// PlanRequestedPayload asks the worker to expand a template into a project.
type PlanRequestedPayload struct {
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
	PlanType  string `json:"plan_type"`
	Reset     bool   `json:"reset"`
	TraceID   string `json:"trace_id,omitempty"`
	// RequestID identifies the request for deduplication. Defaults to project_id:plan_type.
	RequestID string `json:"request_id,omitempty"`
}

// DedupID returns the key redeliveries of this request share.
func (p PlanRequestedPayload) DedupID() string {
	if p.RequestID != "" {
		return p.RequestID
	}
	return p.ProjectID + ":" + p.PlanType
}

type PlanGeneratedPayload struct {
	UserID     string `json:"user_id"`
	ProjectID  string `json:"project_id"`
	Requested  string `json:"requested_template"`
	Template   string `json:"template"`
	FellBack   bool   `json:"fell_back"`
	Reference  string `json:"reference_date"`
	Tasks      int    `json:"tasks"`
	Milestones int    `json:"milestones"`
	Stage      string `json:"stage"`
	TraceID    string `json:"trace_id,omitempty"`
}

// StageChangedPayload is emitted when a user sets or clears the explicit stage.
type StageChangedPayload struct {
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
	// Previous and Current are resolved stages; Explicit is empty when cleared.
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Explicit string `json:"explicit,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}
