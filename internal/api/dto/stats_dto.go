package dto

import "github.com/yafi/support-backend/internal/service"

// StatusTotalsResponse aggregates ticket counts per lifecycle state.
type StatusTotalsResponse struct {
	Total      int `json:"total"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Rejected   int `json:"rejected"`
}

// MonthlyBucketResponse is one month of the yearly breakdown.
type MonthlyBucketResponse struct {
	Month          int     `json:"month"`
	Total          int     `json:"total"`
	Resolved       int     `json:"resolved"`
	ResolutionRate float64 `json:"resolution_rate"`
}

// AgentDashboardResponse is the agent's own yearly view.
type AgentDashboardResponse struct {
	Year           int                     `json:"year"`
	Totals         StatusTotalsResponse    `json:"totals"`
	ResolutionRate float64                 `json:"resolution_rate"`
	Monthly        []MonthlyBucketResponse `json:"monthly"`
}

// AgentReportResponse is the admin view over one agent.
type AgentReportResponse struct {
	AgentID            string               `json:"agent_id"`
	AgentName          string               `json:"agent_name"`
	Year               int                  `json:"year"`
	Month              int                  `json:"month,omitempty"`
	Totals             StatusTotalsResponse `json:"totals"`
	ResolutionRate     float64              `json:"resolution_rate"`
	AvgResolutionHours float64              `json:"avg_resolution_hours"`
}

// GlobalReportResponse is the system-wide yearly view.
type GlobalReportResponse struct {
	Year               int                     `json:"year"`
	Totals             StatusTotalsResponse    `json:"totals"`
	ResolutionRate     float64                 `json:"resolution_rate"`
	AvgResolutionHours float64                 `json:"avg_resolution_hours"`
	ActiveAgents       int                     `json:"active_agents"`
	MostFrequentTitle  string                  `json:"most_frequent_title,omitempty"`
	Monthly            []MonthlyBucketResponse `json:"monthly"`
}

// ReviewFiguresResponse are the indicators compared by the agents review.
type ReviewFiguresResponse struct {
	Total              float64 `json:"total"`
	InProgress         float64 `json:"in_progress"`
	Resolved           float64 `json:"resolved"`
	Rejected           float64 `json:"rejected"`
	ResolutionRate     float64 `json:"resolution_rate"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
}

// AgentReviewEntryResponse is one agent's row in the review.
type AgentReviewEntryResponse struct {
	AgentID   string                `json:"agent_id,omitempty"`
	AgentName string                `json:"agent_name,omitempty"`
	Email     string                `json:"email,omitempty"`
	Phone     string                `json:"phone,omitempty"`
	Current   ReviewFiguresResponse `json:"current"`
	Delta     ReviewFiguresResponse `json:"delta"`
	Comment   string                `json:"comment"`
}

// AgentsReviewResponse is the month-over-month view across all agents.
type AgentsReviewResponse struct {
	Year    int                        `json:"year"`
	Month   int                        `json:"month"`
	Entries []AgentReviewEntryResponse `json:"entries"`
	Average *AgentReviewEntryResponse  `json:"average,omitempty"`
}

// NewAgentDashboardResponse maps the service view.
func NewAgentDashboardResponse(d *service.AgentDashboard) AgentDashboardResponse {
	return AgentDashboardResponse{
		Year: d.Year,
		Totals: StatusTotalsResponse{
			Total:      d.Totals.Total,
			InProgress: d.Totals.InProgress,
			Resolved:   d.Totals.Resolved,
			Rejected:   d.Totals.Rejected,
		},
		ResolutionRate: d.ResolutionRate,
		Monthly:        newMonthly(d.Monthly),
	}
}

// NewAgentReportResponse maps the per-agent admin view.
func NewAgentReportResponse(r *service.AgentReport) AgentReportResponse {
	return AgentReportResponse{
		AgentID:   r.AgentID,
		AgentName: r.AgentName,
		Year:      r.Year,
		Month:     r.Month,
		Totals: StatusTotalsResponse{
			Total:      r.Totals.Total,
			InProgress: r.Totals.InProgress,
			Resolved:   r.Totals.Resolved,
			Rejected:   r.Totals.Rejected,
		},
		ResolutionRate:     r.ResolutionRate,
		AvgResolutionHours: r.AvgResolutionHours,
	}
}

// NewGlobalReportResponse maps the global admin view.
func NewGlobalReportResponse(r *service.GlobalReport) GlobalReportResponse {
	return GlobalReportResponse{
		Year: r.Year,
		Totals: StatusTotalsResponse{
			Total:      r.Totals.Total,
			InProgress: r.Totals.InProgress,
			Resolved:   r.Totals.Resolved,
			Rejected:   r.Totals.Rejected,
		},
		ResolutionRate:     r.ResolutionRate,
		AvgResolutionHours: r.AvgResolutionHours,
		ActiveAgents:       r.ActiveAgents,
		MostFrequentTitle:  r.MostFrequentTitle,
		Monthly:            newMonthly(r.Monthly),
	}
}

// NewAgentsReviewResponse maps the per-agent month-over-month view.
func NewAgentsReviewResponse(r *service.AgentsReview) AgentsReviewResponse {
	out := AgentsReviewResponse{
		Year:    r.Year,
		Month:   r.Month,
		Entries: make([]AgentReviewEntryResponse, 0, len(r.Entries)),
	}
	for i := range r.Entries {
		out.Entries = append(out.Entries, newReviewEntry(&r.Entries[i]))
	}
	if r.Average != nil {
		avg := newReviewEntry(r.Average)
		out.Average = &avg
	}
	return out
}

func newReviewEntry(e *service.AgentReviewEntry) AgentReviewEntryResponse {
	return AgentReviewEntryResponse{
		AgentID:   e.AgentID,
		AgentName: e.AgentName,
		Email:     e.Email,
		Phone:     e.Phone,
		Current:   newReviewFigures(e.Current),
		Delta:     newReviewFigures(e.Delta),
		Comment:   e.Comment,
	}
}

func newReviewFigures(f service.ReviewFigures) ReviewFiguresResponse {
	return ReviewFiguresResponse{
		Total:              f.Total,
		InProgress:         f.InProgress,
		Resolved:           f.Resolved,
		Rejected:           f.Rejected,
		ResolutionRate:     f.ResolutionRate,
		AvgResolutionHours: f.AvgResolutionHours,
	}
}

func newMonthly(buckets []service.MonthlyBucket) []MonthlyBucketResponse {
	out := make([]MonthlyBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, MonthlyBucketResponse{
			Month:          b.Month,
			Total:          b.Total,
			Resolved:       b.Resolved,
			ResolutionRate: b.ResolutionRate,
		})
	}
	return out
}
