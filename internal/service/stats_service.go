package service

import (
	"context"
	"math"
	"time"

	"github.com/yafi/support-backend/internal/domain"
	"github.com/yafi/support-backend/internal/repository"
	apperrors "github.com/yafi/support-backend/pkg/util/errorutil"
)

// AgentDashboard is the reporting view an agent sees for their own workload.
type AgentDashboard struct {
	Year           int
	Totals         repository.StatusTotals
	ResolutionRate float64
	Monthly        []MonthlyBucket
}

// MonthlyBucket carries per-month counts with a resolution rate, one entry
// for each of the twelve months.
type MonthlyBucket struct {
	Month          int
	Total          int
	Resolved       int
	ResolutionRate float64
}

// AgentReport is the admin view over a single agent.
type AgentReport struct {
	AgentID            string
	AgentName          string
	Year               int
	Month              int
	Totals             repository.StatusTotals
	ResolutionRate     float64
	AvgResolutionHours float64
}

// ReviewFigures are the month-scoped indicators compared by the agents
// review. Counts are float64 so the averaged row can carry fractions.
type ReviewFigures struct {
	Total              float64
	InProgress         float64
	Resolved           float64
	Rejected           float64
	ResolutionRate     float64
	AvgResolutionHours float64
}

// AgentReviewEntry pairs an agent's current month with the movement since
// the previous month and a generated appraisal.
type AgentReviewEntry struct {
	AgentID   string
	AgentName string
	Email     string
	Phone     string
	Current   ReviewFigures
	Delta     ReviewFigures
	Comment   string
}

// AgentsReview is the admin month-over-month view across every agent.
// Average holds the per-agent mean, nil when there are no agents.
type AgentsReview struct {
	Year    int
	Month   int
	Entries []AgentReviewEntry
	Average *AgentReviewEntry
}

// GlobalReport aggregates the whole system for a year.
type GlobalReport struct {
	Year               int
	Totals             repository.StatusTotals
	ResolutionRate     float64
	AvgResolutionHours float64
	ActiveAgents       int
	MostFrequentTitle  string
	Monthly            []MonthlyBucket
}

// StatsService serves reporting for agents and administrators.
type StatsService struct {
	stats repository.StatsRepository
	users repository.UserRepository
}

// NewStatsService constructs the service.
func NewStatsService(stats repository.StatsRepository, users repository.UserRepository) *StatsService {
	return &StatsService{stats: stats, users: users}
}

// AgentDashboard returns the calling agent's yearly view. Year zero means the
// current year.
func (s *StatsService) AgentDashboard(ctx context.Context, actor *domain.User, year int) (*AgentDashboard, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !actor.Role.CanBeAssigned() {
		return nil, apperrors.NewForbidden("agent role required")
	}
	if year <= 0 {
		year = time.Now().Year()
	}

	totals, err := s.stats.TotalsByAgent(ctx, actor.ID, year, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	monthly, err := s.stats.MonthlyByAgent(ctx, actor.ID, year)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &AgentDashboard{
		Year:           year,
		Totals:         totals,
		ResolutionRate: resolutionRate(totals),
		Monthly:        fillMonths(monthly),
	}, nil
}

// AgentReport returns one agent's numbers for an admin. Month zero widens to
// the whole year.
func (s *StatsService) AgentReport(ctx context.Context, actor *domain.User, agentID string, year, month int) (*AgentReport, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !actor.Role.CanViewGlobalStats() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if year <= 0 {
		year = time.Now().Year()
	}

	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !agent.Role.CanBeAssigned() {
		return nil, apperrors.NewValidationError("account is not an agent", map[string]any{"id": agentID})
	}

	totals, err := s.stats.TotalsByAgent(ctx, agentID, year, month)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	avgSeconds, err := s.stats.AvgResolutionSeconds(ctx, &agentID, year, month)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &AgentReport{
		AgentID:            agent.ID,
		AgentName:          agent.Name,
		Year:               year,
		Month:              month,
		Totals:             totals,
		ResolutionRate:     resolutionRate(totals),
		AvgResolutionHours: round2(avgSeconds / 3600),
	}, nil
}

// AgentsReview compares every agent's month against the previous one and
// appends a fleet-wide average. Year and month default to the current date.
func (s *StatsService) AgentsReview(ctx context.Context, actor *domain.User, year, month int) (*AgentsReview, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !actor.Role.CanViewGlobalStats() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	now := time.Now()
	if year <= 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	prevYear, prevMonth := year, month-1
	if prevMonth == 0 {
		prevYear, prevMonth = year-1, 12
	}

	agents, err := s.users.ListByRole(ctx, domain.RoleAgent)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	review := &AgentsReview{Year: year, Month: month}
	var currentSum, previousSum ReviewFigures
	for i := range agents {
		agent := &agents[i]
		current, err := s.monthFigures(ctx, agent.ID, year, month)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		previous, err := s.monthFigures(ctx, agent.ID, prevYear, prevMonth)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		delta := figuresDelta(current, previous)
		review.Entries = append(review.Entries, AgentReviewEntry{
			AgentID:   agent.ID,
			AgentName: agent.Name,
			Email:     agent.Email,
			Phone:     agent.Phone,
			Current:   current,
			Delta:     delta,
			Comment:   reviewComment(delta),
		})
		currentSum = figuresAdd(currentSum, current)
		previousSum = figuresAdd(previousSum, previous)
	}

	if n := len(agents); n > 0 {
		avgCurrent := figuresMean(currentSum, n)
		avgPrevious := figuresMean(previousSum, n)
		delta := figuresDelta(avgCurrent, avgPrevious)
		review.Average = &AgentReviewEntry{
			Current: avgCurrent,
			Delta:   delta,
			Comment: reviewComment(delta),
		}
	}
	return review, nil
}

func (s *StatsService) monthFigures(ctx context.Context, agentID string, year, month int) (ReviewFigures, error) {
	totals, err := s.stats.TotalsByAgent(ctx, agentID, year, month)
	if err != nil {
		return ReviewFigures{}, err
	}
	avgSeconds, err := s.stats.AvgResolutionSeconds(ctx, &agentID, year, month)
	if err != nil {
		return ReviewFigures{}, err
	}
	return ReviewFigures{
		Total:              float64(totals.Total),
		InProgress:         float64(totals.InProgress),
		Resolved:           float64(totals.Resolved),
		Rejected:           float64(totals.Rejected),
		ResolutionRate:     resolutionRate(totals),
		AvgResolutionHours: round2(avgSeconds / 3600),
	}, nil
}

// GlobalReport returns the system-wide yearly view for administrators.
func (s *StatsService) GlobalReport(ctx context.Context, actor *domain.User, year int) (*GlobalReport, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !actor.Role.CanViewGlobalStats() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if year <= 0 {
		year = time.Now().Year()
	}

	totals, err := s.stats.TotalsGlobal(ctx, year)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	monthly, err := s.stats.MonthlyGlobal(ctx, year)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	avgSeconds, err := s.stats.AvgResolutionSeconds(ctx, nil, year, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	title, err := s.stats.MostFrequentTitle(ctx, year)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	agentCount, err := s.users.CountByRole(ctx, domain.RoleAgent)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &GlobalReport{
		Year:               year,
		Totals:             totals,
		ResolutionRate:     resolutionRate(totals),
		AvgResolutionHours: round2(avgSeconds / 3600),
		ActiveAgents:       agentCount,
		MostFrequentTitle:  title,
		Monthly:            fillMonths(monthly),
	}, nil
}

// resolutionRate is resolved over total as a percentage, zero when no tickets.
func resolutionRate(t repository.StatusTotals) float64 {
	if t.Total == 0 {
		return 0
	}
	return round2(float64(t.Resolved) / float64(t.Total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func figuresAdd(a, b ReviewFigures) ReviewFigures {
	return ReviewFigures{
		Total:              a.Total + b.Total,
		InProgress:         a.InProgress + b.InProgress,
		Resolved:           a.Resolved + b.Resolved,
		Rejected:           a.Rejected + b.Rejected,
		ResolutionRate:     a.ResolutionRate + b.ResolutionRate,
		AvgResolutionHours: a.AvgResolutionHours + b.AvgResolutionHours,
	}
}

func figuresMean(sum ReviewFigures, n int) ReviewFigures {
	d := float64(n)
	return ReviewFigures{
		Total:              round2(sum.Total / d),
		InProgress:         round2(sum.InProgress / d),
		Resolved:           round2(sum.Resolved / d),
		Rejected:           round2(sum.Rejected / d),
		ResolutionRate:     round2(sum.ResolutionRate / d),
		AvgResolutionHours: round2(sum.AvgResolutionHours / d),
	}
}

func figuresDelta(current, previous ReviewFigures) ReviewFigures {
	return ReviewFigures{
		Total:              round2(current.Total - previous.Total),
		InProgress:         round2(current.InProgress - previous.InProgress),
		Resolved:           round2(current.Resolved - previous.Resolved),
		Rejected:           round2(current.Rejected - previous.Rejected),
		ResolutionRate:     round2(current.ResolutionRate - previous.ResolutionRate),
		AvgResolutionHours: round2(current.AvgResolutionHours - previous.AvgResolutionHours),
	}
}

// reviewComment grades the month-over-month movement. A shorter resolution
// time counts as improvement, so its delta enters the score negated.
func reviewComment(delta ReviewFigures) string {
	score := (delta.ResolutionRate - delta.AvgResolutionHours) / 2
	switch {
	case score > 0.5:
		return "Indicators improved on the previous month."
	case score < -0.5:
		return "Indicators declined on the previous month; closer attention recommended."
	default:
		return "Performance broadly stable compared to the previous month."
	}
}

// fillMonths expands sparse query rows into all twelve months.
func fillMonths(rows []repository.MonthlyCounts) []MonthlyBucket {
	buckets := make([]MonthlyBucket, 12)
	for i := range buckets {
		buckets[i].Month = i + 1
	}
	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			continue
		}
		b := &buckets[row.Month-1]
		b.Total = row.Total
		b.Resolved = row.Resolved
		if row.Total > 0 {
			b.ResolutionRate = round2(float64(row.Resolved) / float64(row.Total) * 100)
		}
	}
	return buckets
}
