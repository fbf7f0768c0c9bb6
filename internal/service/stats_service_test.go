package service

import (
	"context"
	"testing"

	"github.com/yafi/support-backend/internal/domain"
	"github.com/yafi/support-backend/internal/repository"
)

// fakeStatsRepo returns canned aggregates.
type fakeStatsRepo struct {
	totals  repository.StatusTotals
	monthly []repository.MonthlyCounts
	avgSec  float64
	title   string
}

func (f *fakeStatsRepo) TotalsByAgent(context.Context, string, int, int) (repository.StatusTotals, error) {
	return f.totals, nil
}

func (f *fakeStatsRepo) TotalsGlobal(context.Context, int) (repository.StatusTotals, error) {
	return f.totals, nil
}

func (f *fakeStatsRepo) MonthlyByAgent(context.Context, string, int) ([]repository.MonthlyCounts, error) {
	return f.monthly, nil
}

func (f *fakeStatsRepo) MonthlyGlobal(context.Context, int) ([]repository.MonthlyCounts, error) {
	return f.monthly, nil
}

func (f *fakeStatsRepo) AvgResolutionSeconds(context.Context, *string, int, int) (float64, error) {
	return f.avgSec, nil
}

func (f *fakeStatsRepo) MostFrequentTitle(context.Context, int) (string, error) {
	return f.title, nil
}

func TestAgentDashboardFillsAllMonths(t *testing.T) {
	users := newFakeUserRepo()
	agent := users.add("agent", domain.RoleAgent)
	stats := &fakeStatsRepo{
		totals:  repository.StatusTotals{Total: 10, Resolved: 4},
		monthly: []repository.MonthlyCounts{{Month: 3, Total: 8, Resolved: 4}},
	}
	svc := NewStatsService(stats, users)

	dashboard, err := svc.AgentDashboard(context.Background(), agent, 2026)
	if err != nil {
		t.Fatalf("AgentDashboard: %v", err)
	}
	if len(dashboard.Monthly) != 12 {
		t.Fatalf("monthly buckets = %d, want 12", len(dashboard.Monthly))
	}
	if dashboard.ResolutionRate != 40 {
		t.Fatalf("resolution rate = %v, want 40", dashboard.ResolutionRate)
	}
	march := dashboard.Monthly[2]
	if march.Total != 8 || march.Resolved != 4 || march.ResolutionRate != 50 {
		t.Fatalf("march bucket = %+v", march)
	}
	if dashboard.Monthly[0].Total != 0 {
		t.Fatalf("empty month carries data: %+v", dashboard.Monthly[0])
	}
}

func TestAgentDashboardRequiresAgentRole(t *testing.T) {
	users := newFakeUserRepo()
	client := users.add("client", domain.RoleClient)
	svc := NewStatsService(&fakeStatsRepo{}, users)

	_, err := svc.AgentDashboard(context.Background(), client, 2026)
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}
}

func TestAgentReportConvertsSecondsToHours(t *testing.T) {
	users := newFakeUserRepo()
	admin := users.add("admin", domain.RoleAdmin)
	agent := users.add("agent", domain.RoleAgent)
	stats := &fakeStatsRepo{
		totals: repository.StatusTotals{Total: 3, Resolved: 3},
		avgSec: 9000, // 2.5 hours
	}
	svc := NewStatsService(stats, users)

	report, err := svc.AgentReport(context.Background(), admin, agent.ID, 2026, 0)
	if err != nil {
		t.Fatalf("AgentReport: %v", err)
	}
	if report.AvgResolutionHours != 2.5 {
		t.Fatalf("avg hours = %v, want 2.5", report.AvgResolutionHours)
	}
	if report.ResolutionRate != 100 {
		t.Fatalf("resolution rate = %v, want 100", report.ResolutionRate)
	}
	if report.AgentName != agent.Name {
		t.Fatalf("agent name = %s", report.AgentName)
	}
}

func TestAgentReportRejectsNonAgentTarget(t *testing.T) {
	users := newFakeUserRepo()
	admin := users.add("admin", domain.RoleAdmin)
	client := users.add("client", domain.RoleClient)
	svc := NewStatsService(&fakeStatsRepo{}, users)

	_, err := svc.AgentReport(context.Background(), admin, client.ID, 2026, 0)
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}
}

func TestGlobalReportIncludesAgentCount(t *testing.T) {
	users := newFakeUserRepo()
	admin := users.add("admin", domain.RoleAdmin)
	users.add("agent-a", domain.RoleAgent)
	users.add("agent-b", domain.RoleAgent)
	stats := &fakeStatsRepo{
		totals: repository.StatusTotals{Total: 7, Resolved: 2, Rejected: 1},
		title:  "Printer broken",
	}
	svc := NewStatsService(stats, users)

	report, err := svc.GlobalReport(context.Background(), admin, 2026)
	if err != nil {
		t.Fatalf("GlobalReport: %v", err)
	}
	if report.ActiveAgents != 2 {
		t.Fatalf("active agents = %d, want 2", report.ActiveAgents)
	}
	if report.MostFrequentTitle != "Printer broken" {
		t.Fatalf("most frequent title = %q", report.MostFrequentTitle)
	}
	if report.ResolutionRate != 28.57 {
		t.Fatalf("resolution rate = %v, want 28.57", report.ResolutionRate)
	}
}

func TestGlobalReportForbiddenForAgents(t *testing.T) {
	users := newFakeUserRepo()
	agent := users.add("agent", domain.RoleAgent)
	svc := NewStatsService(&fakeStatsRepo{}, users)

	_, err := svc.GlobalReport(context.Background(), agent, 2026)
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}
}

// monthKeyedStatsRepo keys aggregates by month so consecutive months differ.
type monthKeyedStatsRepo struct {
	fakeStatsRepo
	totalsByMonth map[int]repository.StatusTotals
	avgSecByMonth map[int]float64
	periods       [][2]int
}

func (f *monthKeyedStatsRepo) TotalsByAgent(_ context.Context, _ string, year, month int) (repository.StatusTotals, error) {
	f.periods = append(f.periods, [2]int{year, month})
	return f.totalsByMonth[month], nil
}

func (f *monthKeyedStatsRepo) AvgResolutionSeconds(_ context.Context, _ *string, _, month int) (float64, error) {
	return f.avgSecByMonth[month], nil
}

func TestAgentsReviewComputesDeltas(t *testing.T) {
	users := newFakeUserRepo()
	admin := users.add("admin", domain.RoleAdmin)
	agent := users.add("agent", domain.RoleAgent)
	stats := &monthKeyedStatsRepo{
		totalsByMonth: map[int]repository.StatusTotals{
			3: {Total: 10, Resolved: 4},
			4: {Total: 10, Resolved: 8},
		},
		avgSecByMonth: map[int]float64{3: 7200, 4: 3600},
	}
	svc := NewStatsService(stats, users)

	review, err := svc.AgentsReview(context.Background(), admin, 2026, 4)
	if err != nil {
		t.Fatalf("AgentsReview: %v", err)
	}
	if len(review.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(review.Entries))
	}
	entry := review.Entries[0]
	if entry.AgentID != agent.ID || entry.Email != agent.Email {
		t.Fatalf("entry identity = %+v", entry)
	}
	if entry.Current.ResolutionRate != 80 || entry.Current.AvgResolutionHours != 1 {
		t.Fatalf("current figures = %+v", entry.Current)
	}
	if entry.Delta.ResolutionRate != 40 || entry.Delta.AvgResolutionHours != -1 {
		t.Fatalf("delta figures = %+v", entry.Delta)
	}
	if entry.Comment != "Indicators improved on the previous month." {
		t.Fatalf("comment = %q", entry.Comment)
	}
	if review.Average == nil {
		t.Fatal("average row missing")
	}
	if review.Average.Current != entry.Current || review.Average.Delta != entry.Delta {
		t.Fatalf("single-agent average = %+v, want entry figures", review.Average)
	}
}

func TestAgentsReviewJanuaryComparesPreviousDecember(t *testing.T) {
	users := newFakeUserRepo()
	admin := users.add("admin", domain.RoleAdmin)
	users.add("agent", domain.RoleAgent)
	stats := &monthKeyedStatsRepo{
		totalsByMonth: map[int]repository.StatusTotals{},
		avgSecByMonth: map[int]float64{},
	}
	svc := NewStatsService(stats, users)

	if _, err := svc.AgentsReview(context.Background(), admin, 2026, 1); err != nil {
		t.Fatalf("AgentsReview: %v", err)
	}
	want := [][2]int{{2026, 1}, {2025, 12}}
	if len(stats.periods) != 2 || stats.periods[0] != want[0] || stats.periods[1] != want[1] {
		t.Fatalf("queried periods = %v, want %v", stats.periods, want)
	}
}

func TestAgentsReviewWithoutAgents(t *testing.T) {
	users := newFakeUserRepo()
	admin := users.add("admin", domain.RoleAdmin)
	svc := NewStatsService(&fakeStatsRepo{}, users)

	review, err := svc.AgentsReview(context.Background(), admin, 2026, 4)
	if err != nil {
		t.Fatalf("AgentsReview: %v", err)
	}
	if len(review.Entries) != 0 || review.Average != nil {
		t.Fatalf("review = %+v, want empty with no average", review)
	}
}

func TestAgentsReviewForbiddenForAgents(t *testing.T) {
	users := newFakeUserRepo()
	agent := users.add("agent", domain.RoleAgent)
	svc := NewStatsService(&fakeStatsRepo{}, users)

	_, err := svc.AgentsReview(context.Background(), agent, 2026, 4)
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}
}
