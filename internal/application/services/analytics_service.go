package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
)

const (
	defaultReportDays = 30
	dateLayout        = "2006-01-02"
)

// ReportOptions selects the window of an analytics report
type ReportOptions struct {
	// Days is the length of the trend and cost window, 30 when <= 0
	Days int
	// DepartmentID narrows the cost analysis to one department
	DepartmentID string
}

func (o ReportOptions) days() int {
	if o.Days <= 0 {
		return defaultReportDays
	}
	return o.Days
}

// AnalyticsService assembles the analytics page from the backend's reports
type AnalyticsService struct {
	provider providers.AnalyticsReportProvider
	now      func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(provider providers.AnalyticsReportProvider) *AnalyticsService {
	return &AnalyticsService{provider: provider, now: time.Now}
}

// Trends loads the occupancy and readmission series for the window
func (s *AnalyticsService) Trends(ctx context.Context, opts ReportOptions) (*entities.Trends, error) {
	ctx, span := observability.StartSpan(ctx, "analytics.trends")
	defer span.End()

	trends := &entities.Trends{Days: opts.days()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		trends.Occupancy, err = s.provider.GetOccupancyTrends(gctx, trends.Days)
		return err
	})
	g.Go(func() (err error) {
		trends.Readmissions, err = s.provider.GetReadmissionTrends(gctx, trends.Days)
		return err
	})
	if err := g.Wait(); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return trends, nil
}

// Costs loads the cost analysis for the window ending today
func (s *AnalyticsService) Costs(ctx context.Context, opts ReportOptions) (*entities.CostAnalysis, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -opts.days())
	return s.provider.GetCostAnalysis(ctx, entities.CostAnalysisQuery{
		StartDate:    start.Format(dateLayout),
		EndDate:      end.Format(dateLayout),
		DepartmentID: opts.DepartmentID,
	})
}

// Report loads every section of the analytics page concurrently. The first failing
// section fails the report.
func (s *AnalyticsService) Report(ctx context.Context, opts ReportOptions) (*entities.AnalyticsReport, error) {
	ctx, span := observability.StartSpan(ctx, "analytics.report")
	defer span.End()

	report := &entities.AnalyticsReport{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trends, err := s.Trends(gctx, opts)
		if err == nil {
			report.Trends = *trends
		}
		return err
	})
	g.Go(func() (err error) {
		report.Departments, err = s.provider.GetDepartmentPerformance(gctx)
		return err
	})
	g.Go(func() error {
		outcomes, err := s.provider.GetPatientOutcomeSummary(gctx)
		if err == nil && outcomes != nil {
			report.Outcomes = *outcomes
		}
		return err
	})
	g.Go(func() error {
		resources, err := s.provider.GetResourceUtilization(gctx)
		if err == nil && resources != nil {
			report.Resources = *resources
		}
		return err
	})
	g.Go(func() error {
		costs, err := s.Costs(gctx, opts)
		if err == nil && costs != nil {
			report.Costs = *costs
		}
		return err
	})

	if err := g.Wait(); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to load analytics report")
		observability.RecordError(span, err)
		return nil, err
	}
	if report.Departments == nil {
		report.Departments = []entities.DepartmentPerformance{}
	}
	return report, nil
}
