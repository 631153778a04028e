package providers

import (
	"context"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
)

// AnalyticsProvider serves the aggregate figures shown on the dashboard
type AnalyticsProvider interface {
	GetDashboardMetrics(ctx context.Context) (*entities.DashboardStats, error)
}

// AnalyticsReportProvider serves the trend and breakdown reports of the analytics page
type AnalyticsReportProvider interface {
	GetOccupancyTrends(ctx context.Context, days int) ([]entities.TrendPoint, error)
	GetReadmissionTrends(ctx context.Context, days int) ([]entities.TrendPoint, error)
	GetDepartmentPerformance(ctx context.Context) ([]entities.DepartmentPerformance, error)
	GetPatientOutcomeSummary(ctx context.Context) (*entities.PatientOutcomeSummary, error)
	GetResourceUtilization(ctx context.Context) (*entities.ResourceUtilization, error)
	GetCostAnalysis(ctx context.Context, query entities.CostAnalysisQuery) (*entities.CostAnalysis, error)
}
