package restapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

const defaultTrendDays = 30

// GetDashboardMetrics fetches the dashboard aggregate
func (c *HTTPClient) GetDashboardMetrics(ctx context.Context) (*entities.DashboardStats, error) {
	out := &entities.DashboardStats{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/analytics/dashboard"}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOccupancyTrends fetches daily occupancy for the last days (30 when days <= 0)
func (c *HTTPClient) GetOccupancyTrends(ctx context.Context, days int) ([]entities.TrendPoint, error) {
	return c.trend(ctx, "/api/analytics/trends/occupancy", days)
}

// GetReadmissionTrends fetches daily readmissions for the last days (30 when days <= 0)
func (c *HTTPClient) GetReadmissionTrends(ctx context.Context, days int) ([]entities.TrendPoint, error) {
	return c.trend(ctx, "/api/analytics/trends/readmissions", days)
}

// GetDepartmentPerformance fetches per-department occupancy and satisfaction
func (c *HTTPClient) GetDepartmentPerformance(ctx context.Context) ([]entities.DepartmentPerformance, error) {
	var out []entities.DepartmentPerformance
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/analytics/departments/performance"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPatientOutcomeSummary fetches recovery, mortality and complication rates
func (c *HTTPClient) GetPatientOutcomeSummary(ctx context.Context) (*entities.PatientOutcomeSummary, error) {
	out := &entities.PatientOutcomeSummary{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/analytics/patient-outcomes"}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetResourceUtilization fetches bed, staff and equipment utilization
func (c *HTTPClient) GetResourceUtilization(ctx context.Context) (*entities.ResourceUtilization, error) {
	out := &entities.ResourceUtilization{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/analytics/resource-utilization"}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCostAnalysis fetches cost and revenue totals for a period
func (c *HTTPClient) GetCostAnalysis(ctx context.Context, q entities.CostAnalysisQuery) (*entities.CostAnalysis, error) {
	if q.StartDate == "" || q.EndDate == "" {
		return nil, apperrors.NewValidationError("start and end date are required")
	}
	query := url.Values{}
	query.Set("start_date", q.StartDate)
	query.Set("end_date", q.EndDate)
	if q.DepartmentID != "" {
		query.Set("department_id", q.DepartmentID)
	}

	out := &entities.CostAnalysis{}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/analytics/cost-analysis", query: query}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) trend(ctx context.Context, path string, days int) ([]entities.TrendPoint, error) {
	if days <= 0 {
		days = defaultTrendDays
	}
	query := url.Values{}
	query.Set("days", strconv.Itoa(days))

	var out []entities.TrendPoint
	if err := c.do(ctx, request{method: http.MethodGet, path: path, query: query}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
