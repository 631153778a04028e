package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/tidwall/gjson"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
)

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	table.Header(header...)

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func decimal(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func percent(v float64) string { return decimal(v) + "%" }

func money(v float64) string { return "$" + strconv.FormatFloat(v, 'f', 2, 64) }

func statsRows(stats entities.DashboardStats) [][]string {
	count := strconv.Itoa

	return [][]string{
		{"patients.total", count(stats.PatientStats.Total)},
		{"patients.new", count(stats.PatientStats.New)},
		{"patients.active", count(stats.PatientStats.Active)},
		{"patients.discharged", count(stats.PatientStats.Discharged)},
		{"appointments.today", count(stats.AppointmentStats.Today)},
		{"appointments.upcoming", count(stats.AppointmentStats.Upcoming)},
		{"appointments.completed", count(stats.AppointmentStats.Completed)},
		{"appointments.cancelled", count(stats.AppointmentStats.Cancelled)},
		{"resources.occupancy", percent(stats.ResourceStats.OccupancyRate)},
		{"resources.available_beds", count(stats.ResourceStats.AvailableBeds)},
		{"resources.total_staff", count(stats.ResourceStats.TotalStaff)},
		{"revenue.daily", money(stats.RevenueStats.Daily)},
		{"revenue.monthly", money(stats.RevenueStats.Monthly)},
		{"performance.wait_time_min", decimal(stats.PerformanceMetrics.AverageWaitTime)},
		{"performance.satisfaction", percent(stats.PerformanceMetrics.PatientSatisfaction)},
		{"performance.readmission", percent(stats.PerformanceMetrics.ReadmissionRate)},
	}
}

// parsePatch turns field=value arguments into a patch for T. A value keeps its JSON type
// (number, boolean, null, quoted string, object) when T accepts it for that field and is
// sent as a plain string otherwise, so contact=5551234 stays a string on a patient.
func parsePatch[T entities.Entity](args []string) (map[string]any, error) {
	patch := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected field=value", arg)
		}
		if key == "id" {
			return nil, fmt.Errorf("the id of an entry cannot be changed")
		}

		candidates := make([]any, 0, 2)
		if gjson.Valid(value) {
			candidates = append(candidates, gjson.Parse(value).Value())
		}
		candidates = append(candidates, value)

		typed, err := fieldValue[T](key, candidates)
		if err != nil {
			return nil, err
		}
		patch[key] = typed
	}
	return patch, nil
}

// fieldValue returns the first candidate T can decode for key
func fieldValue[T entities.Entity](key string, candidates []any) (any, error) {
	for _, candidate := range candidates {
		data, err := json.Marshal(map[string]any{key: candidate})
		if err != nil {
			continue
		}
		var decoded T
		if err := json.Unmarshal(data, &decoded); err == nil {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("invalid value for field %q", key)
}
