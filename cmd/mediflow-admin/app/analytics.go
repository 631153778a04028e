package app

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zatekoja/mediflow-admin/internal/application/services"
	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
)

func newAnalyticsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show trends, department performance, outcomes, resources and costs",
	}
	cmd.PersistentFlags().Int("days", 30, "Length of the trend and cost window in days")
	cmd.PersistentFlags().String("department", "", "Department id to narrow the cost analysis to")

	cmd.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Show every analytics section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			report, err := a.analytics.Report(ctx, reportOptions(cmd))
			if err != nil {
				return err
			}
			if outputFormat(cmd) == outputJSON {
				return writeJSON(a.out, report)
			}
			for _, render := range []func() error{
				func() error { return renderTrends(a, report.Trends) },
				func() error { return renderDepartments(a, report.Departments) },
				func() error { return renderOutcomes(a, report.Outcomes) },
				func() error { return renderResources(a, report.Resources) },
				func() error { return renderCosts(a, report.Costs) },
			} {
				if err := render(); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "trends",
		Short: "Show daily occupancy and readmissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			trends, err := a.analytics.Trends(ctx, reportOptions(cmd))
			if err != nil {
				return err
			}
			if outputFormat(cmd) == outputJSON {
				return writeJSON(a.out, trends)
			}
			return renderTrends(a, *trends)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "costs",
		Short: "Show cost and revenue totals for the window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			costs, err := a.analytics.Costs(ctx, reportOptions(cmd))
			if err != nil {
				return err
			}
			if outputFormat(cmd) == outputJSON {
				return writeJSON(a.out, costs)
			}
			return renderCosts(a, *costs)
		},
	})

	return cmd
}

func reportOptions(cmd *cobra.Command) services.ReportOptions {
	days, _ := cmd.Flags().GetInt("days")
	department, _ := cmd.Flags().GetString("department")
	return services.ReportOptions{Days: days, DepartmentID: department}
}

func renderTrends(a *App, trends entities.Trends) error {
	readmissions := make(map[string]float64, len(trends.Readmissions))
	for _, p := range trends.Readmissions {
		readmissions[p.Date] = p.Value
	}
	rows := make([][]string, 0, len(trends.Occupancy))
	for _, p := range trends.Occupancy {
		rows = append(rows, []string{p.Date, decimal(p.Value), decimal(readmissions[p.Date])})
	}
	return renderTable(a.out, []string{"DATE", "OCCUPANCY", "READMISSIONS"}, rows)
}

func renderDepartments(a *App, departments []entities.DepartmentPerformance) error {
	rows := make([][]string, 0, len(departments))
	for _, d := range departments {
		rows = append(rows, []string{
			d.DepartmentName,
			percent(d.OccupancyRate),
			percent(d.PatientSatisfaction),
			percent(d.ReadmissionRate),
			decimal(d.CostEfficiency),
		})
	}
	return renderTable(a.out, []string{"DEPARTMENT", "OCCUPANCY", "SATISFACTION", "READMISSION", "COST EFFICIENCY"}, rows)
}

func renderOutcomes(a *App, o entities.PatientOutcomeSummary) error {
	return renderTable(a.out, []string{"OUTCOME", "VALUE"}, [][]string{
		{"patients", strconv.Itoa(o.TotalPatients)},
		{"recovery", percent(o.RecoveryRate)},
		{"mortality", percent(o.MortalityRate)},
		{"complications", percent(o.ComplicationRate)},
		{"treatment_success", percent(o.TreatmentSuccessRate)},
		{"recovery_days", decimal(o.AverageRecoveryTime)},
	})
}

func renderResources(a *App, r entities.ResourceUtilization) error {
	return renderTable(a.out, []string{"RESOURCE", "VALUE"}, [][]string{
		{"bed_occupancy", percent(r.BedOccupancyRate)},
		{"staff_utilization", percent(r.StaffUtilizationRate)},
		{"equipment_utilization", percent(r.EquipmentUtilizationRate)},
		{"maintenance_due", strconv.Itoa(r.MaintenanceDueCount)},
		{"equipment_out_of_order", strconv.Itoa(r.EquipmentOutOfOrderCount)},
	})
}

func renderCosts(a *App, c entities.CostAnalysis) error {
	return renderTable(a.out, []string{"PERIOD", "COST", "REVENUE", "PROFIT", "MARGIN"}, [][]string{{
		c.Period.StartDate + " .. " + c.Period.EndDate,
		money(c.TotalCost),
		money(c.TotalRevenue),
		money(c.TotalProfit),
		percent(c.ProfitMargin),
	}})
}
