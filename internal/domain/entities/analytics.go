package entities

// DashboardStats is the aggregate shown on the dashboard landing page
type DashboardStats struct {
	PatientStats       PatientStats       `json:"patientStats"`
	AppointmentStats   AppointmentStats   `json:"appointmentStats"`
	ResourceStats      ResourceStats      `json:"resourceStats"`
	RevenueStats       RevenueStats       `json:"revenueStats"`
	PerformanceMetrics PerformanceMetrics `json:"performanceMetrics"`
}

type PatientStats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	Active     int `json:"active"`
	Discharged int `json:"discharged"`
}

type AppointmentStats struct {
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type ResourceStats struct {
	OccupancyRate float64 `json:"occupancyRate"`
	AvailableBeds int     `json:"availableBeds"`
	TotalStaff    int     `json:"totalStaff"`
	ActiveShifts  int     `json:"activeShifts"`
}

type RevenueStats struct {
	Daily      float64 `json:"daily"`
	Weekly     float64 `json:"weekly"`
	Monthly    float64 `json:"monthly"`
	YearToDate float64 `json:"yearToDate"`
}

type PerformanceMetrics struct {
	AverageWaitTime     float64 `json:"averageWaitTime"`
	PatientSatisfaction float64 `json:"patientSatisfaction"`
	TreatmentSuccess    float64 `json:"treatmentSuccess"`
	ReadmissionRate     float64 `json:"readmissionRate"`
}

// TrendPoint is one day of an occupancy or readmission trend
type TrendPoint struct {
	Date       string  `json:"date"`
	Value      float64 `json:"value"`
	MetricName string  `json:"metric_name,omitempty"`
}

// DepartmentPerformance is one row of the department performance report
type DepartmentPerformance struct {
	DepartmentID        string  `json:"department_id,omitempty"`
	DepartmentName      string  `json:"department_name"`
	OccupancyRate       float64 `json:"occupancy_rate"`
	AverageLengthOfStay float64 `json:"average_length_of_stay"`
	ReadmissionRate     float64 `json:"readmission_rate"`
	PatientSatisfaction float64 `json:"patient_satisfaction"`
	CostEfficiency      float64 `json:"cost_efficiency"`
	StaffUtilization    float64 `json:"staff_utilization"`
}

// PatientOutcomeSummary aggregates treatment outcomes, rates in percent
type PatientOutcomeSummary struct {
	TotalPatients        int     `json:"total_patients"`
	RecoveryRate         float64 `json:"recovery_rate"`
	MortalityRate        float64 `json:"mortality_rate"`
	ComplicationRate     float64 `json:"complication_rate"`
	AverageRecoveryTime  float64 `json:"average_recovery_time"`
	TreatmentSuccessRate float64 `json:"treatment_success_rate"`
}

// ResourceUtilization reports bed, staff and equipment usage, rates in percent
type ResourceUtilization struct {
	BedOccupancyRate         float64 `json:"bed_occupancy_rate"`
	StaffUtilizationRate     float64 `json:"staff_utilization_rate"`
	EquipmentUtilizationRate float64 `json:"equipment_utilization_rate"`
	MaintenanceDueCount      int     `json:"maintenance_due_count"`
	EquipmentOutOfOrderCount int     `json:"equipment_out_of_order_count"`
}

// CostAnalysisQuery selects the period, and optionally the department, of a cost analysis.
// Dates are formatted as YYYY-MM-DD.
type CostAnalysisQuery struct {
	StartDate    string
	EndDate      string
	DepartmentID string
}

// CostPeriod is the period a cost analysis covers
type CostPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CostAnalysis totals cost and revenue over a period
type CostAnalysis struct {
	Period       CostPeriod `json:"period"`
	TotalCost    float64    `json:"total_cost"`
	TotalRevenue float64    `json:"total_revenue"`
	TotalProfit  float64    `json:"total_profit"`
	ProfitMargin float64    `json:"profit_margin"`
}

// Trends holds the occupancy and readmission series over the same window
type Trends struct {
	Days         int          `json:"days"`
	Occupancy    []TrendPoint `json:"occupancy"`
	Readmissions []TrendPoint `json:"readmissions"`
}

// AnalyticsReport is everything shown on the analytics page
type AnalyticsReport struct {
	Trends      Trends                  `json:"trends"`
	Departments []DepartmentPerformance `json:"departments"`
	Outcomes    PatientOutcomeSummary   `json:"outcomes"`
	Resources   ResourceUtilization     `json:"resources"`
	Costs       CostAnalysis            `json:"costs"`
}
