package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/pkg/retry"
)

// fakeBackend serves a small patient and appointment set and records every request
type fakeBackend struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	queries  map[string]string
	meStatus int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{bodies: map[string]string{}, queries: map[string]string{}, meStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect username or password"}`)
			return
		}
		writeBody(w, `{"access_token":"issued-token","token_type":"bearer"}`)
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status := b.meStatus
		b.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"detail":"Could not validate credentials"}`)
			return
		}
		writeBody(w, `{"id":"U001","username":"admin","first_name":"Ada","last_name":"Admin","email":"admin@mediflow.com","role":"admin"}`)
	})
	mux.HandleFunc("GET /api/patients", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `[{"id":"P001","name":"John Smith","age":45,"gender":"male"},{"id":"P002","name":"Sarah Johnson","age":32,"gender":"female"}]`)
	})
	mux.HandleFunc("POST /api/patients", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		writeBody(w, `{"id":"P003","name":"Ada Lovelace","age":36,"gender":"female"}`)
	})
	mux.HandleFunc("PATCH /api/patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{}`)
	})
	mux.HandleFunc("PUT /api/auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"message":"Password updated successfully"}`)
	})
	mux.HandleFunc("GET /api/analytics/trends/occupancy", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `[{"date":"2024-01-15","value":82.5},{"date":"2024-01-16","value":84}]`)
	})
	mux.HandleFunc("GET /api/analytics/trends/readmissions", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `[{"date":"2024-01-15","value":2}]`)
	})
	mux.HandleFunc("GET /api/analytics/departments/performance", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `[{"department_name":"Cardiology","occupancy_rate":91.2,"patient_satisfaction":88,"readmission_rate":4.1,"cost_efficiency":1.2}]`)
	})
	mux.HandleFunc("GET /api/analytics/patient-outcomes", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"total_patients":120,"recovery_rate":92.5,"mortality_rate":1.5,"complication_rate":6}`)
	})
	mux.HandleFunc("GET /api/analytics/resource-utilization", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"bed_occupancy_rate":78,"staff_utilization_rate":85,"equipment_utilization_rate":64,"maintenance_due_count":3,"equipment_out_of_order_count":1}`)
	})
	mux.HandleFunc("GET /api/analytics/cost-analysis", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		writeBody(w, `{"period":{"start_date":"`+q.Get("start_date")+`","end_date":"`+q.Get("end_date")+`"},"total_cost":1000,"total_revenue":1500,"total_profit":500,"profit_margin":33.33}`)
	})
	mux.HandleFunc("DELETE /api/patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "P001" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Patient not found"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/appointments", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `[{"id":"A001","patientName":"John Smith","doctorName":"Dr. Emily Rodriguez","date":"2024-01-16","time":"10:00","status":"scheduled"}]`)
	})
	mux.HandleFunc("PATCH /api/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{}`)
	})
	mux.HandleFunc("GET /api/doctors", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `[{"id":"D001","name":"Dr. Emily Rodriguez","specialty":"Cardiology"}]`)
	})
	mux.HandleFunc("GET /api/analytics/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{"patientStats":{"total":1247,"new":23},"appointmentStats":{"today":42}}`)
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		key := r.Method + " " + r.URL.Path
		b.requests = append(b.requests, key)
		b.bodies[key] = string(body)
		b.queries[key] = r.URL.RawQuery
		b.mu.Unlock()

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return b, server
}

func writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r == key {
			n++
		}
	}
	return n
}

func (b *fakeBackend) body(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[key]
}

func (b *fakeBackend) query(key string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	values, _ := url.ParseQuery(b.queries[key])
	return values
}

func run(t *testing.T, serverURL, token string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := runApp(t, newTestApp(t, serverURL, token, &out), args...)
	return out.String(), err
}

func newTestApp(t *testing.T, serverURL, token string, out io.Writer) *App {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("API_BASE_URL", serverURL)
	t.Setenv("API_TOKEN", token)
	t.Setenv("API_USERNAME", "")
	t.Setenv("API_PASSWORD", "")
	t.Setenv("NOTIFIER", "log")
	t.Setenv("OTEL_ENABLED", "false")

	a := newApp(out)
	a.retryConfig = retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	return a
}

func runApp(t *testing.T, a *App, args ...string) error {
	t.Helper()
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetErr(io.Discard)
	return a.execute(context.Background(), root)
}

func TestPatientsList(t *testing.T) {
	_, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "patients", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "P001")
	assert.Contains(t, out, "John Smith")
	assert.Contains(t, out, "Sarah Johnson")
}

func TestPatientsListJSON(t *testing.T) {
	_, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "patients", "list", "-o", "json")
	require.NoError(t, err)

	var patients []entities.Patient
	require.NoError(t, json.Unmarshal([]byte(out), &patients))
	require.Len(t, patients, 2)
	assert.Equal(t, 45, patients[0].Age)
}

func TestPatientsAdd(t *testing.T) {
	backend, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "patients", "add", "--name", "Ada Lovelace", "--age", "36", "--gender", "female")
	require.NoError(t, err)
	assert.Contains(t, out, "P003")

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(backend.body("POST /api/patients")), &sent))
	assert.Equal(t, "Ada Lovelace", sent["name"])
	assert.Equal(t, float64(36), sent["age"])
}

func TestPatientsAddValidation(t *testing.T) {
	backend, server := newFakeBackend(t)

	_, err := run(t, server.URL, "test-token", "patients", "add", "--age", "36")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION")
	assert.Zero(t, backend.count("POST /api/patients"))
}

func TestPatientsRemove(t *testing.T) {
	backend, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "patients", "remove", "P001")
	require.NoError(t, err)
	assert.Contains(t, out, "patients P001: ok")
	assert.Equal(t, 1, backend.count("DELETE /api/patients/P001"))
}

func TestPatientsRemoveUnknown(t *testing.T) {
	backend, server := newFakeBackend(t)

	_, err := run(t, server.URL, "test-token", "patients", "remove", "P999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.Zero(t, backend.count("DELETE /api/patients/P999"))
}

func TestAppointmentsStatus(t *testing.T) {
	backend, server := newFakeBackend(t)

	_, err := run(t, server.URL, "test-token", "appointments", "status", "A001", "completed")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed"}`, backend.body("PATCH /api/appointments/A001"))

	_, err = run(t, server.URL, "test-token", "appointments", "status", "A001", "no-show")
	require.Error(t, err)
	assert.Equal(t, 1, backend.count("PATCH /api/appointments/A001"))
}

func TestDashboardJSON(t *testing.T) {
	_, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "dashboard", "-o", "json")
	require.NoError(t, err)

	var stats entities.DashboardStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1247, stats.PatientStats.Total)
	assert.Equal(t, 42, stats.AppointmentStats.Today)
}

func TestLogin(t *testing.T) {
	_, server := newFakeBackend(t)

	out, err := run(t, server.URL, "", "login", "-u", "admin", "-p", "secret")
	require.NoError(t, err)
	assert.Equal(t, "export API_TOKEN=issued-token\n", out)

	_, err = run(t, server.URL, "", "login", "-u", "admin", "-p", "wrong")
	assert.Error(t, err)
}

func TestWhoami(t *testing.T) {
	_, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@mediflow.com")
}

func TestWhoamiWithoutCredentials(t *testing.T) {
	backend, server := newFakeBackend(t)

	_, err := run(t, server.URL, "", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
	assert.Zero(t, backend.count("GET /api/auth/me"))
}

func TestRequireSessionDoesNotRetryRejectedToken(t *testing.T) {
	backend, server := newFakeBackend(t)
	backend.meStatus = http.StatusUnauthorized

	_, err := run(t, server.URL, "stale-token", "patients", "list")
	require.Error(t, err)
	assert.Equal(t, 1, backend.count("GET /api/auth/me"))
	assert.Zero(t, backend.count("GET /api/patients"))
}

func TestParsePatch(t *testing.T) {
	t.Run("opaque records keep JSON types", func(t *testing.T) {
		patch, err := parsePatch[entities.Record]([]string{"status=completed", "age=46", "active=true", "notes=", `name="007"`})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"status": "completed",
			"age":    float64(46),
			"active": true,
			"notes":  "",
			"name":   "007",
		}, patch)
	})

	t.Run("typed entities follow their fields", func(t *testing.T) {
		patch, err := parsePatch[entities.Patient]([]string{"contact=5551234", "age=46", "diagnosis=true"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"contact":   "5551234",
			"age":       float64(46),
			"diagnosis": "true",
		}, patch)

		_, err = parsePatch[entities.Patient]([]string{"age=forty"})
		assert.Error(t, err)
	})

	t.Run("malformed arguments", func(t *testing.T) {
		_, err := parsePatch[entities.Record]([]string{"status"})
		assert.Error(t, err)

		_, err = parsePatch[entities.Record]([]string{"id=P002"})
		assert.Error(t, err)
	})
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, []string{"ID", "NAME"}, [][]string{{"P001", "John Smith"}}))

	assert.Contains(t, buf.String(), "P001")
	assert.Contains(t, buf.String(), "John Smith")
}

func TestFailedCommandStillCloses(t *testing.T) {
	for _, args := range [][]string{
		{"patients", "remove", "P999"},
		{"patients", "list"},
	} {
		t.Run(args[1], func(t *testing.T) {
			_, server := newFakeBackend(t)
			a := newTestApp(t, server.URL, "test-token", io.Discard)
			closed := false
			a.closers = append(a.closers, func(context.Context) error {
				closed = true
				return nil
			})

			_ = runApp(t, a, args...)
			assert.True(t, closed)
			assert.Empty(t, a.closers)
		})
	}
}

func TestPatientsUpdateKeepsStringFields(t *testing.T) {
	backend, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "patients", "update", "P001", "contact=5551234", "age=46")
	require.NoError(t, err)
	assert.Contains(t, out, "patients P001: ok")
	assert.JSONEq(t, `{"contact":"5551234","age":46}`, backend.body("PATCH /api/patients/P001"))

	_, err = run(t, server.URL, "test-token", "patients", "update", "P001", "age=forty")
	require.Error(t, err)
	assert.Equal(t, 1, backend.count("PATCH /api/patients/P001"))
}

func TestPatientsListFilters(t *testing.T) {
	backend, server := newFakeBackend(t)

	_, err := run(t, server.URL, "test-token", "patients", "list", "--search", "smith", "--skip", "10", "--limit", "5")
	require.NoError(t, err)

	q := backend.query("GET /api/patients")
	assert.Equal(t, "smith", q.Get("search"))
	assert.Equal(t, "10", q.Get("skip"))
	assert.Equal(t, "5", q.Get("limit"))

	_, err = run(t, server.URL, "test-token", "patients", "list", "--limit=-1")
	assert.Error(t, err)
}

func TestAnalyticsReport(t *testing.T) {
	backend, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "analytics", "report", "--days", "7", "--department", "D001", "-o", "json")
	require.NoError(t, err)

	var report entities.AnalyticsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 7, report.Trends.Days)
	assert.Len(t, report.Trends.Occupancy, 2)
	assert.Equal(t, "Cardiology", report.Departments[0].DepartmentName)
	assert.Equal(t, 120, report.Outcomes.TotalPatients)
	assert.Equal(t, 3, report.Resources.MaintenanceDueCount)
	assert.InDelta(t, 500, report.Costs.TotalProfit, 1e-9)

	assert.Equal(t, "7", backend.query("GET /api/analytics/trends/occupancy").Get("days"))
	assert.Equal(t, "D001", backend.query("GET /api/analytics/cost-analysis").Get("department_id"))
}

func TestAnalyticsTrends(t *testing.T) {
	backend, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "analytics", "trends")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-16")
	assert.Contains(t, out, "82.5")
	assert.Equal(t, "30", backend.query("GET /api/analytics/trends/readmissions").Get("days"))
}

func TestChangePassword(t *testing.T) {
	backend, server := newFakeBackend(t)

	out, err := run(t, server.URL, "test-token", "change-password", "--current", "secret", "--new", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "password changed\n", out)
	assert.JSONEq(t, `{"current_password":"secret","new_password":"s3cret!"}`, backend.body("PUT /api/auth/change-password"))

	_, err = run(t, server.URL, "test-token", "change-password", "--current", "secret", "--new", "secret")
	require.Error(t, err)
	assert.Equal(t, 1, backend.count("PUT /api/auth/change-password"))
}
