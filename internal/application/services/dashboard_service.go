package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
	"github.com/zatekoja/mediflow-admin/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

// DashboardService composes the patient, doctor and appointment collections with the
// aggregate statistics shown on the dashboard.
type DashboardService struct {
	Patients     *CollectionSyncController[entities.Patient]
	Doctors      *CollectionSyncController[entities.Doctor]
	Appointments *CollectionSyncController[entities.Appointment]

	analytics providers.AnalyticsProvider
	notifier  providers.Notifier

	mu    sync.RWMutex
	stats entities.DashboardStats
}

// NewDashboardService creates a new dashboard service. analytics may be nil, in which case
// only the locally maintained counters are available.
func NewDashboardService(
	patients providers.CollectionProvider[entities.Patient],
	doctors providers.CollectionProvider[entities.Doctor],
	appointments providers.CollectionProvider[entities.Appointment],
	analytics providers.AnalyticsProvider,
	opts SyncOptions,
) *DashboardService {
	withNoun := func(noun string) SyncOptions {
		o := opts
		o.Noun = noun
		return o
	}

	s := &DashboardService{
		Patients:     NewCollectionSyncController(patients, withNoun("Patient")),
		Doctors:      NewCollectionSyncController(doctors, withNoun("Doctor")),
		Appointments: NewCollectionSyncController(appointments, withNoun("Appointment")),
		analytics:    analytics,
		notifier:     opts.Notifier,
	}

	s.Patients.OnCreated(func(entities.Patient) {
		s.bump(func(st *entities.DashboardStats) {
			st.PatientStats.Total++
			st.PatientStats.New++
		})
	})
	s.Appointments.OnCreated(func(entities.Appointment) {
		s.bump(func(st *entities.DashboardStats) {
			st.AppointmentStats.Today++
			st.AppointmentStats.Upcoming++
		})
	})
	s.Doctors.OnCreated(func(entities.Doctor) {
		s.bump(func(st *entities.DashboardStats) {
			st.ResourceStats.TotalStaff++
		})
	})

	s.Patients.OnRemoved(func(entities.Patient) {
		s.bump(func(st *entities.DashboardStats) {
			decrement(&st.PatientStats.Total)
		})
	})
	s.Appointments.OnRemoved(func(ap entities.Appointment) {
		if ap.Status != entities.AppointmentStatusScheduled {
			return
		}
		s.bump(func(st *entities.DashboardStats) {
			decrement(&st.AppointmentStats.Upcoming)
		})
	})
	s.Doctors.OnRemoved(func(entities.Doctor) {
		s.bump(func(st *entities.DashboardStats) {
			decrement(&st.ResourceStats.TotalStaff)
		})
	})

	return s
}

// RefreshAll reloads the three collections and the statistics concurrently. Every
// collection records its own outcome; the first error is returned.
func (s *DashboardService) RefreshAll(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, "dashboard.refresh_all")
	defer span.End()

	var g errgroup.Group
	g.Go(func() error { return s.Patients.Refresh(ctx) })
	g.Go(func() error { return s.Doctors.Refresh(ctx) })
	g.Go(func() error { return s.Appointments.Refresh(ctx) })
	g.Go(func() error { return s.RefreshStats(ctx) })

	err := g.Wait()
	observability.RecordError(span, err)
	return err
}

// RefreshStats replaces the local counters with the backend's figures
func (s *DashboardService) RefreshStats(ctx context.Context) error {
	if s.analytics == nil {
		return nil
	}
	stats, err := s.analytics.GetDashboardMetrics(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to load dashboard metrics")
		return err
	}
	if stats == nil {
		return nil
	}

	s.mu.Lock()
	s.stats = *stats
	s.mu.Unlock()
	return nil
}

// Stats returns the current dashboard statistics
func (s *DashboardService) Stats() entities.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// UpdateAppointmentStatus changes the status of an appointment
func (s *DashboardService) UpdateAppointmentStatus(ctx context.Context, id string, status entities.AppointmentStatus) entities.OperationResult {
	if !status.Valid() {
		err := apperrors.NewFieldValidationError(
			fmt.Sprintf("unknown appointment status %q", status),
			map[string]string{"status": "Status must be scheduled, completed or cancelled"},
		)
		return s.reject(ctx, "Failed to update appointment", err)
	}
	return s.Appointments.UpdateField(ctx, id, map[string]any{"status": string(status)})
}

// RescheduleAppointment moves an appointment to a new date and time
func (s *DashboardService) RescheduleAppointment(ctx context.Context, id, date, time string) entities.OperationResult {
	fields := map[string]string{}
	if date == "" {
		fields["date"] = "Date is required"
	}
	if time == "" {
		fields["time"] = "Time is required"
	}
	if len(fields) > 0 {
		return s.reject(ctx, "Failed to reschedule appointment", apperrors.NewFieldValidationError("Date and time are required", fields))
	}
	return s.Appointments.UpdateField(ctx, id, map[string]any{"date": date, "time": time})
}

func (s *DashboardService) reject(ctx context.Context, prefix string, err error) entities.OperationResult {
	if s.notifier != nil {
		s.notifier.Notify(ctx, entities.NotificationError, fmt.Sprintf("%s: %s", prefix, apperrors.Message(err)))
	}
	return entities.Failed(err)
}

func (s *DashboardService) bump(fn func(*entities.DashboardStats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

func decrement(n *int) {
	if *n > 0 {
		*n--
	}
}
