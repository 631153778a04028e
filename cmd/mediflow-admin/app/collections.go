package app

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zatekoja/mediflow-admin/internal/application/services"
	"github.com/zatekoja/mediflow-admin/internal/domain/entities"
	"github.com/zatekoja/mediflow-admin/internal/domain/providers"
)

// collectionCmd describes how one collection is listed and how its add payload is built
type collectionCmd[T entities.Entity] struct {
	use        string
	short      string
	controller func() *services.CollectionSyncController[T]
	headers    []string
	row        func(T) []string
	addFlags   func(cmd *cobra.Command)
	payload    func(cmd *cobra.Command) (any, error)
}

func (c collectionCmd[T]) build(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   c.use,
		Short: c.short,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the " + c.use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts, err := listOptions(cmd)
			if err != nil {
				return err
			}
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			ctrl := c.controller()
			ctrl.SetListOptions(opts)
			if err := ctrl.Refresh(ctx); err != nil {
				return err
			}
			return c.render(cmd, a, ctrl.Items())
		},
	}
	list.Flags().String("search", "", "Only entries matching this text")
	list.Flags().Int("skip", 0, "Number of entries to skip")
	list.Flags().Int("limit", 0, "Maximum number of entries, 0 for the server default")
	cmd.AddCommand(list)

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a new entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			payload, err := c.payload(cmd)
			if err != nil {
				return err
			}
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			created, result := c.controller().Create(ctx, payload)
			if err := resultError(result); err != nil {
				return err
			}
			return c.render(cmd, a, []T{created})
		},
	}
	c.addFlags(add)
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "update <id> <field=value>...",
		Short: "Change fields of an entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePatch[T](args[1:])
			if err != nil {
				return err
			}
			return mutateWith(a, cmd, c.controller(), args[0], func(ctrl *services.CollectionSyncController[T]) entities.OperationResult {
				return ctrl.UpdateField(cmd.Context(), args[0], patch)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateWith(a, cmd, c.controller(), args[0], func(ctrl *services.CollectionSyncController[T]) entities.OperationResult {
				return ctrl.Remove(cmd.Context(), args[0])
			})
		},
	})

	return cmd
}

func (c collectionCmd[T]) render(cmd *cobra.Command, a *App, items []T) error {
	if outputFormat(cmd) == outputJSON {
		return writeJSON(a.out, items)
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, c.row(item))
	}
	return renderTable(a.out, c.headers, rows)
}

// mutateWith loads the collection so the entity is known locally, then applies op
func mutateWith[T entities.Entity](a *App, cmd *cobra.Command, ctrl *services.CollectionSyncController[T], id string, op func(*services.CollectionSyncController[T]) entities.OperationResult) error {
	ctx := cmd.Context()
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}
	if err := resultError(op(ctrl)); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s: ok\n", ctrl.Name(), id)
	return nil
}

func listOptions(cmd *cobra.Command) (providers.ListOptions, error) {
	f := cmd.Flags()
	opts := providers.ListOptions{}
	opts.Search, _ = f.GetString("search")
	opts.Skip, _ = f.GetInt("skip")
	opts.Limit, _ = f.GetInt("limit")
	if opts.Skip < 0 || opts.Limit < 0 {
		return opts, fmt.Errorf("--skip and --limit must not be negative")
	}
	return opts, nil
}

func resultError(result entities.OperationResult) error {
	if result.Success {
		return nil
	}
	if result.Kind != "" {
		return fmt.Errorf("%s: %s", result.Kind, result.Error)
	}
	return errors.New(result.Error)
}

func newPatientsCmd(a *App) *cobra.Command {
	return collectionCmd[entities.Patient]{
		use:        "patients",
		short:      "Manage patient records",
		controller: func() *services.CollectionSyncController[entities.Patient] { return a.dashboard.Patients },
		headers:    []string{"ID", "NAME", "AGE", "GENDER", "CONTACT", "DIAGNOSIS", "LAST VISIT"},
		row: func(p entities.Patient) []string {
			return []string{p.ID, p.Name, strconv.Itoa(p.Age), p.Gender, p.Contact, p.Diagnosis, p.LastVisit}
		},
		addFlags: func(cmd *cobra.Command) {
			cmd.Flags().String("name", "", "Full name")
			cmd.Flags().Int("age", 0, "Age in years")
			cmd.Flags().String("gender", "", "Gender")
			cmd.Flags().String("contact", "", "Phone or email")
			cmd.Flags().String("diagnosis", "", "Primary diagnosis")
		},
		payload: func(cmd *cobra.Command) (any, error) {
			f := cmd.Flags()
			req := entities.NewPatientRequest{}
			req.Name, _ = f.GetString("name")
			req.Age, _ = f.GetInt("age")
			req.Gender, _ = f.GetString("gender")
			req.Contact, _ = f.GetString("contact")
			req.Diagnosis, _ = f.GetString("diagnosis")
			return req, nil
		},
	}.build(a)
}

func newDoctorsCmd(a *App) *cobra.Command {
	return collectionCmd[entities.Doctor]{
		use:        "doctors",
		short:      "Manage the doctor roster",
		controller: func() *services.CollectionSyncController[entities.Doctor] { return a.dashboard.Doctors },
		headers:    []string{"ID", "NAME", "SPECIALTY", "EXPERIENCE", "EMAIL", "PHONE", "SCHEDULE"},
		row: func(d entities.Doctor) []string {
			return []string{d.ID, d.Name, d.Specialty, d.Experience, d.Email, d.Phone, d.Schedule}
		},
		addFlags: func(cmd *cobra.Command) {
			cmd.Flags().String("name", "", "Full name")
			cmd.Flags().String("specialty", "", "Medical specialty")
			cmd.Flags().String("experience", "", "Experience, e.g. \"15 years\"")
			cmd.Flags().String("email", "", "Email address")
			cmd.Flags().String("phone", "", "Phone number")
			cmd.Flags().String("schedule", "", "Working hours")
		},
		payload: func(cmd *cobra.Command) (any, error) {
			f := cmd.Flags()
			req := entities.NewDoctorRequest{}
			req.Name, _ = f.GetString("name")
			req.Specialty, _ = f.GetString("specialty")
			req.Experience, _ = f.GetString("experience")
			req.Email, _ = f.GetString("email")
			req.Phone, _ = f.GetString("phone")
			req.Schedule, _ = f.GetString("schedule")
			return req, nil
		},
	}.build(a)
}

func newAppointmentsCmd(a *App) *cobra.Command {
	controller := func() *services.CollectionSyncController[entities.Appointment] { return a.dashboard.Appointments }
	cmd := collectionCmd[entities.Appointment]{
		use:        "appointments",
		short:      "Manage scheduled appointments",
		controller: controller,
		headers:    []string{"ID", "PATIENT", "DOCTOR", "DEPARTMENT", "DATE", "TIME", "STATUS"},
		row: func(ap entities.Appointment) []string {
			return []string{ap.ID, ap.PatientName, ap.DoctorName, ap.Department, ap.Date, ap.Time, string(ap.Status)}
		},
		addFlags: func(cmd *cobra.Command) {
			cmd.Flags().String("patient", "", "Patient id")
			cmd.Flags().String("doctor", "", "Doctor id")
			cmd.Flags().String("date", "", "Date (YYYY-MM-DD)")
			cmd.Flags().String("time", "", "Time (HH:MM)")
			cmd.Flags().String("type", "consultation", "Appointment type")
			cmd.Flags().String("reason", "", "Reason for the visit")
			cmd.Flags().String("department", "", "Department")
		},
		payload: func(cmd *cobra.Command) (any, error) {
			f := cmd.Flags()
			req := entities.NewAppointmentRequest{}
			req.PatientID, _ = f.GetString("patient")
			req.DoctorID, _ = f.GetString("doctor")
			req.ScheduledDate, _ = f.GetString("date")
			req.ScheduledTime, _ = f.GetString("time")
			req.Type, _ = f.GetString("type")
			req.Reason, _ = f.GetString("reason")
			req.Department, _ = f.GetString("department")
			return req.WithDateTime(), nil
		},
	}.build(a)

	cmd.AddCommand(&cobra.Command{
		Use:       "status <id> <scheduled|completed|cancelled>",
		Short:     "Change the status of an appointment",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"scheduled", "completed", "cancelled"},
		RunE: func(cmd *cobra.Command, args []string) error {
			status := entities.AppointmentStatus(args[1])
			return mutateWith(a, cmd, controller(), args[0], func(*services.CollectionSyncController[entities.Appointment]) entities.OperationResult {
				return a.dashboard.UpdateAppointmentStatus(cmd.Context(), args[0], status)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reschedule <id> <date> <time>",
		Short: "Move an appointment to a new date and time",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateWith(a, cmd, controller(), args[0], func(*services.CollectionSyncController[entities.Appointment]) entities.OperationResult {
				return a.dashboard.RescheduleAppointment(cmd.Context(), args[0], args[1], args[2])
			})
		},
	})

	return cmd
}
