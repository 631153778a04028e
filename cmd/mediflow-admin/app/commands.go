// Package app provides the commands of the mediflow-admin command line.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// Execute runs the command line with the process arguments, writing results to stdout
func Execute(ctx context.Context) error {
	a := newApp(os.Stdout)
	return a.execute(ctx, newRootCmd(a))
}

// execute runs root and then releases telemetry and clients, also when the command failed
func (a *App) execute(ctx context.Context, root *cobra.Command) (err error) {
	defer func() {
		err = errors.Join(err, a.close(ctx))
	}()
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "mediflow-admin",
		Short: "Manage patients, doctors and appointments of a MediFlow backend",
		Long: `mediflow-admin mirrors the patient, doctor and appointment collections of a MediFlow
backend and applies changes to them.

Connection settings come from the environment: API_BASE_URL, API_TIMEOUT and either
API_TOKEN or API_USERNAME/API_PASSWORD.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}
	root.SetOut(a.out)
	root.PersistentFlags().StringP("output", "o", outputTable, "Output format (table|json)")

	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newWhoamiCmd(a))
	root.AddCommand(newPatientsCmd(a))
	root.AddCommand(newDoctorsCmd(a))
	root.AddCommand(newAppointmentsCmd(a))
	root.AddCommand(newDashboardCmd(a))
	root.AddCommand(newAnalyticsCmd(a))
	root.AddCommand(newChangePasswordCmd(a))

	return root
}

func newLoginCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print an access token for API_TOKEN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" {
				username = a.cfg.Auth.Username
			}
			if password == "" {
				password = a.cfg.Auth.Password
			}
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required")
			}

			token, err := a.login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if expires, ok := a.session.ExpiresAt(); ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "signed in as %s, token expires %s\n", username, expires.Format("2006-01-02 15:04:05 MST"))
			}
			fmt.Fprintf(a.out, "export API_TOKEN=%s\n", token)
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Username (defaults to API_USERNAME)")
	cmd.Flags().StringP("password", "p", "", "Password (defaults to API_PASSWORD)")
	return cmd
}

func newChangePasswordCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change the password of the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			current, _ := cmd.Flags().GetString("current")
			next, _ := cmd.Flags().GetString("new")
			if current == "" {
				current = a.cfg.Auth.Password
			}
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if err := a.client.ChangePassword(ctx, current, next); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "password changed")
			return nil
		},
	}
	cmd.Flags().String("current", "", "Current password (defaults to API_PASSWORD)")
	cmd.Flags().String("new", "", "New password")
	return cmd
}

func newWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			user, err := a.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if outputFormat(cmd) == outputJSON {
				return writeJSON(a.out, user)
			}
			return renderTable(a.out,
				[]string{"ID", "USERNAME", "NAME", "EMAIL", "ROLE"},
				[][]string{{user.ID, user.Username, user.FirstName + " " + user.LastName, user.Email, user.Role}},
			)
		},
	}
}

func newDashboardCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard statistics and collection sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			// Partial results are still worth printing
			refreshErr := a.dashboard.RefreshAll(ctx)

			stats := a.dashboard.Stats()
			if outputFormat(cmd) == outputJSON {
				if err := writeJSON(a.out, stats); err != nil {
					return err
				}
				return refreshErr
			}

			rows := [][]string{
				{"patients", fmt.Sprint(len(a.dashboard.Patients.Items())), string(a.dashboard.Patients.Status())},
				{"doctors", fmt.Sprint(len(a.dashboard.Doctors.Items())), string(a.dashboard.Doctors.Status())},
				{"appointments", fmt.Sprint(len(a.dashboard.Appointments.Items())), string(a.dashboard.Appointments.Status())},
			}
			if err := renderTable(a.out, []string{"COLLECTION", "ITEMS", "STATUS"}, rows); err != nil {
				return err
			}
			if err := renderTable(a.out, []string{"METRIC", "VALUE"}, statsRows(stats)); err != nil {
				return err
			}
			return refreshErr
		},
	}
}

func outputFormat(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("output")
	if err != nil || format == "" {
		return outputTable
	}
	return format
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
