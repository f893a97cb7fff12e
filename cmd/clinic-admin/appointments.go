package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-admin/internal/appointment"
	"github.com/hackgods/clinic-admin/internal/selection"
)

func appointmentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appointment", "appt"},
		Short:   "List and manage appointments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			items, err := a.appts.List(ctx)
			if err != nil {
				return a.checkSession(ctx, err)
			}
			printAppointments(a.out, items)
			return nil
		},
	})

	eligibleCmd := &cobra.Command{
		Use:   "eligible",
		Short: "Show the doctors that can take a diagnosis",
		RunE: func(cmd *cobra.Command, args []string) error {
			diagnosis, _ := cmd.Flags().GetString("diagnosis")

			ctx, _, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			doctors, err := a.doctors.List(ctx)
			if err != nil {
				return a.checkSession(ctx, err)
			}
			printDoctors(a.out, selection.Eligible(doctors, a.catalog, diagnosis), a.catalog)
			return nil
		},
	}
	eligibleCmd.Flags().StringP("diagnosis", "d", "", "Diagnosis or specialization label")
	cmd.AddCommand(eligibleCmd)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Book an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := a.doctors.List(ctx); err != nil {
				return a.checkSession(ctx, err)
			}

			form := appointment.NewForm(a.appts, a.doctors, a.catalog)
			for _, f := range []struct {
				field appointment.Field
				flag  string
			}{
				{appointment.FieldPatientName, "patient"},
				{appointment.FieldAge, "age"},
				{appointment.FieldDiagnosis, "diagnosis"},
				{appointment.FieldDoctor, "doctor"},
				{appointment.FieldDate, "date"},
				{appointment.FieldTime, "time"},
				{appointment.FieldMeridiem, "meridiem"},
			} {
				v, _ := cmd.Flags().GetString(f.flag)
				if err := form.Set(f.field, v); err != nil {
					return err
				}
			}

			appt, err := form.Submit(ctx)
			if err != nil {
				return a.checkSession(ctx, err)
			}
			fmt.Fprintf(a.out, "Booked %s: %s with %s on %s at %s (%s)\n",
				appt.ID, appt.PatientName, appt.Doctor, appt.Date,
				appointment.FormatTime12(appt.Time, nil), appt.Status)
			return nil
		},
	}
	addCmd.Flags().String("patient", "", "Patient name")
	addCmd.Flags().String("age", "", "Patient age in whole years")
	addCmd.Flags().StringP("diagnosis", "d", "", "Diagnosis or specialization label")
	addCmd.Flags().String("doctor", "", "Doctor name, must be eligible for the diagnosis")
	addCmd.Flags().String("date", "", "Visit date, YYYY-MM-DD")
	addCmd.Flags().String("time", "", "Visit time, HH:MM or H:MM with --meridiem")
	addCmd.Flags().String("meridiem", "", "AM or PM for 12-hour times")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an appointment",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.appts.Remove(ctx, args[0]); err != nil {
				return a.checkSession(ctx, err)
			}
			fmt.Fprintf(a.out, "Deleted appointment %s\n", args[0])
			return nil
		},
	})

	return cmd
}
