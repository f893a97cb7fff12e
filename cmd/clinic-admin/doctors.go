package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/selection"
)

func specializationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "specializations",
		Short: "List the specialization catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, l := range a.catalog.ListSpecializations() {
				fmt.Fprintln(a.out, l)
			}
			return nil
		},
	}
}

func doctorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "doctors",
		Aliases: []string{"doctor"},
		Short:   "List and manage doctors",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List doctors, optionally for one specialization",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, _ := cmd.Flags().GetString("specialization")
			if spec != "" && spec != "General" {
				if _, ok := a.catalog.Canonical(spec); !ok {
					return clinic.NewValidationError("specialization", fmt.Sprintf("%q is not one of %s",
						spec, strings.Join(a.catalog.ListSpecializations(), ", ")))
				}
			}

			ctx, _, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			doctors, err := a.doctors.List(ctx)
			if err != nil {
				return a.checkSession(ctx, err)
			}
			printDoctors(a.out, selection.Eligible(doctors, a.catalog, spec), a.catalog)
			return nil
		},
	}
	listCmd.Flags().StringP("specialization", "s", "", "Only doctors with this specialization")
	cmd.AddCommand(listCmd)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a doctor",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := clinic.DoctorInput{}
			in.Name, _ = cmd.Flags().GetString("name")
			in.Email, _ = cmd.Flags().GetString("email")
			in.Password, _ = cmd.Flags().GetString("password")
			in.Specialization, _ = cmd.Flags().GetString("specialization")

			ctx, _, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			// loads the name index used for the duplicate check
			if _, err := a.doctors.List(ctx); err != nil {
				return a.checkSession(ctx, err)
			}
			d, err := a.doctors.Add(ctx, in)
			if err != nil {
				return a.checkSession(ctx, err)
			}
			fmt.Fprintf(a.out, "Added %s (%s) as %s\n", d.Name, d.ID, d.Specialization)
			return nil
		},
	}
	addCmd.Flags().String("name", "", "Display name")
	addCmd.Flags().String("email", "", "Contact email")
	addCmd.Flags().String("password", "", "Initial password")
	addCmd.Flags().StringP("specialization", "s", "", "Specialization label")
	cmd.AddCommand(addCmd)

	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a doctor; fields not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := a.doctors.List(ctx); err != nil {
				return a.checkSession(ctx, err)
			}
			current, ok := a.doctors.Get(args[0])
			if !ok {
				return clinic.NewValidationError("id", fmt.Sprintf("no doctor with id %q", args[0]))
			}

			upd := clinic.DoctorUpdate{
				Name:           current.Name,
				Email:          current.Email,
				Specialization: selection.Joined(current, a.catalog),
			}
			if cmd.Flags().Changed("name") {
				upd.Name, _ = cmd.Flags().GetString("name")
			}
			if cmd.Flags().Changed("email") {
				upd.Email, _ = cmd.Flags().GetString("email")
			}
			if cmd.Flags().Changed("specialization") {
				upd.Specialization, _ = cmd.Flags().GetString("specialization")
			}
			upd.Password, _ = cmd.Flags().GetString("password")

			d, err := a.doctors.Update(ctx, args[0], upd)
			if err != nil {
				return a.checkSession(ctx, err)
			}
			fmt.Fprintf(a.out, "Updated %s: %s <%s> %s\n", d.ID, d.Name, d.Email, d.Specialization)
			return nil
		},
	}
	updateCmd.Flags().String("name", "", "New display name")
	updateCmd.Flags().String("email", "", "New contact email")
	updateCmd.Flags().String("password", "", "New password, empty keeps the current one")
	updateCmd.Flags().StringP("specialization", "s", "", "New specialization label")
	cmd.AddCommand(updateCmd)

	deleteCmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a doctor; appointments naming the doctor are kept",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.doctors.Remove(ctx, args[0]); err != nil {
				return a.checkSession(ctx, err)
			}
			fmt.Fprintf(a.out, "Deleted doctor %s\n", args[0])
			return nil
		},
	}
	cmd.AddCommand(deleteCmd)

	return cmd
}
