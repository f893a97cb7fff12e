package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/selection"
)

func dashboardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Summary of doctors and recent appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			recent, _ := cmd.Flags().GetInt("recent")
			if recent < 0 {
				return clinic.NewValidationError("recent", "must be zero or more")
			}

			ctx, s, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			doctors, err := a.doctors.List(ctx)
			if err != nil {
				return a.checkSession(ctx, err)
			}
			items, err := a.appts.List(ctx)
			if err != nil {
				return a.checkSession(ctx, err)
			}

			fmt.Fprintf(a.out, "Welcome, %s\n\n", s.Username)

			counts := make(map[string]int)
			for _, d := range doctors {
				counts[selection.Joined(d, a.catalog)]++
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SPECIALIZATION\tDOCTORS")
			for _, row := range specializationRows(a.catalog.ListSpecializations(), counts) {
				fmt.Fprintf(tw, "%s\t%d\n", row.label, row.doctors)
			}
			fmt.Fprintf(tw, "Total\t%d\n", len(doctors))
			tw.Flush()

			fmt.Fprintf(a.out, "\nAppointments: %d", len(items))
			if n := dangling(items, doctors); n > 0 {
				fmt.Fprintf(a.out, " (%d with a removed doctor)", n)
			}
			fmt.Fprintln(a.out)

			sort.SliceStable(items, func(i, j int) bool {
				return items[i].CreatedAt.After(items[j].CreatedAt)
			})
			if len(items) > recent {
				items = items[:recent]
			}
			if len(items) > 0 {
				fmt.Fprintln(a.out, "\nMost recent:")
				printAppointments(a.out, items)
			}
			return nil
		},
	}
	cmd.Flags().Int("recent", 5, "Number of recent appointments to show")
	return cmd
}

type labelCount struct {
	label   string
	doctors int
}

// specializationRows lists non-zero counts in catalog order, followed by
// labels the catalog does not know in lexical order.
func specializationRows(ordered []string, counts map[string]int) []labelCount {
	rows := make([]labelCount, 0, len(counts))
	seen := make(map[string]struct{}, len(ordered))
	for _, l := range ordered {
		seen[l] = struct{}{}
		if counts[l] > 0 {
			rows = append(rows, labelCount{l, counts[l]})
		}
	}
	var rest []string
	for l, n := range counts {
		if _, ok := seen[l]; !ok && n > 0 {
			rest = append(rest, l)
		}
	}
	sort.Strings(rest)
	for _, l := range rest {
		rows = append(rows, labelCount{l, counts[l]})
	}
	return rows
}

// dangling counts appointments whose doctor no longer exists.
func dangling(items []clinic.Appointment, doctors []clinic.Doctor) int {
	names := make(map[string]struct{}, len(doctors))
	for _, d := range doctors {
		names[d.Name] = struct{}{}
	}
	n := 0
	for _, a := range items {
		if _, ok := names[a.Doctor]; !ok {
			n++
		}
	}
	return n
}
