package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hackgods/clinic-admin/internal/appointment"
	"github.com/hackgods/clinic-admin/internal/catalog"
	"github.com/hackgods/clinic-admin/internal/clinic"
	"github.com/hackgods/clinic-admin/internal/selection"
)

func printDoctors(w io.Writer, doctors []clinic.Doctor, cat *catalog.Store) {
	if len(doctors) == 0 {
		fmt.Fprintln(w, "No doctors")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSPECIALIZATION")
	for _, d := range doctors {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Email, selection.Joined(d, cat))
	}
	tw.Flush()
}

func printAppointments(w io.Writer, items []clinic.Appointment) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No appointments")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATIENT\tAGE\tDIAGNOSIS\tDOCTOR\tDATE\tTIME\tSTATUS")
	for _, a := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.PatientName, a.Age, a.Diagnosis, a.Doctor, a.Date,
			appointment.FormatTime12(a.Time, nil), a.Status)
	}
	tw.Flush()
}
