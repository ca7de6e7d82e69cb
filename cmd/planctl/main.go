// Command planctl runs the planning engine on a YAML request file and prints
// the resulting plan without touching a database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"basegraph.app/cadence/internal/export"
	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/planning"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now))
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	fs := flag.NewFlagSet("planctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("f", "", "path to the YAML plan request")
	format := fs.String("format", "json", "output format: json, markdown or html")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *file == "" {
		fmt.Fprintln(stderr, "planctl: -f is required")
		return 2
	}
	switch *format {
	case "json", "markdown", "html":
	default:
		fmt.Fprintf(stderr, "planctl: unknown format %q\n", *format)
		return 2
	}

	req, err := loadRequest(*file)
	if err != nil {
		fmt.Fprintf(stderr, "planctl: %v\n", err)
		return 1
	}

	engine := planning.New(planning.Collaborators{})

	var (
		result any
		doc    export.Document
	)
	if req.Mode == model.PlanModeRefresh {
		res := engine.GenerateRefreshedPlanProposal(req.refreshRequest(now()))
		result = res
		doc = export.Document{
			Title:        res.Proposal.Name,
			Status:       model.PlanStatusProposal,
			StartDate:    res.Proposal.StartDate,
			HorizonWeeks: res.Diagnostics.HorizonWeeks,
			Items:        res.Proposal.Items,
			Diagnostics:  &res.Diagnostics,
		}
	} else {
		res := engine.GeneratePublicationPlan(req.generateRequest(now()))
		result = res
		doc = export.Document{
			Title:        req.Name,
			StartDate:    res.Diagnostics.StartDate,
			HorizonWeeks: res.Diagnostics.HorizonWeeks,
			Items:        res.Items,
			Diagnostics:  &res.Diagnostics,
		}
	}

	switch *format {
	case "markdown":
		fmt.Fprint(stdout, export.Markdown(doc))
	case "html":
		out, err := export.HTML(doc)
		if err != nil {
			fmt.Fprintf(stderr, "planctl: %v\n", err)
			return 1
		}
		fmt.Fprint(stdout, out)
	default:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "planctl: %v\n", err)
			return 1
		}
	}
	return 0
}
