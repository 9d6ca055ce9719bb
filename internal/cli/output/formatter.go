package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/tunedeck/tunedeck/internal/cli/errors"
	"github.com/tunedeck/tunedeck/internal/domain/registry"
	"github.com/tunedeck/tunedeck/internal/domain/run"
	"github.com/tunedeck/tunedeck/internal/domain/tool"
)

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatRaw  OutputFormat = "raw"
)

type Formatter struct {
	format OutputFormat
	color  bool
}

func NewFormatter(format OutputFormat, useColor bool) *Formatter {
	return &Formatter{
		format: format,
		color:  useColor,
	}
}

// FormatOutcome renders an invocation outcome. Failed outcomes show
// the tool's message, not a stack trace; full detail stays in the
// daemon logs.
func (f *Formatter) FormatOutcome(outcome *tool.Outcome) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(outcome, "", "  ")
		return string(data)
	}
	if f.format == FormatRaw {
		data, _ := json.Marshal(outcome.Result)
		return string(data)
	}

	switch outcome.Status {
	case tool.StatusSuccess:
		data, _ := json.MarshalIndent(outcome.Result, "", "  ")
		return string(data)
	case tool.StatusToolNotFound:
		return f.errorLine(fmt.Sprintf("no tool named %q is registered", outcome.Tool))
	case tool.StatusInvalidInput:
		return f.errorLine(fmt.Sprintf("tool %q rejected the inputs: %s", outcome.Tool, outcome.Reason))
	default:
		return f.errorLine(fmt.Sprintf("tool %q failed: %s", outcome.Tool, outcome.Reason))
	}
}

func (f *Formatter) errorLine(msg string) string {
	if f.color {
		return color.RedString("Error: ") + msg
	}
	return "Error: " + msg
}

func (f *Formatter) FormatError(err errors.ClassifiedError) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(err, "", "  ")
		return string(data)
	}

	var msg string
	if f.color {
		msg = color.RedString("Error [%s]: %s", err.Kind, err.Message)
		if err.Hint != "" {
			msg += "\n" + color.YellowString("Hint: %s", err.Hint)
		}
	} else {
		msg = fmt.Sprintf("Error [%s]: %s", err.Kind, err.Message)
		if err.Hint != "" {
			msg += "\nHint: " + err.Hint
		}
	}
	return msg
}

func (f *Formatter) FormatTools(entries []registry.Entry) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(data))
		return ""
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Name", "Version", "Source", "Description"}),
	)

	for _, e := range entries {
		table.Append([]string{e.Name, e.Version, e.Source, e.Description})
	}

	table.Render()
	return "" // tablewriter writes directly to stdout
}

func (f *Formatter) FormatRuns(runs []*run.Run) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(runs, "", "  ")
		fmt.Println(string(data))
		return ""
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"ID", "Name", "Model", "Status", "Created"}),
	)

	for _, r := range runs {
		table.Append([]string{r.ID, r.Name, r.BaseModel, string(r.Status), r.CreatedAt.Format("2006-01-02 15:04")})
	}

	table.Render()
	return ""
}

// FormatPreflight renders a preflight report with one line per tool.
func (f *Formatter) FormatPreflight(report *run.PreflightReport) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(report, "", "  ")
		return string(data)
	}

	var out string
	for _, o := range report.Outcomes {
		if o.OK() {
			out += fmt.Sprintf("  %s: ok\n", o.Tool)
		} else {
			out += fmt.Sprintf("  %s: %s (%s)\n", o.Tool, o.Status, o.Reason)
		}
	}
	if report.Passed {
		if f.color {
			return color.GreenString("Preflight passed") + "\n" + out
		}
		return "Preflight passed\n" + out
	}
	if f.color {
		return color.RedString("Preflight failed") + "\n" + out
	}
	return "Preflight failed\n" + out
}
