package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/social-atlas/pkg/models/domain"
)

const reportTemplate = `
Social analytics report ({{.Report.Period}})
Period: {{.Report.Start.Format "2006-01-02"}} to {{.Report.End.Format "2006-01-02"}}
Sheets: {{len .Report.Sheets}}, data rows: {{.Report.DataRowCount}}
{{range .Report.Sheets}}
- {{.Name}}: {{len .Rows}} rows
{{- end}}
{{if .Report.Failures}}
Failed networks:
{{- range .Report.Failures}}
- {{.Network.DisplayName}}: {{.Error}}
{{- end}}
{{end}}
{{- range .Outputs}}
Written to {{.}}
{{- end}}
`

const catalogTemplate = `
{{.Network.DisplayName}} metrics
{{range .Metrics}}
- {{.ID}} ({{.Label}}){{if .Calculated}} calculated from {{join .DependsOn ", "}}{{end}}, aggregated by {{.Aggregation}}
{{- end}}
`

// Reporter prints run summaries to the console.
type Reporter struct {
	writer  io.Writer
	report  *template.Template
	catalog *template.Template
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	funcs := template.FuncMap{"join": strings.Join}
	return &Reporter{
		writer:  writer,
		report:  template.Must(template.New("report").Parse(reportTemplate)),
		catalog: template.Must(template.New("catalog").Funcs(funcs).Parse(catalogTemplate)),
	}
}

// Handle prints the report summary followed by where the workbook went.
func (r *Reporter) Handle(report *domain.Report, outputs ...string) error {
	data := struct {
		Report  *domain.Report
		Outputs []string
	}{Report: report, Outputs: outputs}

	if err := r.report.Execute(r.writer, data); err != nil {
		return fmt.Errorf("failed to render report summary: %w", err)
	}
	return nil
}

func (r *Reporter) HandleCatalog(network domain.Network, metrics []domain.MetricDefinition) error {
	data := struct {
		Network domain.Network
		Metrics []domain.MetricDefinition
	}{Network: network, Metrics: metrics}

	if err := r.catalog.Execute(r.writer, data); err != nil {
		return fmt.Errorf("failed to render catalog: %w", err)
	}
	return nil
}
