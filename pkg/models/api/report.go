package api

import "time"

type Network struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Metric struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Calculated  bool     `json:"calculated"`
	DependsOn   []string `json:"depends_on,omitempty"`
	Aggregation string   `json:"aggregation"`
}

type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ReportRequest is the body of POST /api/v1/reports. Networks without
// profiles fall back to the server's profiles file.
type ReportRequest struct {
	Period    string               `json:"period"`
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Networks  []string             `json:"networks"`
	Profiles  map[string][]Profile `json:"profiles,omitempty"`
	Metrics   map[string][]string  `json:"metrics,omitempty"`
}

type Column struct {
	Key    string `json:"key"`
	Header string `json:"header"`
}

type Sheet struct {
	Name    string           `json:"name"`
	Network string           `json:"network"`
	Columns []Column         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Summary []map[string]any `json:"summary"`
}

type Failure struct {
	Network string `json:"network"`
	Error   string `json:"error"`
}

type Report struct {
	Period      string    `json:"period"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	GeneratedAt time.Time `json:"generated_at"`
	Sheets      []Sheet   `json:"sheets"`
	Failures    []Failure `json:"failures"`
}

type Error struct {
	Error string `json:"error"`
}
