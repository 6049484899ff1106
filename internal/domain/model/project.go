// Package model contains domain models passed between layers.
package model

// HealthMetrics is the {progress, risks} pair attached to a project.
// Values are taken as delivered; nothing here clamps or validates them.
type HealthMetrics struct {
	Progress float64 `json:"progress"` // nominally 0..100
	Risks    float64 `json:"risks"`    // nominally 0..10
}

// Project is a single entry of the project-health list served by the
// upstream API. The dashboard never creates or mutates these.
type Project struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	HealthMetrics HealthMetrics `json:"healthMetrics"`
}

// ProjectRecord is the catalog-side view of a project, the raw material the
// health API turns into a Project.
type ProjectRecord struct {
	ID             string   `json:"id" koanf:"id"`
	Name           string   `json:"name" koanf:"name"`
	Description    string   `json:"description,omitempty" koanf:"description"`
	TotalTasks     int      `json:"totalTasks" koanf:"total_tasks"`
	CompletedTasks int      `json:"completedTasks" koanf:"completed_tasks"`
	StartDate      string   `json:"startDate" koanf:"start_date"` // YYYY-MM-DD
	EndDate        string   `json:"endDate" koanf:"end_date"`     // YYYY-MM-DD
	RiskFactors    []string `json:"riskFactors,omitempty" koanf:"risk_factors"`
}

// CloneProjects returns a copy of ps that shares no backing array with it.
// A nil input yields an empty, non-nil slice.
func CloneProjects(ps []Project) []Project {
	out := make([]Project, len(ps))
	copy(out, ps)
	return out
}
