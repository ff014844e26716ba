package project

// Project is the top-level container owning a forest of tasks. It maps to one
// course activity instance; ContextID is the host module security context
// under which AI actions run (0 when unresolved).
type Project struct {
	ID        int    `db:"id" json:"id"`
	CourseID  int    `db:"course_id" json:"course_id"`
	ClientID  int    `db:"client_id" json:"client_id"`
	ContextID int    `db:"context_id" json:"context_id"`
	Name      string `db:"name" json:"name"`
}

// Client is the course structural unit (section/topic) a project belongs to,
// used as a rollup dimension in manager dashboards.
type Client struct {
	ID       int    `db:"id" json:"id"`
	CourseID int    `db:"course_id" json:"course_id"`
	Name     string `db:"name" json:"name"`
}

// StatusOption maps a project-scoped status code to a display label.
type StatusOption struct {
	ID        int    `db:"id" json:"id"`
	ProjectID int    `db:"project_id" json:"project_id"`
	Code      string `db:"code" json:"code"`
	Label     string `db:"label" json:"label"`
}
