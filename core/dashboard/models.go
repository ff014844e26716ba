package dashboard

import (
	"strings"

	"github.com/trezcool/techproject/core/task"
)

// closed-state vocabulary, matched case-insensitively against status codes
var closedStatusCodes = map[string]struct{}{
	"complete":  {},
	"completed": {},
	"closed":    {},
	"done":      {},
	"finished":  {},
	"resolved":  {},
}

// IsClosed tells if a task counts as closed: fully done, or carrying one of
// the closed status codes.
func IsClosed(t task.Task) bool {
	if t.Done >= 100 {
		return true
	}
	if t.Status == "" {
		return false
	}
	_, ok := closedStatusCodes[strings.ToLower(t.Status)]
	return ok
}

type (
	// StatusCount is one bar of a status histogram.
	StatusCount struct {
		Label string  `json:"label"`
		Count int     `json:"count"`
		Ratio float64 `json:"ratio"` // share of total, 0 - 100
	}

	// TaskRow is one line of a dashboard detail table.
	TaskRow struct {
		TaskID   int     `json:"task_id"`
		Client   string  `json:"client"`
		Project  string  `json:"project"`
		Title    string  `json:"title"`
		Status   string  `json:"status"`
		Done     float64 `json:"done"` // clamped to 0 - 100
		Assignee string  `json:"assignee,omitempty"`
	}

	// SelfView summarizes the tasks assigned to one user across a course.
	SelfView struct {
		TotalTasks   int           `json:"total_tasks"`
		AverageDone  float64       `json:"average_done"`
		OverdueCount int           `json:"overdue_count"`
		StatusCounts []StatusCount `json:"status_counts"`
		Rows         []TaskRow     `json:"rows"`
	}

	// ClientStat rolls tasks up per course structural unit.
	ClientStat struct {
		Client      string  `json:"client"`
		Tasks       int     `json:"tasks"`
		AverageDone float64 `json:"average_done"`
		Open        int     `json:"open"` // tasks with done < 100
	}

	// WorkdayCount is one Mon-Fri bucket of tasks closed this week.
	WorkdayCount struct {
		Day   string `json:"day"`   // 2006-01-02
		Label string `json:"label"` // e.g. "Mon 02 Jan"
		Count int    `json:"count"`
	}

	AssigneeCount struct {
		AssigneeID int    `json:"assignee_id"`
		Name       string `json:"name"`
		Count      int    `json:"count"`
	}

	Assignee struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	// ManagerView summarizes tasks across all assignees of a course,
	// optionally narrowed to a single assignee.
	ManagerView struct {
		AssigneeID       int             `json:"assignee_id,omitempty"` // active filter
		TotalTasks       int             `json:"total_tasks"`
		AverageDone      float64         `json:"average_done"`
		StatusCounts     []StatusCount   `json:"status_counts"`
		Clients          []ClientStat    `json:"clients"`
		ClosedByWorkday  []WorkdayCount  `json:"closed_by_workday"`
		ClosedByAssignee []AssigneeCount `json:"closed_by_assignee"`
		Assignees        []Assignee      `json:"assignees"`
		Rows             []TaskRow       `json:"rows"`
	}
)
