package task

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/techproject/core"
)

// Task is a node in a per-project forest. Siblings sharing the same
// (ProjectID, GroupID, ParentID) bucket carry strictly increasing Ordering
// values; Start/End are the optional schedule window used for overdue
// detection (invalid = not set).
type Task struct {
	ID             int       `db:"id" json:"id"`
	ProjectID      int       `db:"project_id" json:"project_id"`
	GroupID        int       `db:"group_id" json:"group_id"`
	ParentID       int       `db:"parent_id" json:"parent_id"`
	Ordering       int       `db:"ordering" json:"ordering"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	Status         string    `db:"status" json:"status"` // free-form code, may be empty
	Done           int       `db:"done" json:"done"`     // 0 - 100
	Owner          int       `db:"owner_id" json:"owner_id"`
	Assignee       int       `db:"assignee_id" json:"assignee_id"`
	CreatedBy      int       `db:"created_by" json:"created_by"`
	LastModifiedBy int       `db:"last_modified_by" json:"last_modified_by"`
	Created        time.Time `db:"created_at" json:"created_at"`   // UTC
	Modified       time.Time `db:"modified_at" json:"modified_at"` // UTC
	Start          null.Time `db:"start_at" json:"start_at"`
	End            null.Time `db:"end_at" json:"end_at"`
	CostRate       int       `db:"cost_rate" json:"cost_rate"`
	Quoted         int       `db:"quoted" json:"quoted"`
	Spent          int       `db:"spent" json:"spent"`
	Risk           int       `db:"risk" json:"risk"`
}

// Dependency records that Slave depends on / is parented under Master.
// At most one edge exists per exact (ProjectID, Slave, Master) triple.
type Dependency struct {
	ID        int `db:"id" json:"id"`
	ProjectID int `db:"project_id" json:"project_id"`
	GroupID   int `db:"group_id" json:"group_id"`
	Master    int `db:"master_id" json:"master_id"`
	Slave     int `db:"slave_id" json:"slave_id"`
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	ProjectID   int    `json:"project_id" validate:"required"`
	GroupID     int    `json:"group_id"`
	ParentID    int    `json:"parent_id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Owner       int    `json:"owner_id"`
	Assignee    int    `json:"assignee_id"`
	CreatedBy   int    `json:"created_by"`

	// host module context, carried on the creation event
	ContextID int `json:"-"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

// QueryFilter applies AND operation on available fields.
type QueryFilter struct {
	ProjectIDs    []int
	AssigneeID    int  // exact match when > 0
	AnyAssignee   bool // restricts to tasks with an assignee set
	ModifiedSince time.Time
}
