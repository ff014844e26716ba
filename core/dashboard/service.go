package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/techproject/core"
	"github.com/trezcool/techproject/core/project"
	"github.com/trezcool/techproject/core/task"
	"github.com/trezcool/techproject/core/user"
)

const noClientLabel = "No client"

var nowFunc = time.Now // mockable

// Service computes read-only dashboard views from the current task set.
// Views are derived fresh per request and never cached; aggregation performs
// no writes and no locking.
type Service struct {
	db       core.Database
	tasks    task.Repository
	projects project.Repository
	users    user.Repository
}

func NewService(db core.Database, tasks task.Repository, projects project.Repository, users user.Repository) *Service {
	return &Service{db: db, tasks: tasks, projects: projects, users: users}
}

type projectMeta struct {
	name   string
	client string
}

func (svc *Service) projectMetas(ctx context.Context, exec core.DBExecutor, courseID int) (map[int]projectMeta, []int, error) {
	projects, err := svc.projects.QueryCourseProjects(ctx, exec, courseID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying course projects")
	}

	metas := make(map[int]projectMeta, len(projects))
	ids := make([]int, 0, len(projects))
	clientNames := make(map[int]string)
	for _, p := range projects {
		client := noClientLabel
		if p.ClientID > 0 {
			name, ok := clientNames[p.ClientID]
			if !ok {
				if c, err := svc.projects.GetClientByID(ctx, exec, p.ClientID); err == nil {
					name = c.Name
				}
				clientNames[p.ClientID] = name
			}
			if name != "" {
				client = name
			}
		}
		metas[p.ID] = projectMeta{name: p.Name, client: client}
		ids = append(ids, p.ID)
	}
	return metas, ids, nil
}

// statusLabeler resolves project-scoped status labels, caching each project's
// options for the duration of one view. Unresolvable codes fall back to the
// raw status code.
type statusLabeler struct {
	repo  project.Repository
	exec  core.DBExecutor
	cache map[int]map[string]string
}

func newStatusLabeler(repo project.Repository, exec core.DBExecutor) *statusLabeler {
	return &statusLabeler{repo: repo, exec: exec, cache: make(map[int]map[string]string)}
}

func (l *statusLabeler) label(ctx context.Context, projectID int, code string) string {
	labels, ok := l.cache[projectID]
	if !ok {
		labels = make(map[string]string)
		if opts, err := l.repo.QueryStatusOptions(ctx, l.exec, projectID); err == nil {
			for _, opt := range opts {
				labels[opt.Code] = opt.Label
			}
		}
		l.cache[projectID] = labels
	}
	if label, ok := labels[code]; ok {
		return label
	}
	return code
}

// histogram counts tasks per status label, keeping first-seen label order.
type histogram struct {
	counts map[string]int
	order  []string
}

func newHistogram() *histogram {
	return &histogram{counts: make(map[string]int)}
}

func (h *histogram) add(label string) {
	if _, ok := h.counts[label]; !ok {
		h.order = append(h.order, label)
	}
	h.counts[label]++
}

func (h *histogram) statusCounts(total int) []StatusCount {
	if len(h.order) == 0 {
		return nil
	}
	res := make([]StatusCount, 0, len(h.order))
	for _, label := range h.order {
		count := h.counts[label]
		var ratio float64
		if total > 0 {
			ratio = core.ClampPercent(float64(count) * 100 / float64(total))
		}
		res = append(res, StatusCount{Label: label, Count: count, Ratio: ratio})
	}
	return res
}

// Self summarizes the tasks assigned to userID across all course projects.
func (svc *Service) Self(ctx context.Context, courseID, userID int) (SelfView, error) {
	exec := svc.db.Executor()

	metas, ids, err := svc.projectMetas(ctx, exec, courseID)
	if err != nil {
		return SelfView{}, err
	}
	if len(ids) == 0 {
		return SelfView{}, nil
	}

	ts, err := svc.tasks.FilterTasks(ctx, exec, task.QueryFilter{ProjectIDs: ids, AssigneeID: userID})
	if err != nil {
		return SelfView{}, errors.Wrap(err, "querying tasks")
	}

	labels := newStatusLabeler(svc.projects, exec)
	now := nowFunc()

	var view SelfView
	view.TotalTasks = len(ts)
	hist := newHistogram()
	var sumDone int
	for _, t := range ts {
		sumDone += t.Done
		if isOverdue(t, now) {
			view.OverdueCount++
		}
		hist.add(labels.label(ctx, t.ProjectID, t.Status))

		meta, ok := metas[t.ProjectID]
		if !ok {
			continue
		}
		view.Rows = append(view.Rows, TaskRow{
			TaskID:  t.ID,
			Client:  meta.client,
			Project: meta.name,
			Title:   t.Title,
			Status:  labels.label(ctx, t.ProjectID, t.Status),
			Done:    core.ClampPercent(float64(t.Done)),
		})
	}
	if view.TotalTasks > 0 {
		view.AverageDone = core.Round1(float64(sumDone) / float64(view.TotalTasks))
	}
	view.StatusCounts = hist.statusCounts(view.TotalTasks)
	return view, nil
}

// Manager summarizes tasks across all assignees of a course. A positive
// assigneeID narrows the aggregated set to that assignee; the week charts for
// closed tasks per assignee and the filter options always span all assignees.
func (svc *Service) Manager(ctx context.Context, courseID, assigneeID int) (ManagerView, error) {
	exec := svc.db.Executor()

	metas, ids, err := svc.projectMetas(ctx, exec, courseID)
	if err != nil {
		return ManagerView{}, err
	}
	view := ManagerView{AssigneeID: assigneeID}
	if len(ids) == 0 {
		return view, nil
	}

	all, err := svc.tasks.FilterTasks(ctx, exec, task.QueryFilter{ProjectIDs: ids, AnyAssignee: true})
	if err != nil {
		return ManagerView{}, errors.Wrap(err, "querying tasks")
	}

	names, err := svc.assigneeNames(ctx, exec, all)
	if err != nil {
		return ManagerView{}, err
	}

	ts := all
	if assigneeID > 0 {
		ts = make([]task.Task, 0, len(all))
		for _, t := range all {
			if t.Assignee == assigneeID {
				ts = append(ts, t)
			}
		}
	}

	labels := newStatusLabeler(svc.projects, exec)
	now := nowFunc()
	ws := weekStart(now)
	weekEnd := ws.AddDate(0, 0, 7)

	hist := newHistogram()
	clientStats := make(map[string]*ClientStat)
	var clientOrder []string
	workdays := make(map[string]*WorkdayCount)
	var sumDone int

	// pre-sort the aggregated set so rows come out grouped per assignee
	sort.SliceStable(ts, func(i, j int) bool {
		if ni, nj := names[ts[i].Assignee], names[ts[j].Assignee]; ni != nj {
			return ni < nj
		}
		if ts[i].ProjectID != ts[j].ProjectID {
			return ts[i].ProjectID < ts[j].ProjectID
		}
		return ts[i].Ordering < ts[j].Ordering
	})

	for _, t := range ts {
		meta, ok := metas[t.ProjectID]
		if !ok {
			continue
		}
		view.TotalTasks++
		sumDone += t.Done

		hist.add(labels.label(ctx, t.ProjectID, t.Status))

		stat, ok := clientStats[meta.client]
		if !ok {
			stat = &ClientStat{Client: meta.client}
			clientStats[meta.client] = stat
			clientOrder = append(clientOrder, meta.client)
		}
		stat.Tasks++
		stat.AverageDone += float64(t.Done) // summed here, averaged below
		if t.Done < 100 {
			stat.Open++
		}

		// closed-this-week buckets, Mon-Fri only; the last-modified timestamp
		// stands in for a closed date (known approximation)
		if IsClosed(t) && !t.Modified.IsZero() && !t.Modified.Before(ws) && t.Modified.Before(weekEnd) {
			if wd := t.Modified.Weekday(); wd >= time.Monday && wd <= time.Friday {
				day := t.Modified.Format("2006-01-02")
				bucket, ok := workdays[day]
				if !ok {
					bucket = &WorkdayCount{Day: day, Label: t.Modified.Format("Mon 02 Jan")}
					workdays[day] = bucket
				}
				bucket.Count++
			}
		}

		view.Rows = append(view.Rows, TaskRow{
			TaskID:   t.ID,
			Client:   meta.client,
			Project:  meta.name,
			Title:    t.Title,
			Status:   labels.label(ctx, t.ProjectID, t.Status),
			Done:     core.ClampPercent(float64(t.Done)),
			Assignee: names[t.Assignee],
		})
	}

	if view.TotalTasks > 0 {
		view.AverageDone = core.Round1(float64(sumDone) / float64(view.TotalTasks))
	}
	view.StatusCounts = hist.statusCounts(view.TotalTasks)

	for _, client := range clientOrder {
		stat := clientStats[client]
		if stat.Tasks > 0 {
			stat.AverageDone = core.Round1(core.ClampPercent(stat.AverageDone / float64(stat.Tasks)))
		}
		view.Clients = append(view.Clients, *stat)
	}

	dayKeys := make([]string, 0, len(workdays))
	for day := range workdays {
		dayKeys = append(dayKeys, day)
	}
	sort.Strings(dayKeys)
	for _, day := range dayKeys {
		view.ClosedByWorkday = append(view.ClosedByWorkday, *workdays[day])
	}

	view.ClosedByAssignee = closedThisWeek(all, names, ws)
	view.Assignees = assigneeOptions(all, names)
	return view, nil
}

func (svc *Service) assigneeNames(ctx context.Context, exec core.DBExecutor, ts []task.Task) (map[int]string, error) {
	seen := make(map[int]struct{})
	ids := make([]int, 0)
	for _, t := range ts {
		if t.Assignee <= 0 {
			continue
		}
		if _, ok := seen[t.Assignee]; ok {
			continue
		}
		seen[t.Assignee] = struct{}{}
		ids = append(ids, t.Assignee)
	}

	names := make(map[int]string, len(ids))
	for _, id := range ids {
		names[id] = fmt.Sprintf("user #%d", id) // fallback
	}
	if len(ids) == 0 {
		return names, nil
	}
	users, err := svc.users.QueryUsersByID(ctx, exec, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignees")
	}
	for _, usr := range users {
		if usr.Name != "" {
			names[usr.ID] = usr.Name
		}
	}
	return names, nil
}

// closedThisWeek counts tasks closed since Monday per assignee over the full
// (unfiltered) task set.
func closedThisWeek(all []task.Task, names map[int]string, ws time.Time) []AssigneeCount {
	counts := make(map[int]int)
	for _, t := range all {
		if !IsClosed(t) || t.Modified.Before(ws) {
			continue
		}
		counts[t.Assignee]++
	}
	if len(counts) == 0 {
		return nil
	}
	res := make([]AssigneeCount, 0, len(counts))
	for id, count := range counts {
		res = append(res, AssigneeCount{AssigneeID: id, Name: names[id], Count: count})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

func assigneeOptions(all []task.Task, names map[int]string) []Assignee {
	seen := make(map[int]struct{})
	res := make([]Assignee, 0)
	for _, t := range all {
		if t.Assignee <= 0 {
			continue
		}
		if _, ok := seen[t.Assignee]; ok {
			continue
		}
		seen[t.Assignee] = struct{}{}
		res = append(res, Assignee{ID: t.Assignee, Name: names[t.Assignee]})
	}
	if len(res) == 0 {
		return nil
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

func isOverdue(t task.Task, now time.Time) bool {
	return t.End.Valid && t.End.Time.Before(now) && t.Done < 100
}

// weekStart returns Monday 00:00 of now's week, in now's location.
func weekStart(now time.Time) time.Time {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	return day.AddDate(0, 0, -offset)
}
