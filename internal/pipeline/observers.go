package pipeline

import (
	"strconv"
	"sync"

	"vexrank/pkg/ui"
)

// dashboardObserver forwards harvester branch events to the live dashboard.
type dashboardObserver struct {
	dash ui.Dashboard
}

func (o *dashboardObserver) BranchStarted(id int, label string) {
	o.dash.StartBranch(strconv.Itoa(id), label)
}

func (o *dashboardObserver) BranchCompleted(id int, matches, skipped int) {
	o.dash.CompleteBranch(strconv.Itoa(id), matches, skipped)
}

func (o *dashboardObserver) BranchFailed(id int, err error) {
	o.dash.FailBranch(strconv.Itoa(id), err)
}

// displayObserver forwards branch events to the single-line display. It
// remembers labels because completion callbacks carry only the branch id.
type displayObserver struct {
	display *ui.ProgressDisplay

	mu     sync.Mutex
	labels map[int]string
}

func newDisplayObserver(display *ui.ProgressDisplay) *displayObserver {
	return &displayObserver{
		display: display,
		labels:  make(map[int]string),
	}
}

func (o *displayObserver) BranchStarted(id int, label string) {
	o.mu.Lock()
	o.labels[id] = label
	o.mu.Unlock()

	o.display.StartBranch(label)
}

func (o *displayObserver) BranchCompleted(id int, matches, skipped int) {
	o.display.CompleteBranch(o.takeLabel(id), matches, skipped)
}

func (o *displayObserver) BranchFailed(id int, err error) {
	o.display.FailBranch(o.takeLabel(id), err)
}

func (o *displayObserver) takeLabel(id int) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	label, ok := o.labels[id]
	if !ok {
		return strconv.Itoa(id)
	}
	delete(o.labels, id)
	return label
}
