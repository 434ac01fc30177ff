package pipeline

import (
	"log/slog"
	"time"

	"github.com/abriciof/rfcnpj-parquet/internal/catalog"
)

type Status string

const (
	StatusWritten Status = "written"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// State tracks a dataset type through one run:
//
//	pending -> classifying -> loading -> {empty | assembled} -> {written | write_failed}
//
// classifying and loading may also end in errored.
type State string

const (
	StatePending     State = "pending"
	StateClassifying State = "classifying"
	StateLoading     State = "loading"
	StateEmpty       State = "empty"
	StateAssembled   State = "assembled"
	StateWritten     State = "written"
	StateWriteFailed State = "write_failed"
	StateErrored     State = "errored"
)

type FileFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type Outcome struct {
	Type   catalog.DatasetType
	Status Status
	State  State
	// Rows is set for StatusWritten.
	Rows    int64
	Columns int
	Named   bool
	Path    string
	Files   int
	Err     error

	FailedFiles   []FileFailure
	Warnings      []string
	Published     []string
	PublishErrors []string
	Duration      time.Duration
}

func (o *Outcome) advance(s State) {
	slog.Debug("dataset state", "dataset", o.Type, "from", o.State, "to", s)
	o.State = s
}

func (o *Outcome) fail(s State, err error) {
	o.advance(s)
	o.Status = StatusError
	o.Err = err
}

// Message is the error text, or "" when the type did not fail.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Outcomes maps dataset types to their outcome and remembers catalog order.
type Outcomes struct {
	ByType map[catalog.DatasetType]Outcome
	Order  []catalog.DatasetType
}

func newOutcomes() *Outcomes {
	return &Outcomes{ByType: map[catalog.DatasetType]Outcome{}}
}

func (oc *Outcomes) add(o Outcome) {
	if _, seen := oc.ByType[o.Type]; !seen {
		oc.Order = append(oc.Order, o.Type)
	}
	oc.ByType[o.Type] = o
}

// List returns outcomes in catalog order.
func (oc *Outcomes) List() []Outcome {
	out := make([]Outcome, 0, len(oc.Order))
	for _, t := range oc.Order {
		out = append(out, oc.ByType[t])
	}
	return out
}

func (oc *Outcomes) Get(t catalog.DatasetType) (Outcome, bool) {
	o, ok := oc.ByType[t]
	return o, ok
}

// Count returns how many outcomes have the given status.
func (oc *Outcomes) Count(s Status) int {
	n := 0
	for _, o := range oc.ByType {
		if o.Status == s {
			n++
		}
	}
	return n
}

// TotalRows sums rows of written datasets.
func (oc *Outcomes) TotalRows() int64 {
	var n int64
	for _, o := range oc.ByType {
		n += o.Rows
	}
	return n
}
