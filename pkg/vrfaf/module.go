package vrfaf

import (
	"context"
	"fmt"
	"time"

	"github.com/newtron-network/xrvrf/pkg/audit"
	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/util"
)

// FactSource returns the current VRF address-family configuration.
type FactSource interface {
	Gather(ctx context.Context) ([]model.VRF, error)
}

// Executor applies generated commands to a device.
type Executor interface {
	Apply(ctx context.Context, commands []string) error
}

// Request is one invocation of the resource module.
type Request struct {
	State         State
	Config        []model.VRF
	RunningConfig string // input for the parsed state
	Device        string
	User          string
	Execute       bool // apply commands; otherwise only report them
}

// Result reports what a run did or would do.
type Result struct {
	State    State       `json:"state" yaml:"state"`
	Changed  bool        `json:"changed" yaml:"changed"`
	Commands []string    `json:"commands" yaml:"commands"`
	Before   []model.VRF `json:"before,omitempty" yaml:"before,omitempty"`
	After    []model.VRF `json:"after,omitempty" yaml:"after,omitempty"`
	Gathered []model.VRF `json:"gathered,omitempty" yaml:"gathered,omitempty"`
	Parsed   []model.VRF `json:"parsed,omitempty" yaml:"parsed,omitempty"`
}

// Module runs the reconciler against a fact source and an executor.
// A nil Facts is treated as a device with no VRF address families.
// After is read once commands are applied; when nil, Facts is read again.
// Set it whenever Facts is not the device Exec writes to.
type Module struct {
	Reconciler *Reconciler
	Facts      FactSource
	After      FactSource
	Exec       Executor
}

// Execute runs req. The parsed and gathered states only report
// configuration; every other state is recorded in the audit log.
func (m *Module) Execute(ctx context.Context, req Request) (*Result, error) {
	if !req.State.Valid() {
		return nil, fmt.Errorf("%w %q", util.ErrInvalidState, req.State)
	}
	res := &Result{State: req.State, Commands: []string{}}

	switch req.State {
	case Parsed:
		if req.RunningConfig == "" {
			return nil, util.NewValidationError("running_config is required with state parsed")
		}
		parsed, err := ParseRunningConfig(req.RunningConfig)
		if err != nil {
			return nil, err
		}
		res.Parsed = parsed
		return res, nil
	case Gathered:
		gathered, err := m.gather(ctx)
		if err != nil {
			return nil, err
		}
		res.Gathered = gathered
		return res, nil
	}

	start := time.Now()
	event := audit.NewEvent(req.User, req.Device, string(req.State)).WithExecuteMode(req.Execute)
	err := m.reconcile(ctx, req, res)
	event.WithCommands(res.Commands).WithDuration(time.Since(start))
	if err != nil {
		event.WithError(err)
	} else {
		event.WithSuccess()
	}
	if lerr := audit.Log(event); lerr != nil {
		util.Warnf("audit: %v", lerr)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (m *Module) reconcile(ctx context.Context, req Request, res *Result) error {
	log := util.WithDevice(req.Device).WithField("state", req.State)

	if req.State != Deleted || len(req.Config) > 0 {
		if err := model.Validate(req.Config); err != nil {
			return err
		}
	}

	have, err := m.gather(ctx)
	if err != nil {
		return err
	}
	res.Before = have

	r := m.Reconciler
	if r == nil {
		r = NewReconciler()
	}
	commands, err := r.Generate(req.Config, have, req.State)
	if err != nil {
		return err
	}
	if len(commands) > 0 {
		res.Commands = commands
	}
	res.Changed = len(commands) > 0
	log.Infof("%d commands generated", len(commands))

	if !req.Execute || !res.Changed {
		return nil
	}
	if m.Exec == nil {
		return fmt.Errorf("applying commands: %w", util.ErrNotConnected)
	}
	if err := m.Exec.Apply(ctx, commands); err != nil {
		return fmt.Errorf("applying commands: %w", err)
	}
	log.Info("commands applied")

	src := m.After
	if src == nil {
		src = m.Facts
	}
	after, err := gatherFrom(ctx, src)
	if err != nil {
		return err
	}
	res.After = after
	return nil
}

func (m *Module) gather(ctx context.Context) ([]model.VRF, error) {
	return gatherFrom(ctx, m.Facts)
}

func gatherFrom(ctx context.Context, src FactSource) ([]model.VRF, error) {
	if src == nil {
		return nil, nil
	}
	vrfs, err := src.Gather(ctx)
	if err != nil {
		return nil, fmt.Errorf("gathering facts: %w", err)
	}
	return vrfs, nil
}
