package vrfaf

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/newtron-network/xrvrf/pkg/audit"
	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/util"
)

// fakeDevice is both fact source and executor; applied commands replace its
// configuration with the next snapshot.
type fakeDevice struct {
	config  []model.VRF
	next    []model.VRF
	applied [][]string
	gathers int
	err     error
}

func (d *fakeDevice) Gather(ctx context.Context) ([]model.VRF, error) {
	d.gathers++
	if d.err != nil {
		return nil, d.err
	}
	return d.config, nil
}

func (d *fakeDevice) Apply(ctx context.Context, commands []string) error {
	d.applied = append(d.applied, commands)
	d.config = d.next
	return nil
}

type recordingAudit struct {
	events []*audit.Event
}

func (r *recordingAudit) Log(e *audit.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) Query(audit.Filter) ([]*audit.Event, error) { return r.events, nil }
func (r *recordingAudit) Close() error { return nil }

func captureAudit(t *testing.T) *recordingAudit {
	t.Helper()
	rec := &recordingAudit{}
	audit.SetDefaultLogger(rec)
	t.Cleanup(func() { audit.SetDefaultLogger(nil) })
	return rec
}

func TestModule_CheckMode(t *testing.T) {
	rec := captureAudit(t)
	dev := &fakeDevice{config: []model.VRF{vrf("B", af("ipv4", "unicast"))}}
	m := &Module{Facts: dev, Exec: dev}

	res, err := m.Execute(context.Background(), Request{
		State:  Overridden,
		Config: []model.VRF{vrf("A", withMax(af("ipv4", "unicast"), 100))},
		Device: "xr1",
		User:   "alice",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{
		"vrf B",
		"no address-family ipv4 unicast",
		"vrf A address-family ipv4 unicast",
		"maximum prefix 100",
	}
	if !reflect.DeepEqual(res.Commands, want) {
		t.Errorf("Commands = %q, want %q", res.Commands, want)
	}
	if !res.Changed {
		t.Error("Changed = false")
	}
	if len(dev.applied) != 0 {
		t.Error("commands applied without Execute")
	}
	if !reflect.DeepEqual(res.Before, dev.config) || res.After != nil {
		t.Errorf("Before = %+v, After = %+v", res.Before, res.After)
	}

	if len(rec.events) != 1 {
		t.Fatalf("audit events = %d, want 1", len(rec.events))
	}
	ev := rec.events[0]
	if ev.Device != "xr1" || ev.User != "alice" || ev.State != "overridden" {
		t.Errorf("event = %+v", ev)
	}
	if !ev.Success || !ev.DryRun || ev.ExecuteMode || len(ev.Commands) != 4 {
		t.Errorf("event = %+v", ev)
	}
}

func TestModule_ExecuteApplies(t *testing.T) {
	rec := captureAudit(t)
	target := []model.VRF{vrf("A", withMax(af("ipv4", "unicast"), 100))}
	dev := &fakeDevice{next: target}
	m := &Module{Reconciler: NewReconciler(), Facts: dev, Exec: dev}

	res, err := m.Execute(context.Background(), Request{State: Merged, Config: target, Execute: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(dev.applied) != 1 || !reflect.DeepEqual(dev.applied[0], res.Commands) {
		t.Errorf("applied = %q, want %q", dev.applied, res.Commands)
	}
	if !reflect.DeepEqual(res.After, target) {
		t.Errorf("After = %+v, want %+v", res.After, target)
	}
	if dev.gathers != 2 {
		t.Errorf("gathers = %d, want 2", dev.gathers)
	}
	if len(rec.events) != 1 || !rec.events[0].ExecuteMode {
		t.Errorf("audit events = %+v", rec.events)
	}

	// Second run on the converged device changes nothing.
	res, err = m.Execute(context.Background(), Request{State: Merged, Config: target, Execute: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Changed || len(res.Commands) != 0 || len(dev.applied) != 1 {
		t.Errorf("second run changed = %v, commands = %q", res.Changed, res.Commands)
	}
}

func TestModule_AfterReadsRouter(t *testing.T) {
	captureAudit(t)
	target := []model.VRF{vrf("A", withMax(af("ipv4", "unicast"), 100))}
	file := &fakeDevice{}
	router := &fakeDevice{next: target}
	m := &Module{Reconciler: NewReconciler(), Facts: file, After: router, Exec: router}

	res, err := m.Execute(context.Background(), Request{State: Merged, Config: target, Execute: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(router.applied) != 1 {
		t.Fatalf("applied = %q, want one commit", router.applied)
	}
	if !reflect.DeepEqual(res.After, target) {
		t.Errorf("After = %+v, want the router's configuration %+v", res.After, target)
	}
	if file.gathers != 1 {
		t.Errorf("fact file gathers = %d, want 1", file.gathers)
	}
	if router.gathers != 1 {
		t.Errorf("router gathers = %d, want 1", router.gathers)
	}
}

func TestModule_ExecuteWithoutExecutor(t *testing.T) {
	rec := captureAudit(t)
	m := &Module{}

	_, err := m.Execute(context.Background(), Request{
		State:   Merged,
		Config:  []model.VRF{vrf("A", withMax(af("ipv4", "unicast"), 1))},
		Execute: true,
	})
	if !errors.Is(err, util.ErrNotConnected) {
		t.Errorf("Execute() error = %v, want ErrNotConnected", err)
	}
	if len(rec.events) != 1 || rec.events[0].Success || rec.events[0].Error == "" {
		t.Errorf("audit events = %+v, want one failure", rec.events)
	}
}

func TestModule_Validation(t *testing.T) {
	captureAudit(t)
	m := &Module{}

	_, err := m.Execute(context.Background(), Request{
		State:  Replaced,
		Config: []model.VRF{vrf("A", af("ipv5", ""))},
	})
	if !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("Execute() error = %v, want ErrValidationFailed", err)
	}

	res, err := m.Execute(context.Background(), Request{State: Deleted})
	if err != nil {
		t.Fatalf("Execute(deleted, no config) error = %v", err)
	}
	if res.Changed {
		t.Error("deleted on empty device reported a change")
	}
}

func TestModule_Parsed(t *testing.T) {
	rec := captureAudit(t)
	m := &Module{Facts: &fakeDevice{err: errors.New("must not be called")}}

	res, err := m.Execute(context.Background(), Request{
		State:         Parsed,
		RunningConfig: "vrf A\n address-family ipv6 unicast\n  maximum prefix 4\n",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := []model.VRF{vrf("A", withMax(af("ipv6", "unicast"), 4))}
	if !reflect.DeepEqual(res.Parsed, want) {
		t.Errorf("Parsed = %+v, want %+v", res.Parsed, want)
	}
	if res.Changed || len(res.Commands) != 0 {
		t.Errorf("parsed reported changes: %+v", res)
	}
	if len(rec.events) != 0 {
		t.Error("parsed state should not be audited")
	}

	if _, err := m.Execute(context.Background(), Request{State: Parsed}); !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("Execute(parsed, no text) error = %v", err)
	}
}

func TestModule_Gathered(t *testing.T) {
	captureAudit(t)
	config := []model.VRF{vrf("A", af("ipv4", "unicast"))}
	m := &Module{Facts: &fakeDevice{config: config}}

	res, err := m.Execute(context.Background(), Request{State: Gathered})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !reflect.DeepEqual(res.Gathered, config) {
		t.Errorf("Gathered = %+v, want %+v", res.Gathered, config)
	}

	m.Facts = &fakeDevice{err: errors.New("connection refused")}
	_, err = m.Execute(context.Background(), Request{State: Gathered})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestModule_InvalidState(t *testing.T) {
	_, err := (&Module{}).Execute(context.Background(), Request{State: "rendered"})
	if !errors.Is(err, util.ErrInvalidState) {
		t.Errorf("Execute() error = %v, want ErrInvalidState", err)
	}
}
