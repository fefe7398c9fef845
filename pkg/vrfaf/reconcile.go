// Package vrfaf reconciles IOS-XR VRF address-family configuration: it
// compares a desired set of VRF records against the current one and
// produces the CLI commands that move the device from one to the other.
package vrfaf

import (
	"fmt"

	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/util"
)

// Reconciler turns want/have pairs into an ordered command list.
// It holds no per-call state and is safe for concurrent use.
type Reconciler struct {
	cmp     Comparator
	render  Renderer
	parsers []string
}

// NewReconciler returns a Reconciler using field comparison and the
// IOS-XR command templates.
func NewReconciler() *Reconciler {
	return NewReconcilerWith(FieldComparator{}, NewTemplateRenderer())
}

// NewReconcilerWith returns a Reconciler with the given capabilities.
func NewReconcilerWith(cmp Comparator, render Renderer) *Reconciler {
	return &Reconciler{cmp: cmp, render: render, parsers: Parsers()}
}

// Generate returns the commands that move have to want under state.
// Read-only states return no commands.
func (r *Reconciler) Generate(want, have []model.VRF, state State) ([]string, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("%w %q", util.ErrInvalidState, state)
	}
	if state.ReadOnly() {
		return nil, nil
	}

	wantd, err := Normalize(want)
	if err != nil {
		return nil, fmt.Errorf("normalizing want: %w", err)
	}
	haved, err := Normalize(have)
	if err != nil {
		return nil, fmt.Errorf("normalizing have: %w", err)
	}

	switch state {
	case Merged:
		wantd = Merge(haved, wantd)
	case Deleted:
		if wantd.Len() > 0 {
			haved = haved.Restrict(wantd.Names())
		}
		wantd = newIndex()
	}

	run := &commandRun{Reconciler: r, state: state}

	if state.removesUnmatched() {
		for _, name := range haved.names {
			if wantd.Has(name) {
				continue
			}
			if err := run.compareVRF(name, nil, haved.lookup(name)); err != nil {
				return nil, err
			}
		}
	}

	for _, name := range wantd.names {
		if err := run.compareVRF(name, wantd.lookup(name), haved.lookup(name)); err != nil {
			return nil, err
		}
	}

	util.WithState(string(state)).Debugf("generated %d commands for %d vrfs", len(run.commands), wantd.Len())
	return run.commands, nil
}

// commandRun accumulates the commands of one Generate call.
type commandRun struct {
	*Reconciler
	state    State
	commands []string
}

// compareVRF emits the commands for one VRF. Either side may be nil.
func (c *commandRun) compareVRF(name string, want, have *vrfEntry) error {
	matched := make(map[model.AFKey]bool)
	empty := &model.AddressFamily{}

	if want != nil {
		for _, key := range want.keys {
			matched[key] = true
			haf := empty
			if have != nil {
				if h, ok := have.families[key]; ok {
					haf = h
				}
			}

			begin := len(c.commands)
			for _, ch := range c.cmp.Compare(c.parsers, want.families[key], haf) {
				data := RenderData{Name: name, AFI: key.AFI, SAFI: key.SAFI, Value: ch.Value}
				if err := c.emit(ch.Parser, data, ch.Negate); err != nil {
					return err
				}
			}
			if len(c.commands) != begin {
				data := RenderData{Name: name, AFI: key.AFI, SAFI: key.SAFI}
				if err := c.prepend(begin, ParserAddressFamilies, data); err != nil {
					return err
				}
			}
		}
	}

	if !c.state.removesUnmatched() || have == nil {
		return nil
	}

	begin := len(c.commands)
	for _, key := range have.keys {
		if matched[key] {
			continue
		}
		data := RenderData{Name: name, AFI: key.AFI, SAFI: key.SAFI}
		if err := c.emit(ParserAddressFamily, data, true); err != nil {
			return err
		}
	}
	if len(c.commands) != begin {
		util.WithVRF(name).Debugf("removing %d address families", len(c.commands)-begin)
		return c.prepend(begin, ParserName, RenderData{Name: name})
	}
	return nil
}

// emit renders a command and appends it.
func (c *commandRun) emit(parser string, data RenderData, negate bool) error {
	cmd, err := c.render.Render(parser, data, negate)
	if err != nil {
		return fmt.Errorf("vrf %s: %w", data.Name, err)
	}
	c.commands = append(c.commands, cmd)
	return nil
}

// prepend renders a context command and inserts it at pos, ahead of the
// commands it scopes.
func (c *commandRun) prepend(pos int, parser string, data RenderData) error {
	cmd, err := c.render.Render(parser, data, false)
	if err != nil {
		return fmt.Errorf("vrf %s: %w", data.Name, err)
	}
	c.commands = append(c.commands, "")
	copy(c.commands[pos+1:], c.commands[pos:])
	c.commands[pos] = cmd
	return nil
}
