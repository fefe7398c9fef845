// Package auth provides permission-based access control for runs that
// change device configuration.
package auth

// Permission defines an action that can be controlled
type Permission string

// Standard permissions
const (
	PermVRFMerge    Permission = "vrf.merge"
	PermVRFReplace  Permission = "vrf.replace"
	PermVRFOverride Permission = "vrf.override"
	PermVRFDelete   Permission = "vrf.delete"
	PermVRFView     Permission = "vrf.view"

	PermFactsSave Permission = "facts.save"

	PermAuditView Permission = "audit.view"

	PermAll Permission = "all" // Superuser - allows everything
)

// statePermissions maps reconciliation states to the permission needed to
// execute them.
var statePermissions = map[string]Permission{
	"merged":     PermVRFMerge,
	"replaced":   PermVRFReplace,
	"overridden": PermVRFOverride,
	"deleted":    PermVRFDelete,
	"parsed":     PermVRFView,
	"gathered":   PermVRFView,
}

// ForState returns the permission guarding a reconciliation state.
func ForState(state string) (Permission, bool) {
	p, ok := statePermissions[state]
	return p, ok
}

// Context provides context for permission checks
type Context struct {
	Device string
	VRF    string
}

// NewContext creates a new permission context
func NewContext() *Context {
	return &Context{}
}

// WithDevice sets the device context
func (c *Context) WithDevice(device string) *Context {
	c.Device = device
	return c
}

// WithVRF sets the VRF context
func (c *Context) WithVRF(vrf string) *Context {
	c.VRF = vrf
	return c
}

// IsReadOnly returns true if the permission is read-only
func (p Permission) IsReadOnly() bool {
	switch p {
	case PermVRFView, PermAuditView:
		return true
	}
	return false
}
