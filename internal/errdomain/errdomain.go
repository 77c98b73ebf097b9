// Package errdomain carries the dotted error-domain names the original
// source registers once with g_dbus_error_register_error_domain. The job
// package's default classification quotes these names in its failure
// messages; rpcserver does not use this table and reports its own gRPC
// status codes.
package errdomain

// Code is the small fixed set of domain codes the source registers.
type Code int

const (
	Failed Code = iota
	Cancelled
	AlreadyCancelled
)

var dottedNames = map[Code]string{
	Failed:           "org.freedesktop.UDisks.Error.Failed",
	Cancelled:        "org.freedesktop.UDisks.Error.Cancelled",
	AlreadyCancelled: "org.freedesktop.UDisks.Error.AlreadyCancelled",
}

// Name returns the dotted D-Bus-style error name for c, or the empty string
// for an unregistered code.
func (c Code) Name() string {
	return dottedNames[c]
}

// String satisfies fmt.Stringer with the same dotted name, for use in
// classification messages that quote "(<domain>, <code>)".
func (c Code) String() string {
	if n := c.Name(); n != "" {
		return n
	}
	return "org.freedesktop.UDisks.Error.Unknown"
}
