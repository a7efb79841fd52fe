// Package push tracks push notification opens and device token
// registrations by intercepting the host's notification callbacks.
//
// Hosts register their callbacks in a CallbackTable and expose their
// notification delegate slot through a Host. The Manager picks which
// callback to intercept, keeps the choice current as the delegate slot is
// reassigned, and forwards decoded events to a tracking.Tracker.
package push
