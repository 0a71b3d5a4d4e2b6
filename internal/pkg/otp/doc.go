// Package otp derives time-based one-time passwords (TOTP).
//
// The engine exposes the underlying time step so callers can scan a window of
// past steps and track which steps have already been accepted.
package otp
