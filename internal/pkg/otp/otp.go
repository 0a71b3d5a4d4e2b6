package otp

import (
	"encoding/base32"
	"errors"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// ErrStepBeforeEpoch indicates the requested drift points before the Unix epoch.
var ErrStepBeforeEpoch = errors.New("otp: time step is before the unix epoch")

// Engine defines the contract for time-stepped code derivation.
//
// Implementations are pure: the same secret, reference time, and drift always
// produce the same step index and code, and no state is kept between calls.
type Engine interface {
	// Step returns the integer time-step index at the given reference time,
	// shifted by drift steps. Drift may be negative to probe past windows.
	Step(at time.Time, drift int) int64
	// Code derives the zero-padded decimal code for the step at the given
	// reference time and drift.
	Code(secret []byte, at time.Time, drift int) (string, error)
}

// TOTP implements Engine using the RFC 6238 algorithm: HMAC-SHA1 over the
// step counter with dynamic truncation, reduced to a fixed-width decimal code.
type TOTP struct {
	step   time.Duration
	digits otp.Digits
}

// NewTOTP constructs a TOTP engine with the given step duration.
//
// A non-positive step falls back to one second, the granularity used for
// SMS-delivered tokens where validity is expressed in seconds.
func NewTOTP(step time.Duration) *TOTP {
	if step <= 0 {
		step = time.Second
	}

	return &TOTP{
		step:   step,
		digits: otp.DigitsSix,
	}
}

// Step returns floor((unix(at) + drift*step) / step).
func (o *TOTP) Step(at time.Time, drift int) int64 {
	sec := int64(o.step / time.Second)

	return (at.Unix() + int64(drift)*sec) / sec
}

// Code derives the 6-digit code for the step at the given time and drift.
//
// The step index feeds the HOTP counter directly, so callers can probe one
// window at a time instead of relying on a built-in skew scan.
func (o *TOTP) Code(secret []byte, at time.Time, drift int) (string, error) {
	counter := o.Step(at, drift)
	if counter < 0 {
		return "", ErrStepBeforeEpoch
	}

	return hotp.GenerateCodeCustom(base32.StdEncoding.EncodeToString(secret), uint64(counter), hotp.ValidateOpts{
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}
