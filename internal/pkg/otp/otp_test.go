package otp

import (
	"encoding/hex"
	"regexp"
	"testing"
	"time"
)

var reSixDigits = regexp.MustCompile(`^\d{6}$`)

func testSecret(t *testing.T) []byte {
	t.Helper()

	secret, err := hex.DecodeString("01234567890123456789")
	if err != nil {
		t.Fatalf("failed to decode test secret: %v", err)
	}

	return secret
}

func TestTOTPStep(t *testing.T) {
	tests := []struct {
		name  string
		step  time.Duration
		at    int64
		drift int
		want  int64
	}{
		{name: "OneSecondNoDrift", step: time.Second, at: 1420099200, drift: 0, want: 1420099200},
		{name: "OneSecondNegativeDrift", step: time.Second, at: 1420099200, drift: -30, want: 1420099170},
		{name: "OneSecondPositiveDrift", step: time.Second, at: 1420099200, drift: 5, want: 1420099205},
		{name: "ThirtySecondWindow", step: 30 * time.Second, at: 59, drift: 0, want: 1},
		{name: "ThirtySecondWindowDriftBack", step: 30 * time.Second, at: 90, drift: -1, want: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewTOTP(tc.step)

			got := engine.Step(time.Unix(tc.at, 0), tc.drift)

			if got != tc.want {
				t.Fatalf("Step(%d, %d) = %d, want %d", tc.at, tc.drift, got, tc.want)
			}
		})
	}
}

func TestTOTPCode(t *testing.T) {
	engine := NewTOTP(time.Second)
	secret := testSecret(t)
	at := time.Unix(1420099200, 0)

	t.Run("FixedWidthDecimal", func(t *testing.T) {
		code, err := engine.Code(secret, at, 0)
		if err != nil {
			t.Fatalf("Code returned error: %v", err)
		}

		if !reSixDigits.MatchString(code) {
			t.Fatalf("code %q is not a zero-padded 6-digit string", code)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first, err := engine.Code(secret, at, 0)
		if err != nil {
			t.Fatalf("Code returned error: %v", err)
		}

		second, err := engine.Code(secret, at, 0)
		if err != nil {
			t.Fatalf("Code returned error: %v", err)
		}

		if first != second {
			t.Fatalf("same inputs produced different codes: %q vs %q", first, second)
		}
	})

	t.Run("DriftShiftsReferenceTime", func(t *testing.T) {
		// Probing the past with drift must match generating at that instant.
		drifted, err := engine.Code(secret, at, -17)
		if err != nil {
			t.Fatalf("Code returned error: %v", err)
		}

		direct, err := engine.Code(secret, at.Add(-17*time.Second), 0)
		if err != nil {
			t.Fatalf("Code returned error: %v", err)
		}

		if drifted != direct {
			t.Fatalf("drift -17 code %q != direct code %q", drifted, direct)
		}
	})

	t.Run("CodesChangeAcrossSteps", func(t *testing.T) {
		// Consecutive steps should not all collide; check a small run.
		same := true
		base, err := engine.Code(secret, at, 0)
		if err != nil {
			t.Fatalf("Code returned error: %v", err)
		}

		for drift := 1; drift <= 5; drift++ {
			code, err := engine.Code(secret, at, drift)
			if err != nil {
				t.Fatalf("Code returned error: %v", err)
			}
			if code != base {
				same = false
				break
			}
		}

		if same {
			t.Fatalf("codes identical across 6 consecutive steps")
		}
	})

	t.Run("BeforeEpoch", func(t *testing.T) {
		if _, err := engine.Code(secret, time.Unix(0, 0), -1); err == nil {
			t.Fatalf("expected error for step before the unix epoch")
		}
	})
}

func TestNewTOTPDefaultStep(t *testing.T) {
	engine := NewTOTP(0)

	if got := engine.Step(time.Unix(100, 0), 0); got != 100 {
		t.Fatalf("default step is not one second: Step(100, 0) = %d", got)
	}
}
