package entity

import (
	"reflect"
	"testing"
)

func TestRenderToken(t *testing.T) {
	tests := []struct {
		name     string
		template string
		code     string
		want     string
	}{
		{
			name:     "BareToken",
			template: TokenPlaceholder,
			code:     "012345",
			want:     "012345",
		},
		{
			name:     "Wrapped",
			template: "Your code is {token}.",
			code:     "654321",
			want:     "Your code is 654321.",
		},
		{
			name:     "NoPlaceholder",
			template: "Sent by SMS",
			code:     "012345",
			want:     "Sent by SMS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderToken(tt.template, tt.code); got != tt.want {
				t.Fatalf("RenderToken(%q, %q) = %q, want %q", tt.template, tt.code, got, tt.want)
			}
		})
	}
}

func TestMissingDeliverySettings(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		s := &Settings{APIKey: "key", URL: "https://api.example.com/send", Sender: "ACME"}

		if missing := s.MissingDeliverySettings(); len(missing) != 0 {
			t.Fatalf("MissingDeliverySettings() = %v, want empty", missing)
		}
	})

	t.Run("AllAbsent", func(t *testing.T) {
		s := &Settings{}

		got := s.MissingDeliverySettings()
		want := []string{"api_key", "url", "sender"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("MissingDeliverySettings() = %v, want %v", got, want)
		}
	})

	t.Run("BlankCountsAsAbsent", func(t *testing.T) {
		s := &Settings{APIKey: "  ", URL: "https://api.example.com/send", Sender: "ACME"}

		got := s.MissingDeliverySettings()
		want := []string{"api_key"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("MissingDeliverySettings() = %v, want %v", got, want)
		}
	})
}
