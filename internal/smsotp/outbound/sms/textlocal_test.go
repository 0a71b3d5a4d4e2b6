package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/textotp/internal/pkg/instrument"
)

func TestTextlocalSend(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		var gotForm map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("failed to parse form: %v", err)
			}
			gotForm = map[string]string{
				"sender":  r.PostFormValue("sender"),
				"message": r.PostFormValue("message"),
				"numbers": r.PostFormValue("numbers"),
				"apiKey":  r.PostFormValue("apiKey"),
			}
			w.Write([]byte(`{"status":"success"}`))
		}))
		defer srv.Close()

		client := NewTextlocal(srv.URL, srv.Client(), instrument.NewNoop())

		// Act
		err := client.Send(context.Background(), "ACME", "Your code is 012345", "+15555550100", "secret-key")

		// Assert
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		want := map[string]string{
			"sender":  "ACME",
			"message": "Your code is 012345",
			"numbers": "+15555550100",
			"apiKey":  "secret-key",
		}
		for k, v := range want {
			if gotForm[k] != v {
				t.Fatalf("form field %q = %q, want %q", k, gotForm[k], v)
			}
		}
	})

	t.Run("HTTPFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"status":"failure"}`, http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewTextlocal(srv.URL, srv.Client(), instrument.NewNoop())

		err := client.Send(context.Background(), "ACME", "msg", "+15555550100", "key")

		var dErr *DeliveryError
		if !errors.As(err, &dErr) {
			t.Fatalf("Send() error = %v, want *DeliveryError", err)
		}
		if dErr.StatusCode != http.StatusBadGateway {
			t.Fatalf("DeliveryError.StatusCode = %d, want %d", dErr.StatusCode, http.StatusBadGateway)
		}
	})

	t.Run("ProviderRejection", func(t *testing.T) {
		// A 2xx response alone is not success; the body status must agree.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":"failure","errors":[{"code":3,"message":"Invalid login details"}]}`))
		}))
		defer srv.Close()

		client := NewTextlocal(srv.URL, srv.Client(), instrument.NewNoop())

		err := client.Send(context.Background(), "ACME", "msg", "+15555550100", "key")

		var dErr *DeliveryError
		if !errors.As(err, &dErr) {
			t.Fatalf("Send() error = %v, want *DeliveryError", err)
		}
		if dErr.Status != "failure" {
			t.Fatalf("DeliveryError.Status = %q, want %q", dErr.Status, "failure")
		}
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client := NewTextlocal(srv.URL, srv.Client(), instrument.NewNoop())

		err := client.Send(context.Background(), "ACME", "msg", "+15555550100", "key")

		var dErr *DeliveryError
		if !errors.As(err, &dErr) {
			t.Fatalf("Send() error = %v, want *DeliveryError", err)
		}
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		client := NewTextlocal(srv.URL, nil, instrument.NewNoop())

		err := client.Send(context.Background(), "ACME", "msg", "+15555550100", "key")

		if err == nil {
			t.Fatal("Send() error = nil, want transport error")
		}
		var dErr *DeliveryError
		if errors.As(err, &dErr) {
			t.Fatalf("Send() error = %v, want plain transport error", err)
		}
	})
}
