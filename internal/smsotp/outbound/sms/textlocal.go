package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shandysiswandi/textotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

// statusSuccess is the provider's marker for an accepted message. Anything
// else in the response, including a missing status field, is a failure.
const statusSuccess = "success"

const maxResponseBytes = 64 * 1024

// DeliveryError is a failed provider call. It keeps the raw response around
// so operators can diagnose provider-side rejections.
type DeliveryError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("sms: provider returned status %q: %s", e.Status, e.Body)
	}

	return fmt.Sprintf("sms: provider call failed with HTTP %d: %s", e.StatusCode, e.Body)
}

// Textlocal sends token messages through a Textlocal-style HTTP API: a form
// POST answered with a JSON body carrying a status field.
type Textlocal struct {
	endpoint string
	client   *http.Client
	ins      instrument.Instrumentation
}

func NewTextlocal(endpoint string, client *http.Client, ins instrument.Instrumentation) *Textlocal {
	if client == nil {
		client = http.DefaultClient
	}

	return &Textlocal{
		endpoint: endpoint,
		client:   client,
		ins:      ins,
	}
}

// Send posts one message to one number. Success requires both a 2xx response
// and a body whose status equals the provider success marker.
func (t *Textlocal) Send(ctx context.Context, sender, message, number, apiKey string) (err error) {
	ctx, span := t.ins.Tracer("smsotp.outbound.sms").Start(ctx, "Send")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	form := url.Values{
		"sender":  {sender},
		"message": {message},
		"numbers": {number},
		"apiKey":  {apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: failed to build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: provider call failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("sms: failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Status != statusSuccess {
		return &DeliveryError{StatusCode: resp.StatusCode, Status: parsed.Status, Body: string(body)}
	}

	return nil
}
