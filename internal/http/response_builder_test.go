package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeTriggers(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	raw := rec.Header().Get("HX-Trigger")
	if raw == "" {
		t.Fatal("HX-Trigger header not set")
	}
	var events map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v (%s)", err, raw)
	}
	return events
}

func TestHTMXResponse_TransferCompleted(t *testing.T) {
	rec := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerTransferCompleted("acc_1", "acc_2").
		TriggerFormReset().
		TriggerSuccessNotification("Transfer saved").
		BodyHTML("").
		Write(rec)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	events := decodeTriggers(t, rec)
	for _, name := range []string{EventTransferCompleted, EventFormReset, EventNotification} {
		if _, ok := events[name]; !ok {
			t.Errorf("missing event %q", name)
		}
	}

	var accounts transferAccounts
	if err := json.Unmarshal(events[EventTransferCompleted], &accounts); err != nil {
		t.Fatal(err)
	}
	if accounts.SourceAccountID != "acc_1" || accounts.TargetAccountID != "acc_2" {
		t.Errorf("accounts = %+v", accounts)
	}

	var n notification
	if err := json.Unmarshal(events[EventNotification], &n); err != nil {
		t.Fatal(err)
	}
	if n.Type != NotificationSuccess || n.Message != "Transfer saved" || n.Duration != 3000 {
		t.Errorf("notification = %+v", n)
	}
}

func TestHTMXResponse_EventWithoutDetailIsObject(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().TriggerTransferClosed().Write(rec)

	events := decodeTriggers(t, rec)
	if got := string(events[EventTransferClosed]); got != "{}" {
		t.Errorf("transfer:closed detail = %s, want {}", got)
	}
}

func TestHTMXResponse_NoEventsNoHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().Status(http.StatusNoContent).Write(rec)

	if rec.Header().Get("HX-Trigger") != "" {
		t.Error("HX-Trigger set without events")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHTMXResponse_NilWriteIsNoop(t *testing.T) {
	rec := httptest.NewRecorder()
	var b *HTMXResponseBuilder
	b.Write(rec)

	if rec.Body.Len() != 0 || len(rec.Header()) != 0 {
		t.Error("nil builder wrote a response")
	}
}

func TestHTMXResponse_Retarget(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().Retarget("#transfer-errors", "innerHTML").Write(rec)

	if got := rec.Header().Get("HX-Retarget"); got != "#transfer-errors" {
		t.Errorf("HX-Retarget = %q", got)
	}
	if got := rec.Header().Get("HX-Reswap"); got != "innerHTML" {
		t.Errorf("HX-Reswap = %q", got)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		status  int
	}{
		{"bad request", BadRequestError("Invalid request format"), http.StatusBadRequest},
		{"internal", InternalServerError("Error rendering page"), http.StatusInternalServerError},
		{"unprocessable", ErrorResponse(http.StatusUnprocessableEntity, "Insufficient funds"), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.builder.Write(rec)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.HasPrefix(rec.Body.String(), `<div class="error">`) {
				t.Errorf("body = %q", rec.Body.String())
			}
			var n notification
			if err := json.Unmarshal(decodeTriggers(t, rec)[EventNotification], &n); err != nil {
				t.Fatal(err)
			}
			if n.Type != NotificationError {
				t.Errorf("notification type = %q", n.Type)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(http.StatusBadRequest, `<script>alert("x")</script>`).Write(rec)

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("body not escaped: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("escaped script missing: %s", body)
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(rec)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "POST" {
		t.Errorf("Allow = %q", got)
	}
}
