package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Client-side events raised through HX-Trigger.
const (
	EventTransferCompleted = "transfer:completed"
	EventTransferClosed    = "transfer:closed"
	EventFormReset         = "form:reset"
	EventNotification      = "show-notification"
)

// NotificationType selects the styling of a toast.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

type notification struct {
	Type     NotificationType `json:"type"`
	Message  string           `json:"message"`
	Duration int              `json:"duration"`
}

type transferAccounts struct {
	SourceAccountID string `json:"sourceAccountId"`
	TargetAccountID string `json:"targetAccountId"`
}

// HTMXResponseBuilder assembles an HTMX response: status, HX-* headers,
// triggered events and an HTML body. The zero value is not usable; start
// from NewHTMXResponse.
type HTMXResponseBuilder struct {
	statusCode int
	headers    http.Header
	events     map[string]any
	body       []byte
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(http.Header),
		events:     make(map[string]any),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger raises event on the client with detail as its payload.
func (b *HTMXResponseBuilder) Trigger(event string, detail any) *HTMXResponseBuilder {
	if detail == nil {
		detail = struct{}{}
	}
	b.events[event] = detail
	return b
}

// TriggerTransferCompleted names both accounts so their balances refresh.
func (b *HTMXResponseBuilder) TriggerTransferCompleted(sourceAccountID, targetAccountID string) *HTMXResponseBuilder {
	return b.Trigger(EventTransferCompleted, transferAccounts{
		SourceAccountID: sourceAccountID,
		TargetAccountID: targetAccountID,
	})
}

func (b *HTMXResponseBuilder) TriggerTransferClosed() *HTMXResponseBuilder {
	return b.Trigger(EventTransferClosed, nil)
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, nil)
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.Trigger(EventNotification, notification{Type: NotificationSuccess, Message: message, Duration: 3000})
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.Trigger(EventNotification, notification{Type: NotificationError, Message: message, Duration: 5000})
}

// Retarget swaps the body into selector instead of the request's target.
func (b *HTMXResponseBuilder) Retarget(selector, swap string) *HTMXResponseBuilder {
	b.headers.Set("HX-Retarget", selector)
	if swap != "" {
		b.headers.Set("HX-Reswap", swap)
	}
	return b
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers.Set(name, value)
	return b
}

// BodyHTML sets an HTML fragment as the body.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.body = []byte(html)
	b.headers.Set("Content-Type", "text/html; charset=utf-8")
	return b
}

// Write sends the response. Writing a nil builder does nothing, so
// validation helpers can return nil for "no error".
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	if b == nil {
		return
	}
	for name, values := range b.headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	if len(b.events) > 0 {
		if encoded, err := json.Marshal(b.events); err == nil {
			w.Header().Set("HX-Trigger", string(encoded))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders message as an escaped error fragment and raises it
// as an error notification.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		TriggerErrorNotification(message).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// MethodNotAllowedError answers 405 with the Allow header and no body.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
