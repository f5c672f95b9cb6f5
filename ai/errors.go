// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind is the closed set of failure categories every provider error is mapped onto.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindNetwork
	KindServer
	KindOverloaded
	KindRateLimit
	KindPaymentRequired
	KindAuthentication
	KindInvalidRequest
	KindParse
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindConfiguration:   "configuration",
	KindNetwork:         "network",
	KindServer:          "server",
	KindOverloaded:      "overloaded",
	KindRateLimit:       "rate_limit",
	KindPaymentRequired: "payment_required",
	KindAuthentication:  "authentication",
	KindInvalidRequest:  "invalid_request",
	KindParse:           "parse",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Retryable reports whether failures of this kind may succeed on a later attempt.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindServer, KindOverloaded, KindRateLimit:
		return true
	default:
		return false
	}
}

var (
	// ErrConfiguration matches configuration failures via errors.Is.
	ErrConfiguration = errors.New("configuration error")
	// ErrNetwork matches transport failures.
	ErrNetwork = errors.New("network error")
	// ErrServer matches 5xx responses.
	ErrServer = errors.New("server error")
	// ErrOverloaded matches provider overload responses.
	ErrOverloaded = errors.New("server overloaded")
	// ErrRateLimit matches 429 and provider rate-limit responses.
	ErrRateLimit = errors.New("rate limited")
	// ErrPaymentRequired matches quota or billing failures.
	ErrPaymentRequired = errors.New("payment required")
	// ErrAuthentication matches rejected credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidRequest matches requests the provider refused as malformed.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrParse matches AI output that lacked the expected structure.
	ErrParse = errors.New("unparseable response")

	// ErrUnknownModel is wrapped into a configuration error for unknown explicit model ids.
	ErrUnknownModel = errors.New("unknown model")
	// ErrNoEligibleModel is wrapped into a configuration error when selection finds nothing.
	ErrNoEligibleModel = errors.New("no eligible model")
	// ErrProviderNotConfigured is wrapped into a configuration error when no client exists for a provider.
	ErrProviderNotConfigured = errors.New("provider not configured")
	// ErrEmptyResponse indicates a provider answered without any text.
	ErrEmptyResponse = errors.New("empty response")
)

var kindSentinels = map[Kind]error{
	KindConfiguration:   ErrConfiguration,
	KindNetwork:         ErrNetwork,
	KindServer:          ErrServer,
	KindOverloaded:      ErrOverloaded,
	KindRateLimit:       ErrRateLimit,
	KindPaymentRequired: ErrPaymentRequired,
	KindAuthentication:  ErrAuthentication,
	KindInvalidRequest:  ErrInvalidRequest,
	KindParse:           ErrParse,
}

// Error is a classified provider or orchestration failure. The original cause is kept in Err.
type Error struct {
	Kind       Kind
	Provider   Provider
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

// NewError builds a classified error.
func NewError(kind Kind, provider Provider, message string, cause error) *Error {
	return &Error{Kind: kind, Provider: provider, Message: message, Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != 0 {
		b.WriteString(e.Provider.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (http %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match a kind with errors.Is(err, ai.ErrPaymentRequired).
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// UserMessage returns the actionable category shown to end users.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindAuthentication:
		return "The AI provider rejected the credentials. Check your API key."
	case KindPaymentRequired:
		return "The AI provider requires payment or the quota is exhausted."
	case KindInvalidRequest:
		return "The AI provider rejected the request as invalid."
	case KindConfiguration:
		return "No usable AI model is configured for this request."
	case KindParse:
		return "The AI response could not be understood."
	default:
		return "The AI service is temporarily unavailable. Try again later."
	}
}

// KindOf returns the classified kind of err, looking through wrapped errors.
// Unclassified transport errors report KindNetwork.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	if isTransportError(err) {
		return KindNetwork
	}
	return KindUnknown
}

// IsRetryable reports whether err is worth another attempt.
// Caller cancellation is never retryable; unknown errors default to false.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return KindOf(err).Retryable()
}

// ClassifyTransport wraps a failure returned by an HTTP round trip.
// Errors caused by the caller's own context are returned unchanged.
func ClassifyTransport(ctx context.Context, provider Provider, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return err
	}
	return &Error{Kind: KindNetwork, Provider: provider, Err: redactURL(err)}
}

// redactURL drops the query and userinfo from the URL a *url.Error reports,
// since either may carry credentials.
func redactURL(err error) error {
	urlErr, ok := err.(*url.Error)
	if !ok {
		return err
	}
	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return &url.Error{Op: urlErr.Op, URL: "[redacted]", Err: urlErr.Err}
	}
	if u.RawQuery == "" && u.User == nil {
		return err
	}
	u.RawQuery = ""
	u.User = nil
	return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
}

func isTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, context.DeadlineExceeded)
}

// ErrorFromStatus maps a non-2xx HTTP response onto the error taxonomy.
// providerType is the vendor's error type string when the body carried one.
func ErrorFromStatus(provider Provider, status int, body string, header http.Header, providerType string) *Error {
	e := &Error{
		Provider:   provider,
		StatusCode: status,
		Message:    summarizeBody(body),
	}
	switch {
	case status == http.StatusBadRequest:
		e.Kind = KindInvalidRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuthentication
	case status == http.StatusPaymentRequired:
		e.Kind = KindPaymentRequired
	case status == http.StatusRequestTimeout:
		e.Kind = KindNetwork
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimit
	case status == 529:
		e.Kind = KindOverloaded
	case status >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindInvalidRequest
	}

	// Vendor error types refine the status-derived kind.
	switch strings.ToLower(providerType) {
	case "overloaded_error":
		e.Kind = KindOverloaded
	case "rate_limit_error", "rate_limit_exceeded":
		e.Kind = KindRateLimit
	case "authentication_error", "permission_error":
		e.Kind = KindAuthentication
	case "insufficient_quota", "billing_error":
		e.Kind = KindPaymentRequired
	case "server_error", "api_error":
		e.Kind = KindServer
	}

	if header != nil && (e.Kind == KindRateLimit || e.Kind == KindOverloaded || e.Kind == KindServer) {
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
	}
	return e
}

// ReadErrorResponse drains a failed response and classifies it.
// The vendor error type is read from the usual JSON error envelopes:
// {"error":{"type":...}}, {"error":{"code":"..."}} and {"error":{"status":...}}.
func ReadErrorResponse(provider Provider, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return ErrorFromStatus(provider, resp.StatusCode, string(body), resp.Header, errorType(body))
}

func errorType(body []byte) string {
	var envelope struct {
		Error struct {
			Type   string          `json:"type"`
			Code   json.RawMessage `json:"code"`
			Status string          `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error.Type != "" {
		return envelope.Error.Type
	}
	var code string
	if err := json.Unmarshal(envelope.Error.Code, &code); err == nil && code != "" {
		return code
	}
	return envelope.Error.Status
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if d := time.Until(when); d > 0 {
			return d
		}
	}
	return 0
}

func summarizeBody(body string) string {
	return Truncate(strings.Join(strings.Fields(body), " "), 300)
}

// Truncate cuts s to at most limit bytes on a rune boundary and marks the
// cut with "...".
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
