package cryptutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/absfs/cryptutil"

// maxResponseSize bounds how much of a verification response is read
const maxResponseSize = 64 << 10

const nonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Relay forwards OTP validation requests to a remote verification service
// and hands back the parsed response. It does not check the response
// signature or status; that is left to the caller.
type Relay struct {
	config RelayConfig
	client *http.Client
	tracer trace.Tracer
	log    zerolog.Logger
}

// NewRelay creates a relay, filling unset fields with defaults
func NewRelay(config RelayConfig) (*Relay, error) {
	// Set defaults
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.NonceLength == 0 {
		config.NonceLength = DefaultNonceLength
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Relay{
		config: config,
		client: client,
		tracer: tp.Tracer(tracerName),
		log:    loggerOrNop(config.Logger).With().Str("component", "otp").Logger(),
	}, nil
}

// Validate sends otp for clientID to the verification service and returns
// the response fields verbatim.
func (r *Relay) Validate(ctx context.Context, clientID, otp string) (map[string]string, error) {
	if clientID == "" {
		return nil, NewValidationError("clientID", clientID, fmt.Errorf("client id cannot be empty"))
	}
	if otp == "" {
		return nil, NewValidationError("otp", nil, fmt.Errorf("otp cannot be empty"))
	}

	ctx, span := r.tracer.Start(ctx, "cryptutil.Relay.Validate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("otp.client_id", clientID)),
	)
	defer span.End()

	fields, err := r.validate(ctx, clientID, otp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if status, ok := fields["status"]; ok {
		span.SetAttributes(attribute.String("otp.status", status))
	}
	return fields, nil
}

func (r *Relay) validate(ctx context.Context, clientID, otp string) (map[string]string, error) {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	nonce := randomNonce(r.config.NonceLength)

	u, err := url.Parse(r.config.Endpoint)
	if err != nil {
		return nil, NewValidationError("endpoint", r.config.Endpoint, err)
	}
	q := u.Query()
	q.Set("id", clientID)
	q.Set("otp", otp)
	q.Set("nonce", nonce)
	u.RawQuery = q.Encode()

	// Errors and logs carry the endpoint only, never the query with the OTP
	endpoint := r.config.Endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, NewNetworkError(endpoint, 0, err)
	}

	r.log.Debug().Str("endpoint", endpoint).Str("client_id", clientID).Msg("sending otp verification request")

	resp, err := r.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, NewNetworkError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, NewNetworkError(endpoint, resp.StatusCode, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status))
	}

	fields, err := ParseResponse(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if IsMalformedResponseError(err) {
			return nil, err
		}
		return nil, NewNetworkError(endpoint, resp.StatusCode, err)
	}

	if r.config.VerifyNonce && fields["nonce"] != nonce {
		return nil, NewNetworkError(endpoint, resp.StatusCode, ErrNonceMismatch)
	}

	r.log.Debug().Str("status", fields["status"]).Int("fields", len(fields)).Msg("received otp verification response")
	return fields, nil
}

// ParseResponse reads a line-oriented key=value body. Blank lines and lines
// without '=' are skipped; each line is split on its first '='. A body with
// content but no usable line is a *MalformedResponseError.
func ParseResponse(body io.Reader) (map[string]string, error) {
	fields := make(map[string]string)
	nonBlank := 0

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonBlank++

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if nonBlank > 0 && len(fields) == 0 {
		return nil, &MalformedResponseError{
			Lines:   nonBlank,
			Message: "no key=value lines",
			Err:     ErrMalformedResponse,
		}
	}
	return fields, nil
}

// randomNonce returns n characters from [A-Z0-9]. The nonce only lets the
// service detect duplicate requests, so math/rand is sufficient.
func randomNonce(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = nonceAlphabet[rand.IntN(len(nonceAlphabet))]
	}
	return string(b)
}

var (
	defaultRelayOnce sync.Once
	defaultRelay     *Relay
)

// ValidateOTP validates otp for clientID against the Yubico verification
// API using http.DefaultClient.
func ValidateOTP(ctx context.Context, clientID, otp string) (map[string]string, error) {
	defaultRelayOnce.Do(func() {
		r, err := NewRelay(RelayConfig{})
		if err != nil {
			panic(err)
		}
		defaultRelay = r
	})
	return defaultRelay.Validate(ctx, clientID, otp)
}
