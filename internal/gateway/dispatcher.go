package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/teemow/sheetdrive/internal/google"
	"github.com/teemow/sheetdrive/internal/instrumentation"
	"github.com/teemow/sheetdrive/internal/logging"
)

// Dispatcher sends authenticated requests to the tabular and storage families.
// It is immutable after New and safe for concurrent use.
type Dispatcher struct {
	credentials   google.CredentialProvider
	baseURLs      map[Family]string
	uploadBaseURL string
	transport     http.RoundTripper
	logger        *slog.Logger
	metrics       *instrumentation.Metrics
	now           func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBaseURL overrides the base URL of a family.
func WithBaseURL(family Family, baseURL string) Option {
	return func(d *Dispatcher) {
		d.baseURLs[family] = baseURL
	}
}

// WithUploadBaseURL overrides the base URL used for storage requests with parts.
func WithUploadBaseURL(baseURL string) Option {
	return func(d *Dispatcher) {
		d.uploadBaseURL = baseURL
	}
}

// WithTransport sets the base round tripper. The bearer transport wraps it per call.
func WithTransport(rt http.RoundTripper) Option {
	return func(d *Dispatcher) {
		d.transport = rt
	}
}

// WithLogger sets the logger. Requests are logged at debug level, failures at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithClock sets the clock used to check credential expiry.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New creates a Dispatcher that acquires a credential from credentials for every request.
func New(credentials google.CredentialProvider, opts ...Option) (*Dispatcher, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential provider is required")
	}

	d := &Dispatcher{
		credentials: credentials,
		baseURLs: map[Family]string{
			FamilyTabular: TabularBaseURL,
			FamilyStorage: StorageBaseURL,
		},
		uploadBaseURL: StorageUploadBaseURL,
		transport:     otelhttp.NewTransport(http.DefaultTransport),
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.transport == nil {
		d.transport = http.DefaultTransport
	}

	for family, base := range d.baseURLs {
		if !family.Valid() {
			return nil, fmt.Errorf("unknown family %q", family)
		}
		normalized, err := normalizeBaseURL(base)
		if err != nil {
			return nil, err
		}
		d.baseURLs[family] = normalized
	}
	upload, err := normalizeBaseURL(d.uploadBaseURL)
	if err != nil {
		return nil, err
	}
	d.uploadBaseURL = upload

	return d, nil
}

// Dispatch performs req and returns exactly one Outcome.
//
// It panics if req names an unknown family or carries both a body and parts.
// Every other problem, including a panic while sending or decoding, is
// returned as a *Failure.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (out Outcome) {
	base := d.baseFor(req)
	method := strings.ToUpper(req.Method)
	start := time.Now()

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, req.Family.Service(), method, req.Path,
		attribute.Bool(instrumentation.SpanAttrMultipart, len(req.Parts) > 0))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			out = internalf("%v", r)
		}
		d.observe(ctx, span, req.Family, method, req.Path, out, time.Since(start))
	}()

	if !supportedMethods[method] {
		return NewFailure(UnsupportedMethod, "Unsupported method: %s", req.Method)
	}

	return d.send(ctx, base, method, req)
}

// baseFor checks the request contract and resolves its base URL.
func (d *Dispatcher) baseFor(req Request) string {
	if !req.Family.Valid() {
		panic(fmt.Sprintf("gateway: unknown family %q", req.Family))
	}
	if req.Body != nil && len(req.Parts) > 0 {
		panic("gateway: request carries both a JSON body and multipart parts")
	}
	if req.Family == FamilyStorage && len(req.Parts) > 0 {
		return d.uploadBaseURL
	}
	return d.baseURLs[req.Family]
}

func (d *Dispatcher) send(ctx context.Context, base, method string, req Request) Outcome {
	target, err := buildURL(base, req.Path, req.Query)
	if err != nil {
		return internalf("%v", err)
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return internalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, req.timeout())
	defer cancel()

	cred, failure := d.acquire(ctx)
	if failure != nil {
		return failure
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return internalf("failed to create request: %v", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if !req.Binary {
		httpReq.Header.Set("Accept", "application/json")
	}

	// Built per call so the token never outlives this request.
	client := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(cred.OAuth2Token()),
			Base:   d.transport,
		},
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return &Failure{Kind: TransportError, Message: "Request Error: " + err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Failure{Kind: TransportError, Message: "Request Error: " + err.Error(), Err: err}
	}

	return classify(resp, data, req.Binary)
}

func (d *Dispatcher) acquire(ctx context.Context) (*google.Credential, *Failure) {
	cred, err := d.credentials.Acquire(ctx)
	if err != nil {
		d.metrics.RecordCredentialAcquisition(ctx, instrumentation.CredentialResultFailure)
		return nil, &Failure{Kind: AuthError, Message: "Authentication failed: " + err.Error(), Err: err}
	}
	if cred == nil || cred.Token == "" {
		d.metrics.RecordCredentialAcquisition(ctx, instrumentation.CredentialResultFailure)
		return nil, NewFailure(AuthError, "Authentication failed: credential provider returned no token")
	}
	if cred.Expired(d.now()) {
		d.metrics.RecordCredentialAcquisition(ctx, instrumentation.CredentialResultExpired)
		return nil, NewFailure(AuthError, "Authentication failed: credential expired at %s", cred.Expiry.Format(time.RFC3339))
	}
	d.metrics.RecordCredentialAcquisition(ctx, instrumentation.CredentialResultSuccess)
	return cred, nil
}

func classify(resp *http.Response, data []byte, binary bool) Outcome {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiFailure(resp, data)
	}

	contentType := resp.Header.Get("Content-Type")
	if binary {
		return BinarySuccess{Content: data, Header: resp.Header, StatusCode: resp.StatusCode}
	}

	if len(bytes.TrimSpace(data)) == 0 && (contentType == "" || isJSON(contentType)) {
		return Success{Body: json.RawMessage("{}"), Header: resp.Header, StatusCode: resp.StatusCode}
	}
	if !isJSON(contentType) {
		return BinarySuccess{Content: data, Header: resp.Header, StatusCode: resp.StatusCode}
	}
	if !json.Valid(data) {
		return internalf("response declared %q but is not valid JSON", contentType)
	}
	return Success{Body: json.RawMessage(data), Header: resp.Header, StatusCode: resp.StatusCode}
}

// apiFailure builds the ApiError for a non-2xx response.
func apiFailure(resp *http.Response, data []byte) *Failure {
	details := json.RawMessage(data)
	if !json.Valid(data) {
		details = responseTextDetails(data)
	}

	// CheckResponse consumes the body, so hand it a copy.
	resp.Body = io.NopCloser(bytes.NewReader(data))
	message := http.StatusText(resp.StatusCode)
	if err := googleapi.CheckResponse(resp); err != nil {
		message = err.Error()
	}

	return &Failure{
		Kind:       ApiError,
		Message:    fmt.Sprintf("API Error: %d - %s", resp.StatusCode, message),
		StatusCode: resp.StatusCode,
		Details:    details,
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
}

func buildURL(base, path string, query map[string]any) (string, error) {
	u, err := url.Parse(base + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}

	if len(query) > 0 {
		values := u.Query()
		for key, v := range query {
			if v == nil {
				continue
			}
			s, err := queryValue(v)
			if err != nil {
				return "", fmt.Errorf("query parameter %q: %w", key, err)
			}
			values.Set(key, s)
		}
		u.RawQuery = values.Encode()
	}

	return u.String(), nil
}

func queryValue(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("non-finite number %v", v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func encodeBody(req Request) ([]byte, string, error) {
	switch {
	case len(req.Parts) > 0:
		return encodeMultipart(req.Parts)
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		return data, "application/json", nil
	default:
		return nil, "", nil
	}
}

func (d *Dispatcher) observe(ctx context.Context, span trace.Span, family Family, method, path string, out Outcome, elapsed time.Duration) {
	statusCode := 0
	kind := ""
	switch o := out.(type) {
	case Success:
		statusCode = o.StatusCode
	case BinarySuccess:
		statusCode = o.StatusCode
	case *Failure:
		statusCode = o.StatusCode
		kind = string(o.Kind)
	}

	d.metrics.RecordAPIRequest(ctx, family.Service(), method, path, statusCode, kind, elapsed)

	if statusCode != 0 {
		span.SetAttributes(attribute.Int(instrumentation.SpanAttrStatusCode, statusCode))
	}

	attrs := []any{
		logging.Family(family.String()),
		logging.Method(method),
		logging.Path(path),
		logging.Duration(elapsed),
	}
	if statusCode != 0 {
		attrs = append(attrs, logging.StatusCode(statusCode))
	}

	if f, ok := out.(*Failure); ok {
		span.SetAttributes(attribute.String(instrumentation.SpanAttrErrorKind, kind))
		instrumentation.SetSpanError(span, f)
		d.logger.WarnContext(ctx, "request failed", append(attrs, logging.Kind(kind), logging.Err(f))...)
		return
	}

	instrumentation.SetSpanSuccess(span)
	d.logger.DebugContext(ctx, "request completed", attrs...)
}
