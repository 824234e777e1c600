package oasdoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	json "github.com/goccy/go-json"
	jsonyaml "github.com/invopop/yaml"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	StructureError  ErrorCode = "StructureError"
	ConversionError ErrorCode = "ConversionError"
)

// DocError is a structured loader error with an optional location.
type DocError struct {
	Code     ErrorCode
	Message  string
	Location string // file path or URL
	Cause    error
}

func (e *DocError) Error() string { return e.Message }
func (e *DocError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }

// Load reads an OpenAPI v3 document from a filesystem path or http/https URL
// and returns it as a generic ordered tree. Swagger v2.0 input is converted
// to v3 via kin-openapi before parsing, so the rest of the pipeline only
// ever sees v3 structure.
//
// Load does not validate the document against the OpenAPI meta-schema; it
// only requires the top-level structures the generator consumes.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &DocError{Code: InputError, Message: "oasdoc: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	name := docName(input)

	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	var raw []byte
	location := input
	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, &DocError{Code: InputError, Message: fmt.Sprintf("oasdoc: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		fetched, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &DocError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		raw = fetched
	} else {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, &DocError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
		}
		location = abs
		raw, err = os.ReadFile(abs)
		if err != nil {
			return nil, &DocError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
		}
	}

	version, err := detectVersion(raw)
	if err != nil {
		return nil, &DocError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	if version == 2 {
		converted, err := convertV2ToV3(raw)
		if err != nil {
			return nil, &DocError{Code: ConversionError, Message: fmt.Sprintf("convert v2 to v3: %v", err), Location: location, Cause: err}
		}
		raw = converted
	}

	root, err := ParseTree(raw)
	if err != nil {
		return nil, &DocError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	doc := &Document{Name: name, Root: root}
	if doc.Schemas() == nil && doc.Paths() == nil {
		return nil, &DocError{Code: StructureError, Message: "oasdoc: document has neither components/schemas nor paths", Location: location}
	}
	return doc, nil
}

func docName(input string) string {
	base := filepath.Base(strings.TrimSuffix(input, "/"))
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}

// detectVersion returns 3 for OpenAPI v3, 2 for Swagger v2, else an error.
func detectVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse document: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return 3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return 2, nil
		}
	}
	return 0, errors.New("oasdoc: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

// convertV2ToV3 converts Swagger v2.0 bytes to an OpenAPI v3 JSON document.
// The converted document is re-serialized so the caller can parse it into
// the same ordered tree shape as native v3 input.
func convertV2ToV3(data []byte) ([]byte, error) {
	if fixed, changed, _ := compatFixV2(data); changed {
		data = fixed
	}
	// kin-openapi types unmarshal through their json tags, so YAML input
	// goes through the yaml-to-json bridge instead of yaml.v3 directly.
	var v2 openapi2.T
	if err := jsonyaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v3)
}

// compatFixV2 rewrites v2 operations that declare more than one body
// parameter, which kin-openapi refuses to convert: the body parameters are
// merged into a single object-typed body. Returns possibly-modified bytes
// and whether a rewrite happened; on error the input is returned unchanged.
func compatFixV2(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok || len(paths) == 0 {
		return data, false, nil
	}
	modified := false
	for _, pim := range paths {
		pi, ok := pim.(map[string]any)
		if !ok {
			continue
		}
		for method, opm := range pi {
			switch strings.ToLower(method) {
			case "get", "post", "put", "delete", "patch", "options", "head":
			default:
				continue
			}
			op, ok := opm.(map[string]any)
			if !ok {
				continue
			}
			params, ok := op["parameters"].([]any)
			if !ok {
				continue
			}
			var bodies []map[string]any
			rest := make([]any, 0, len(params))
			for _, p := range params {
				pm, _ := p.(map[string]any)
				if pm != nil && strings.EqualFold(stringOf(pm["in"]), "body") {
					bodies = append(bodies, pm)
					continue
				}
				rest = append(rest, p)
			}
			if len(bodies) <= 1 {
				continue
			}
			props := map[string]any{}
			var required []any
			for _, pm := range bodies {
				name := stringOf(pm["name"])
				if name == "" {
					name = "field"
				}
				schema, _ := pm["schema"].(map[string]any)
				if schema == nil {
					schema = map[string]any{"type": "string"}
				}
				props[name] = schema
				if rb, _ := pm["required"].(bool); rb {
					required = append(required, name)
				}
			}
			bodySchema := map[string]any{"type": "object", "properties": props}
			if len(required) > 0 {
				bodySchema["required"] = required
			}
			merged := map[string]any{"in": "body", "name": "body", "schema": bodySchema}
			op["parameters"] = append([]any{merged}, rest...)
			modified = true
		}
	}
	if !modified {
		return data, false, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err == nil && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return io.ReadAll(resp.Body)
		}
		if err != nil {
			lastErr = err
		} else {
			defer resp.Body.Close()
			if resp.StatusCode >= 500 || resp.StatusCode == 429 {
				lastErr = fmt.Errorf("transient http error %d", resp.StatusCode)
			} else {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}
