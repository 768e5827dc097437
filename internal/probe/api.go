package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brightloop/pulse/internal/domain"
)

// CheckAPI implements §4.1.7's exact short-circuit evaluation order.
func CheckAPI(ctx context.Context, m domain.Monitor) Result {
	if m.APIURL == nil {
		msg := "missing api_url"
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}

	method := http.MethodGet
	if m.APIMethod != nil && *m.APIMethod != "" {
		method = strings.ToUpper(*m.APIMethod)
	}

	var bodyReader io.Reader
	if m.APIBody != nil && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) {
		bodyReader = bytes.NewBufferString(*m.APIBody)
	}

	timeout := timeoutFor(m)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, *m.APIURL, bodyReader)
	if err != nil {
		msg := err.Error()
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}
	for k, v := range m.APIHeaders {
		req.Header.Set(k, v)
	}

	client := &http.Client{Transport: httpTransport}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return timeoutResult(timeout)
		}
		msg := err.Error()
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	elapsed := seconds(time.Since(start))
	if err != nil {
		msg := err.Error()
		return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg}
	}

	statusCode := resp.StatusCode
	respSize := len(body)
	payload := domain.Payload{APIStatusCode: &statusCode, APIResponseSize: &respSize}

	expectedStatus := 200
	if m.APIExpectedStatusCode != nil {
		expectedStatus = *m.APIExpectedStatusCode
	}

	// 1. status mismatch
	if statusCode != expectedStatus {
		msg := fmt.Sprintf("expected status %d, got %d", expectedStatus, statusCode)
		return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg, Payload: payload}
	}

	// 2. response time threshold
	if m.APIExpectedResponseTime != nil && elapsed > *m.APIExpectedResponseTime {
		msg := fmt.Sprintf("response time %.3fs exceeds expected %.3fs", elapsed, *m.APIExpectedResponseTime)
		return Result{Status: domain.StatusWarning, ResponseTime: &elapsed, ErrorMessage: &msg, Payload: payload}
	}

	// 3. json path validation
	if m.JSONPath != nil && *m.JSONPath != "" && m.ExpectedJSONValue != nil {
		var doc any
		if err := json.Unmarshal(body, &doc); err != nil {
			msg := fmt.Sprintf("failed to parse response as JSON: %v", err)
			valid := false
			payload.APIJSONValidationResult = &valid
			return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg, Payload: payload}
		}

		value, err := navigateJSONPath(doc, *m.JSONPath)
		if err != nil {
			msg := err.Error()
			valid := false
			payload.APIJSONValidationResult = &valid
			return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg, Payload: payload}
		}

		actual := stringifyJSONValue(value)
		if actual != *m.ExpectedJSONValue {
			msg := fmt.Sprintf("json path %s: expected '%s', got '%s'", *m.JSONPath, *m.ExpectedJSONValue, actual)
			valid := false
			payload.APIJSONValidationResult = &valid
			return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg, Payload: payload}
		}

		valid := true
		payload.APIJSONValidationResult = &valid
	}

	// 4. otherwise up
	return Result{Status: domain.StatusUp, ResponseTime: &elapsed, Payload: payload}
}

// navigateJSONPath walks dot-separated object-key segments only — no
// array indexing, matching original_source's check_api_endpoint.
func navigateJSONPath(doc any, path string) (any, error) {
	segments := strings.Split(path, ".")
	current := doc
	for _, seg := range segments {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("json path %s: %q is not an object", path, seg)
		}
		value, ok := obj[seg]
		if !ok {
			return nil, fmt.Errorf("json path %s: key %q not found", path, seg)
		}
		current = value
	}
	return current, nil
}

func stringifyJSONValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
