package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/brightloop/pulse/internal/domain"
)

// CheckKeyword implements §4.1.6.
func CheckKeyword(ctx context.Context, m domain.Monitor) Result {
	if m.KeywordURL == nil || m.KeywordText == nil {
		msg := "missing keyword_url or keyword_text"
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}

	timeout := timeoutFor(m)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Transport: httpTransport}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *m.KeywordURL, nil)
	if err != nil {
		msg := err.Error()
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}

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

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg}
	}

	matchType := "contains"
	if m.KeywordMatchType != nil && *m.KeywordMatchType != "" {
		matchType = *m.KeywordMatchType
	}

	text := string(body)
	keyword := *m.KeywordText

	found := false
	count := 0

	switch matchType {
	case "exact":
		if strings.TrimSpace(text) == keyword {
			found = true
			count = 1
		}
	case "regex":
		re, err := regexp.Compile(keyword)
		if err != nil {
			msg := fmt.Sprintf("invalid regex: %v", err)
			return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg}
		}
		matches := re.FindAllString(text, -1)
		count = len(matches)
		found = count > 0
	default: // contains
		count = strings.Count(text, keyword)
		found = count > 0
	}

	payload := domain.Payload{KeywordFound: &found, KeywordMatchCount: &count}

	if !found {
		msg := fmt.Sprintf("Keyword '%s' not found", keyword)
		return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg, Payload: payload}
	}

	return Result{Status: domain.StatusUp, ResponseTime: &elapsed, Payload: payload}
}
