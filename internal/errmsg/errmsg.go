// Package errmsg provides enhanced error message formatting with actionable suggestions.
package errmsg

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/tsukumogami/pyinstall/internal/pydiscover"
	"github.com/tsukumogami/pyinstall/internal/pydownload"
	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyname"
)

// ErrorContext provides additional context for error formatting.
type ErrorContext struct {
	Request string // the version/name the user asked for, for suggestions
}

// Format returns a formatted error message with possible causes and suggestions.
// The context parameter is optional - pass nil for generic formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	errMsg := err.Error()

	var missingErr *pydiscover.MissingPythonError
	if errors.As(err, &missingErr) {
		return formatMissingPython(missingErr, ctx)
	}

	var noDownloadErr *pydownload.NoDownloadFoundError
	if errors.As(err, &noDownloadErr) {
		return formatNoDownloadFound(noDownloadErr, ctx)
	}

	var keyErr *pykey.ParseError
	if errors.As(err, &keyErr) {
		return formatKeyParseError(keyErr)
	}

	var nameErr *pyname.InvalidNameError
	if errors.As(err, &nameErr) {
		return formatInvalidName(nameErr)
	}

	if isRateLimitError(errMsg) {
		return formatRateLimitError(errMsg)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return formatNetworkError(netErr)
	}

	if isNetworkError(errMsg) {
		return formatGenericNetworkError(errMsg)
	}

	if isPermissionError(errMsg) {
		return formatPermissionError(errMsg)
	}

	return errMsg
}

func formatMissingPython(err *pydiscover.MissingPythonError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - No interpreter on this host satisfies the request\n")
	sb.WriteString("  - Downloads are disabled or the download catalog is unreachable\n")

	sb.WriteString("\nSuggestions:\n")
	if ctx != nil && ctx.Request != "" {
		sb.WriteString(fmt.Sprintf("  - Run 'pyinstall install %s' to fetch a matching interpreter\n", ctx.Request))
	} else {
		sb.WriteString("  - Run 'pyinstall install <version>' to fetch a matching interpreter\n")
	}
	sb.WriteString("  - Run 'pyinstall list' to see what's already installed\n")

	return sb.String()
}

func formatNoDownloadFound(err *pydownload.NoDownloadFoundError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The requested version, platform, or variant isn't published by the catalog\n")
	sb.WriteString("  - A custom catalog URL is missing that entry\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Double check the version constraint and platform\n")
	sb.WriteString("  - Run 'pyinstall list --available' to see what the catalog offers\n")

	return sb.String()
}

func formatKeyParseError(err *pykey.ParseError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString(fmt.Sprintf("  - The %s field doesn't match the expected form\n", err.Field))
	sb.WriteString("  - The installs directory contains an entry from an incompatible pyinstall version\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Expected form: impl-M.m.p[pre][+variant]-os-arch-libc\n")

	return sb.String()
}

func formatInvalidName(err *pyname.InvalidNameError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Names may only contain letters, digits, -, _, and .\n")
	sb.WriteString("  - Names must start and end with a letter or digit\n")

	return sb.String()
}

func formatRateLimitError(errMsg string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Too many requests to the catalog or download host\n")
	sb.WriteString("  - Unauthenticated requests have lower limits\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Set GITHUB_TOKEN to increase the catalog's rate limit\n")
	sb.WriteString("  - Wait a few minutes before retrying\n")

	return sb.String()
}

func formatNetworkError(err net.Error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	if err.Timeout() {
		sb.WriteString("  - Request timed out\n")
		sb.WriteString("  - Slow or unstable network connection\n")
	} else {
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - DNS resolution failure\n")
	}
	sb.WriteString("  - Firewall or proxy blocking the connection\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")
	if err.Timeout() {
		sb.WriteString("  - Raise PYINSTALL_API_TIMEOUT if you're behind a slow proxy\n")
	}

	return sb.String()
}

func formatGenericNetworkError(errMsg string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Network connectivity issue\n")
	sb.WriteString("  - DNS resolution failure\n")
	sb.WriteString("  - Service temporarily unavailable\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

func formatPermissionError(errMsg string) string {
	var sb strings.Builder
	sb.WriteString(errMsg)
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - Insufficient permissions on $PYINSTALL_HOME\n")
	sb.WriteString("  - Directory owned by a different user\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check permissions on ~/.pyinstall\n")
	sb.WriteString("  - Ensure you own the pyinstall directories: ls -la ~/.pyinstall\n")

	return sb.String()
}

// isRateLimitError checks if the error message indicates a rate limit.
func isRateLimitError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate-limit") ||
		strings.Contains(lower, "too many requests")
}

// isNetworkError checks if the error message indicates a network issue.
func isNetworkError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "network is unreachable") ||
		strings.Contains(lower, "dial tcp") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "i/o timeout")
}

// isPermissionError checks if the error message indicates a permission issue.
func isPermissionError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "operation not permitted")
}
