package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"voxelops.dev/internal/transport"
)

// Category is the failure taxonomy surfaced to callers.
type Category string

const (
	CategoryConnection       Category = "connection"
	CategoryAuthentication   Category = "authentication"
	CategoryTimeout          Category = "timeout"
	CategoryInvalidCommand   Category = "invalid_command"
	CategoryPermission       Category = "permission"
	CategoryTargetNotFound   Category = "target_not_found"
	CategoryVerification     Category = "verification"
	CategoryGenericExecution Category = "execution"
)

// ErrorReport is a classified failure with ordered recovery suggestions.
// Pure value; constructed on demand and never mutated.
type ErrorReport struct {
	Category    Category `json:"category"`
	Detail      string   `json:"detail"`
	Suggestions []string `json:"suggestions"`
}

func (r *ErrorReport) Message() string {
	return fmt.Sprintf("%s: %s", r.Category, r.Detail)
}

var suggestions = map[Category][]string{
	CategoryConnection: {
		"check the server address and port",
		"confirm the server is running and its admin console is enabled",
		"check firewall rules between this client and the server",
	},
	CategoryAuthentication: {
		"check the configured password against the server's rcon.password",
		"restart the server after changing console credentials",
	},
	CategoryTimeout: {
		"raise the per-command timeout",
		"reduce the fill chunk size so each command does less work",
		"check server load; large operations stall a busy server",
	},
	CategoryInvalidCommand: {
		"check the command syntax against the server version",
		"confirm the block or entity identifiers exist in this world",
	},
	CategoryPermission: {
		"grant the console user operator permissions",
		"check world protection or claim rules covering the target region",
	},
	CategoryTargetNotFound: {
		"confirm the target player or entity is online",
		"check selector arguments for typos",
	},
	CategoryVerification: {
		"inspect the raw response; the server may use unrecognized wording",
		"run the command unverified if it legitimately returns no text",
	},
	CategoryGenericExecution: {
		"inspect the raw response and server logs",
		"retry once the server is idle",
	},
}

func kindLabel(kind OpKind) string {
	switch kind {
	case OpFill:
		return "fill operation"
	case OpClear:
		return "clear operation"
	case OpFlagQuery:
		return "gamerule query"
	case OpProbe:
		return "probe"
	default:
		return "command"
	}
}

// classify maps a transport fault or a failed-verification response into an
// ErrorReport. Exactly one of err and resp matters: err wins when non-nil,
// otherwise resp is the verified-failed response text.
func classify(err error, resp string, kind OpKind) *ErrorReport {
	report := func(cat Category, detail string) *ErrorReport {
		return &ErrorReport{Category: cat, Detail: detail, Suggestions: suggestions[cat]}
	}

	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
			return report(CategoryTimeout, fmt.Sprintf("%s timed out: %v", kindLabel(kind), err))
		case errors.Is(err, transport.ErrAuthRejected):
			return report(CategoryAuthentication, err.Error())
		case errors.Is(err, transport.ErrUnreachable):
			return report(CategoryConnection, err.Error())
		}
		var nerr net.Error
		if errors.As(err, &nerr) {
			if nerr.Timeout() {
				return report(CategoryTimeout, fmt.Sprintf("%s timed out: %v", kindLabel(kind), err))
			}
			return report(CategoryConnection, err.Error())
		}
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "connection refused"), strings.Contains(low, "no route"),
			strings.Contains(low, "network is unreachable"), strings.Contains(low, "broken pipe"),
			strings.Contains(low, "connection reset"):
			return report(CategoryConnection, err.Error())
		case strings.Contains(low, "authentication"):
			return report(CategoryAuthentication, err.Error())
		}
		return report(CategoryGenericExecution, err.Error())
	}

	low := strings.ToLower(resp)
	switch {
	case strings.Contains(low, "unknown command"), strings.Contains(low, "invalid"),
		strings.Contains(low, "syntax"), strings.Contains(low, "expected"):
		return report(CategoryInvalidCommand, fmt.Sprintf("server rejected the command: %s", firstLine(resp)))
	case strings.Contains(low, "permission"), strings.Contains(low, "not allowed"):
		return report(CategoryPermission, fmt.Sprintf("server denied the command: %s", firstLine(resp)))
	case strings.Contains(low, "no player"), strings.Contains(low, "no entity"),
		strings.Contains(low, "not found"):
		return report(CategoryTargetNotFound, fmt.Sprintf("target missing: %s", firstLine(resp)))
	case strings.TrimSpace(resp) == "":
		return report(CategoryVerification, "empty response for a verified command")
	}
	return report(CategoryVerification, fmt.Sprintf("response failed verification: %s", firstLine(resp)))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 160 {
		s = s[:160]
	}
	return s
}
