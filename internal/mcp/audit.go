package mcp

import (
	"time"
)

// auditTool records one tool invocation in the event log. Values are
// numeric gesture parameters or pattern labels, never bulk state.
func (s *Server) auditTool(toolName string, start time.Time, err error, params map[string]any) {
	status := "success"
	fields := map[string]any{
		"tool":        toolName,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		status = "error"
		fields["error"] = err.Error()
		s.log.Warn("mcp tool failed", "tool", toolName, "error", err)
	} else {
		s.log.Debug("mcp tool called", "tool", toolName)
	}
	fields["status"] = status
	if len(params) > 0 {
		fields["params"] = params
	}
	s.audit.Log("tool_call", fields)
}
