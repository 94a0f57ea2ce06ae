// Package tools holds the capability-scoped tool registry and the
// execute_tool node. The registry type is unexported and constructed only
// inside NewExecuteToolNode, so no other node or package can reach a handler:
// isolation is enforced by construction, not by convention.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// entry pairs a tool declaration with its invokable implementation. params is
// kept alongside the ToolInfo for argument validation before any invocation.
type entry struct {
	info      *schema.ToolInfo
	params    map[string]*schema.ParameterInfo
	invokable tool.InvokableTool
}

type registry struct {
	entries map[string]*entry
}

func newRegistry() *registry {
	r := &registry{entries: map[string]*entry{}}
	r.register(newCheckLeaveBalanceTool())
	r.register(newCreateTicketTool())
	return r
}

func (r *registry) register(info *schema.ToolInfo, params map[string]*schema.ParameterInfo, t tool.InvokableTool) {
	r.entries[info.Name] = &entry{info: info, params: params, invokable: t}
}

// lookup returns the entry for a tool name, nil when unregistered.
func (r *registry) lookup(name string) *entry {
	return r.entries[name]
}

// missingArgs returns the required parameters that are absent or empty.
// Unknown arguments are dropped rather than rejected so a slightly over-eager
// extraction never blocks a valid call.
func (e *entry) missingArgs(args map[string]string) []string {
	var missing []string
	for name, p := range e.params {
		if p.Required && strings.TrimSpace(args[name]) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// invoke marshals the validated arguments and runs the handler through the
// Eino invokable interface. The JSON result is decoded back into a map for
// the invocation record.
func (e *entry) invoke(ctx context.Context, args map[string]string) (map[string]any, error) {
	known := map[string]string{}
	for name := range e.params {
		if v, ok := args[name]; ok {
			known[name] = v
		}
	}
	b, err := json.Marshal(known)
	if err != nil {
		return nil, fmt.Errorf("marshal arguments: %w", err)
	}

	raw, err := e.invokable.InvokableRun(ctx, string(b))
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decode tool result: %w", err)
	}
	return result, nil
}

// catalog renders the registry for the tool-selection prompt, sorted by name
// so the instruction text is stable across runs.
func (r *registry) catalog() string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		e := r.entries[name]
		fmt.Fprintf(&sb, "- %s: %s\n", name, e.info.Desc)

		params := make([]string, 0, len(e.params))
		for p := range e.params {
			params = append(params, p)
		}
		sort.Strings(params)
		for _, p := range params {
			info := e.params[p]
			req := "optional"
			if info.Required {
				req = "required"
			}
			fmt.Fprintf(&sb, "    %s (%s, %s): %s\n", p, info.Type, req, info.Desc)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
