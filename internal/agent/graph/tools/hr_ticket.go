package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

const ToolCreateTicket = "create_hr_ticket"

type CreateTicketInput struct {
	Issue string `json:"issue"`
}

type CreateTicketOutput struct {
	TicketID string `json:"ticket_id"`
	Status   string `json:"status"`
	Issue    string `json:"issue"`
	Message  string `json:"message"`
}

func newCreateTicketTool() (*schema.ToolInfo, map[string]*schema.ParameterInfo, tool.InvokableTool) {
	params := map[string]*schema.ParameterInfo{
		"issue": {
			Type:     "string",
			Desc:     "Short description of the HR issue the ticket is about",
			Required: true,
		},
	}
	info := &schema.ToolInfo{
		Name:        ToolCreateTicket,
		Desc:        "Create an HR support ticket for the given issue.",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}

	t := utils.NewTool(info, func(ctx context.Context, in *CreateTicketInput) (*CreateTicketOutput, error) {
		if strings.TrimSpace(in.Issue) == "" {
			return nil, fmt.Errorf("issue is required")
		}
		ticketID := "TCK-" + strings.ToUpper(uuid.NewString()[:8])
		return &CreateTicketOutput{
			TicketID: ticketID,
			Status:   "created",
			Issue:    in.Issue,
			Message:  fmt.Sprintf("HR ticket created successfully. Ticket ID: %s", ticketID),
		}, nil
	})

	return info, params, t
}
