package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

const ToolCheckLeaveBalance = "check_leave_balance"

type CheckLeaveBalanceInput struct {
	EmployeeID string `json:"employee_id"`
}

type CheckLeaveBalanceOutput struct {
	EmployeeID   string `json:"employee_id"`
	LeaveBalance int    `json:"leave_balance"`
	Message      string `json:"message"`
}

// mockLeaveBalances stands in for the HR system of record.
var mockLeaveBalances = map[string]int{
	"EMP001": 8,
	"EMP002": 14,
	"EMP003": 3,
}

func newCheckLeaveBalanceTool() (*schema.ToolInfo, map[string]*schema.ParameterInfo, tool.InvokableTool) {
	params := map[string]*schema.ParameterInfo{
		"employee_id": {
			Type:     "string",
			Desc:     "Employee identifier, e.g. EMP001",
			Required: true,
		},
	}
	info := &schema.ToolInfo{
		Name:        ToolCheckLeaveBalance,
		Desc:        "Check the remaining leave days for an employee.",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}

	t := utils.NewTool(info, func(ctx context.Context, in *CheckLeaveBalanceInput) (*CheckLeaveBalanceOutput, error) {
		if in.EmployeeID == "" {
			return nil, fmt.Errorf("employee_id is required")
		}
		balance, ok := mockLeaveBalances[in.EmployeeID]
		if !ok {
			return nil, fmt.Errorf("employee %s not found", in.EmployeeID)
		}
		return &CheckLeaveBalanceOutput{
			EmployeeID:   in.EmployeeID,
			LeaveBalance: balance,
			Message:      fmt.Sprintf("Employee %s has %d leave days remaining.", in.EmployeeID, balance),
		}, nil
	})

	return info, params, t
}
