package toolmanager

import (
	"context"

	"github.com/Cyclone1070/kestrel/internal/permission"
	"github.com/Cyclone1070/kestrel/internal/tool"
)

// Tool is the contract every registered tool implements.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Declaration returns the tool's schema for the LLM.
	Declaration() tool.Declaration

	// Input returns a pointer to an empty request struct (e.g., &ReadFileRequest{}).
	Input() any

	// Execute runs the tool with a decoded request. It returns an error only
	// for a wrong input type or context cancellation; everything else is a
	// failed tool.Result.
	Execute(ctx context.Context, input any) (tool.Result, error)
}

// permissioned is implemented by tools that need user consent.
// A nil request means no consent is needed for this input. An error fails
// the call before the user is asked.
type permissioned interface {
	Permission(input any) (*permission.Request, error)
}

// authorizer asks for consent.
type authorizer interface {
	Authorize(ctx context.Context, req permission.Request) error
}
