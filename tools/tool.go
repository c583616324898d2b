package tools

import (
	"context"

	"github.com/bububa/stockcritique/schema"
)

// ITool is the description of a tool shown to callers and hooks
type ITool interface {
	Title() string
	Description() string
}

// Tool is a typed tool
type Tool[I schema.Schema, O schema.Schema] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// StartHook is called before a tool runs
type StartHook func(ctx context.Context, tool ITool, input any)

// EndHook is called after a tool succeeds
type EndHook func(ctx context.Context, tool ITool, input any, output any)

// ErrorHook is called after a tool fails
type ErrorHook func(ctx context.Context, tool ITool, input any, err error)
