// Package connect provides Connect RPC service implementations.
//
// Messages are google.protobuf.Struct values, so the service speaks the Connect,
// gRPC and gRPC-Web protocols with both binary and JSON payloads. A JSON call:
//
//	curl -H 'Content-Type: application/json' -d '{"command": "play shape of you"}' \
//	    http://localhost:8000/lyra.v1.AssistantService/HandleCommand
package connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/lyra/internal/app/assistant"
)

const (
	// AssistantServiceName is the fully-qualified name of the AssistantService service.
	AssistantServiceName = "lyra.v1.AssistantService"

	// AssistantServiceHandleCommandProcedure is the procedure name of AssistantService.HandleCommand.
	AssistantServiceHandleCommandProcedure = "/lyra.v1.AssistantService/HandleCommand"
	// AssistantServiceGreetProcedure is the procedure name of AssistantService.Greet.
	AssistantServiceGreetProcedure = "/lyra.v1.AssistantService/Greet"
)

// Message field names.
const (
	FieldCommand   = "command"
	FieldIntent    = "intent"
	FieldResponse  = "response"
	FieldRequestID = "request_id"
)

// Assistant is the application behind the service.
type Assistant interface {
	HandleCommand(ctx context.Context, text string) (assistant.Response, error)
	Greet(ctx context.Context) assistant.Response
}

// AssistantService implements the AssistantService RPC.
type AssistantService struct {
	assistant Assistant
}

// NewAssistantService creates a new AssistantService.
func NewAssistantService(a Assistant) *AssistantService {
	return &AssistantService{assistant: a}
}

// HandleCommand handles {"command": text} and answers {"intent", "response", "request_id"}.
func (s *AssistantService) HandleCommand(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	command, err := commandField(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	resp, err := s.assistant.HandleCommand(ctx, command)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyCommand) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	msg, err := structpb.NewStruct(map[string]any{
		FieldIntent:    resp.Intent.String(),
		FieldResponse:  resp.Text,
		FieldRequestID: resp.RequestID,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// Greet answers {"response": greeting}.
func (s *AssistantService) Greet(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	resp := s.assistant.Greet(ctx)

	msg, err := structpb.NewStruct(map[string]any{
		FieldResponse:  resp.Text,
		FieldRequestID: resp.RequestID,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// commandField returns the non-empty string "command" field of msg.
func commandField(msg *structpb.Struct) (string, error) {
	v, ok := msg.GetFields()[FieldCommand]
	if !ok {
		return "", errors.New("command field is required")
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", errors.New("command field must be a string")
	}
	if strings.TrimSpace(s.StringValue) == "" {
		return "", errors.New("command field must not be empty")
	}
	return s.StringValue, nil
}

// NewAssistantServiceHandler builds an HTTP handler for the service. It returns
// the path on which to mount the handler and the handler itself.
func NewAssistantServiceHandler(svc *AssistantService, opts ...connect.HandlerOption) (string, http.Handler) {
	handleCommand := connect.NewUnaryHandler(
		AssistantServiceHandleCommandProcedure,
		svc.HandleCommand,
		opts...,
	)
	greet := connect.NewUnaryHandler(
		AssistantServiceGreetProcedure,
		svc.Greet,
		opts...,
	)

	return "/" + AssistantServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AssistantServiceHandleCommandProcedure:
			handleCommand.ServeHTTP(w, r)
		case AssistantServiceGreetProcedure:
			greet.ServeHTTP(w, r)
		default:
			zlog.Debug().Msgf("unknown procedure: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})
}
