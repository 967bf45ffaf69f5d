package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// AssistantClient is a client for the AssistantService.
type AssistantClient struct {
	handleCommand *connect.Client[structpb.Struct, structpb.Struct]
	greet         *connect.Client[structpb.Struct, structpb.Struct]
}

// Reply is a decoded AssistantService response.
type Reply struct {
	Intent    string
	Response  string
	RequestID string
}

// NewAssistantClient creates a client for the service at baseURL, e.g. http://localhost:8000.
func NewAssistantClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AssistantClient {
	return &AssistantClient{
		handleCommand: connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient,
			baseURL+AssistantServiceHandleCommandProcedure,
			opts...,
		),
		greet: connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient,
			baseURL+AssistantServiceGreetProcedure,
			opts...,
		),
	}
}

// HandleCommand sends one utterance.
func (c *AssistantClient) HandleCommand(ctx context.Context, command string) (*Reply, error) {
	msg, err := structpb.NewStruct(map[string]any{FieldCommand: command})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}

	resp, err := c.handleCommand.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return decodeReply(resp.Msg), nil
}

// Greet requests the session greeting.
func (c *AssistantClient) Greet(ctx context.Context) (*Reply, error) {
	resp, err := c.greet.CallUnary(ctx, connect.NewRequest(&structpb.Struct{}))
	if err != nil {
		return nil, err
	}
	return decodeReply(resp.Msg), nil
}

func decodeReply(msg *structpb.Struct) *Reply {
	fields := msg.GetFields()
	return &Reply{
		Intent:    fields[FieldIntent].GetStringValue(),
		Response:  fields[FieldResponse].GetStringValue(),
		RequestID: fields[FieldRequestID].GetStringValue(),
	}
}
