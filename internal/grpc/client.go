package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"marith/internal/models"
)

// WorksheetClient calls a remote marith.Worksheet service.
type WorksheetClient struct {
	conn *grpc.ClientConn
}

// NewWorksheetClient dials serverAddr and waits up to five seconds for the
// connection.
func NewWorksheetClient(serverAddr string) (*WorksheetClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(ctx,
		serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.ForceCodec(jsonCodec{}),
			grpc.MaxCallRecvMsgSize(16*1024*1024), // 16MB
			grpc.MaxCallSendMsgSize(16*1024*1024), // 16MB
		),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}
	return &WorksheetClient{conn: conn}, nil
}

// NewWorksheetClientConn wraps an existing connection. Calls force the JSON
// codec, so conn needs no codec options.
func NewWorksheetClientConn(conn *grpc.ClientConn) *WorksheetClient {
	return &WorksheetClient{conn: conn}
}

func (c *WorksheetClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Generate asks the server for tasks.
func (c *WorksheetClient) Generate(ctx context.Context, req *models.GenerateRequest) (*models.TasksResponse, error) {
	out := new(models.TasksResponse)
	if err := c.conn.Invoke(ctx, generateMethod, req, out, grpc.ForceCodec(jsonCodec{})); err != nil {
		return nil, err
	}
	return out, nil
}
