package client

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/google/uuid"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
)

type Client struct {
	RemoteAddr string
	Connection *grpc.ClientConn
}

func New(
	addr string,
	dialOpts ...grpc.DialOption,
) (*Client, error) {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(wire.MaxMessageSize)),
	}, dialOpts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize a gRPC client: %w", err)
	}
	return &Client{
		RemoteAddr: addr,
		Connection: conn,
	}, nil
}

// Post delivers the message into the remote mailbox. A message without an
// ID gets a random one; reusing the ID on retry makes the retry harmless.
func (c *Client) Post(
	ctx context.Context,
	msg mailbox.Message,
) (_ string, _err error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	logger.Debugf(ctx, "Post(ctx, %s) [%s]", msg, msg.ID)
	defer func() { logger.Debugf(ctx, "/Post(ctx, %s) [%s]: %v", msg, msg.ID, _err) }()

	if err := msg.Validate(); err != nil {
		return "", fmt.Errorf("invalid message: %w", err)
	}
	req, err := wire.MessageToStruct(msg)
	if err != nil {
		return "", fmt.Errorf("unable to serialize the message: %w", err)
	}
	if err := c.Connection.Invoke(ctx, wire.FullMethodPost, req, &emptypb.Empty{}); err != nil {
		return "", fmt.Errorf("unable to post the message to %s: %w", c.RemoteAddr, err)
	}
	return msg.ID, nil
}

func (c *Client) Close() error {
	return c.Connection.Close()
}
