package server

import (
	"context"
	"fmt"
	"net"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox/wire"
	"github.com/xaionaro-go/xsync"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type mailboxServer interface {
	Post(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: wire.ServiceName,
	HandlerType: (*mailboxServer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: wire.MethodPost,
		Handler:    postHandler,
	}},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wakearbiter/mailbox",
}

func postHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(mailboxServer).Post(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: wire.FullMethodPost,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(mailboxServer).Post(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server accepts messages from GUI clients and puts them into a Store, where
// the pollers of the arbitration loop pick them up.
type Server struct {
	GRPCServer *grpc.Server
	Store      mailbox.Store
	IsStarted  bool

	BeltLocker xsync.Mutex
	Belt       *belt.Belt

	SeenLocker xsync.Mutex
	Seen       *lru.Cache[string, struct{}]
	Inflight   singleflight.Group
}

var _ mailboxServer = (*Server)(nil)

func New(
	store mailbox.Store,
	opts ...Option,
) *Server {
	cfg := Options(opts).config()
	srv := &Server{
		GRPCServer: grpc.NewServer(grpc.MaxRecvMsgSize(wire.MaxMessageSize)),
		Store:      store,
	}
	srv.GRPCServer.RegisterService(&serviceDesc, srv)
	if cfg.DedupCacheSize > 0 {
		cache, err := lru.New[string, struct{}](int(cfg.DedupCacheSize))
		if err != nil {
			panic(err)
		}
		srv.Seen = cache
	}
	return srv
}

func (srv *Server) Serve(
	ctx context.Context,
	listener net.Listener,
) error {
	if srv.IsStarted {
		panic("this GRPC server was already started at least once")
	}
	srv.IsStarted = true
	srv.BeltLocker.Do(ctx, func() {
		srv.Belt = belt.CtxBelt(ctx)
	})
	return srv.GRPCServer.Serve(listener)
}

func (srv *Server) Stop() {
	srv.GRPCServer.GracefulStop()
}

func (srv *Server) ctx(ctx context.Context) context.Context {
	b := xsync.DoR1(xsync.WithNoLogging(ctx, true), &srv.BeltLocker, func() *belt.Belt {
		return srv.Belt
	})
	if b == nil {
		return ctx
	}
	return belt.CtxWithBelt(ctx, b)
}

func (srv *Server) isSeen(ctx context.Context, id string) bool {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &srv.SeenLocker, func() bool {
		return srv.Seen.Contains(id)
	})
}

func (srv *Server) markSeen(ctx context.Context, id string) {
	srv.SeenLocker.Do(xsync.WithNoLogging(ctx, true), func() {
		srv.Seen.Add(id, struct{}{})
	})
}

// insertOnce stores the message unless a message with the same ID was
// already stored, so that a client retrying a Post after a timeout does not
// deliver the same command twice. Concurrent posts of one ID share the
// outcome of a single Insert; the ID is remembered only once it is stored.
func (srv *Server) insertOnce(ctx context.Context, msg mailbox.Message) error {
	if srv.Seen == nil || msg.ID == "" {
		return srv.Store.Insert(ctx, msg)
	}
	if srv.isSeen(ctx, msg.ID) {
		logger.Debugf(ctx, "message '%s' was already delivered, ignoring", msg.ID)
		return nil
	}
	_, err, shared := srv.Inflight.Do(msg.ID, func() (any, error) {
		if srv.isSeen(ctx, msg.ID) {
			return nil, nil
		}
		if err := srv.Store.Insert(ctx, msg); err != nil {
			return nil, err
		}
		srv.markSeen(ctx, msg.ID)
		return nil, nil
	})
	if shared {
		logger.Debugf(ctx, "message '%s' was posted concurrently, sharing the result: %v", msg.ID, err)
	}
	return err
}

func (srv *Server) Post(
	ctx context.Context,
	req *structpb.Struct,
) (_ *emptypb.Empty, _err error) {
	ctx = srv.ctx(ctx)
	msg, err := wire.MessageFromStruct(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid message: %v", err)
	}
	logger.Debugf(ctx, "Post(ctx, %s)", msg)
	defer func() { logger.Debugf(ctx, "/Post(ctx, %s): %v", msg, _err) }()

	if err := srv.insertOnce(ctx, msg); err != nil {
		return nil, status.Errorf(codes.Unavailable, "unable to store the message: %v", err)
	}
	return &emptypb.Empty{}, nil
}

func (srv *Server) String() string {
	return fmt.Sprintf("mailbox server (%T)", srv.Store)
}
