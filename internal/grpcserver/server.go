// Package grpcserver exposes the listing engine and the application workflow
// over gRPC.
//
// Messages are google.protobuf.Struct documents carrying the same JSON shapes
// as the REST API, so the service needs no generated stubs. It delegates all
// business logic to store.Catalog and kanban.Service and handles only the
// transport concerns: metadata extraction, error mapping and conversion
// between domain values and Struct messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"careers/listing-service/internal/apperr"
	"careers/listing-service/internal/kanban"
	"careers/listing-service/internal/listing"
	"careers/listing-service/internal/session"
	"careers/listing-service/internal/store"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "listing.v1.ListingService"

// ListingServer is the server API for ListingService.
type ListingServer interface {
	ListPositions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProjects(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPosts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListApplications(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MoveApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApplyAction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddNote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes ListingService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ListingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListPositions", ListingServer.ListPositions),
		unary("ListProjects", ListingServer.ListProjects),
		unary("ListPosts", ListingServer.ListPosts),
		unary("ListApplications", ListingServer.ListApplications),
		unary("GetApplication", ListingServer.GetApplication),
		unary("MoveApplication", ListingServer.MoveApplication),
		unary("ApplyAction", ListingServer.ApplyAction),
		unary("AddNote", ListingServer.AddNote),
		unary("DeleteApplication", ListingServer.DeleteApplication),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "listing/v1/listing.proto",
}

// Register attaches s to gs.
func Register(gs grpc.ServiceRegistrar, s ListingServer) {
	gs.RegisterService(&ServiceDesc, s)
}

type method func(ListingServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn method) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(ListingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(srv.(ListingServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// Server implements ListingServer.
type Server struct {
	catalog         store.Catalog
	apps            *kanban.Service
	defaultPageSize int
}

var _ ListingServer = (*Server)(nil)

// NewServer constructs a gRPC Server backed by the given catalog and
// application workflow.
func NewServer(catalog store.Catalog, apps *kanban.Service, defaultPageSize int) *Server {
	return &Server{catalog: catalog, apps: apps, defaultPageSize: defaultPageSize}
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// ListPositions returns one page of positions. The request carries the same
// keys as the REST query string.
func (s *Server) ListPositions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	page, err := s.catalog.ListPositions(ctx, s.query(req))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(page)
}

// ListProjects returns one page of projects and products.
func (s *Server) ListProjects(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	page, err := s.catalog.ListProjects(ctx, s.query(req))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(page)
}

// ListPosts returns one page of posts.
func (s *Server) ListPosts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	page, err := s.catalog.ListPosts(ctx, s.query(req))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(page)
}

// ListApplications returns one page of applications.
func (s *Server) ListApplications(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	page, err := session.LocalSource(s.apps.List)(ctx, s.query(req))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(page)
}

// GetApplication returns one application by "id".
func (s *Server) GetApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	app, err := s.apps.Get(ctx, str(req, "id"))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(app)
}

// MoveApplication transitions "id" to "status", optionally recording "note".
func (s *Server) MoveApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	app, err := s.apps.ApplyTransition(ctx, str(req, "id"), str(req, "status"), str(req, "note"))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(app)
}

// ApplyAction runs the guided "action" on "id".
func (s *Server) ApplyAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	app, err := s.apps.ApplyAction(ctx, str(req, "id"), str(req, "action"), str(req, "note"))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(app)
}

// AddNote appends "note" to "id".
func (s *Server) AddNote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	app, err := s.apps.AddNote(ctx, str(req, "id"), str(req, "note"))
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(app)
}

// DeleteApplication removes a rejected application and returns an empty
// message.
func (s *Server) DeleteApplication(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.apps.Delete(ctx, str(req, "id")); err != nil {
		return nil, toGRPCError(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
}

// ─── Interceptors ────────────────────────────────────────────────────────────

// LoggingInterceptor logs every unary call with its outcome code.
func LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	level := slog.LevelInfo
	if err != nil && status.Code(err) == codes.Internal {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "grpc call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"request_id", requestIDFromCtx(ctx),
		"duration", time.Since(start),
	)
	return resp, err
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// requestIDFromCtx extracts the x-request-id value forwarded by callers via
// gRPC metadata, or "" when absent.
func requestIDFromCtx(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get("x-request-id"); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var (
		ve *apperr.ValidationError
		te *apperr.TransitionError
	)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Msg)
	case errors.As(err, &te):
		return status.Error(codes.FailedPrecondition, te.Error())
	case errors.Is(err, apperr.ErrSourceUnavailable):
		slog.Error("record source unavailable", "err", err)
		return status.Error(codes.Unavailable, "record source unavailable")
	default:
		slog.Error("grpc request failed", "err", err)
		return status.Error(codes.Internal, "internal server error")
	}
}

// query turns the request fields into a listing.Query the same way the REST
// API reads its query string.
func (s *Server) query(req *structpb.Struct) listing.Query {
	v := url.Values{}
	for k, f := range req.GetFields() {
		switch x := f.GetKind().(type) {
		case *structpb.Value_StringValue:
			v.Set(k, x.StringValue)
		case *structpb.Value_NumberValue:
			v.Set(k, strconv.FormatFloat(x.NumberValue, 'f', -1, 64))
		case *structpb.Value_BoolValue:
			v.Set(k, strconv.FormatBool(x.BoolValue))
		}
	}
	return listing.ParseQuery(v, s.defaultPageSize)
}

func str(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// toStruct converts v to a Struct through its JSON encoding.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encoding response: %v", err))
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encoding response: %v", err))
	}
	return out, nil
}
