package qrguard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"qrguard-lab/internal/domain/models"
	"qrguard-lab/internal/domain/services"
	"qrguard-lab/pkg/logger"
)

// ScanRecorder is notified of every completed scan
type ScanRecorder interface {
	RecordScan(contentType models.QRContentType)
}

// Server implements the QRGuard gRPC service
type Server struct {
	service           *services.QRSecurityService
	recorder          ScanRecorder
	paymentLinkPrefix string
	logger            *logger.Logger
}

// NewServer creates a new gRPC server. recorder may be nil.
func NewServer(svc *services.QRSecurityService, recorder ScanRecorder, paymentLinkPrefix string, log *logger.Logger) *Server {
	return &Server{
		service:           svc,
		recorder:          recorder,
		paymentLinkPrefix: paymentLinkPrefix,
		logger:            log.WithComponent("grpc-server"),
	}
}

// Register registers the server with a gRPC server
func (s *Server) Register(grpcServer *grpc.Server) {
	RegisterQRGuardServer(grpcServer, s)
}

// Assess returns the verdict for any string, including an empty one
func (s *Server) Assess(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	assessment := s.service.AssessURL(ctx, req.GetValue())
	return toStruct(assessment)
}

// Scan classifies and evaluates decoded QR content
func (s *Server) Scan(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "content is required")
	}

	result, err := s.service.Scan(ctx, &models.QRScanRequest{Content: req.GetValue(), SourceApp: "grpc"})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to scan QR content")
		return nil, status.Error(codes.Internal, "failed to scan QR content")
	}
	if s.recorder != nil {
		s.recorder.RecordScan(result.ContentType)
	}

	return toStruct(result)
}

// ParsePayload breaks a payment deep link into display fields
func (s *Server) ParsePayload(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "content is required")
	}
	if !services.IsPaymentLink(req.GetValue(), s.paymentLinkPrefix) {
		return nil, status.Error(codes.InvalidArgument, "content is not a payment link")
	}

	payload := services.ParsePayload(req.GetValue())
	return toStruct(map[string]interface{}{
		"payload": payload,
		"lines":   payload.Lines(),
		"text":    payload.String(),
	})
}

// toStruct converts v through its JSON form
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}

	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}
	return out, nil
}

// UnaryLogger logs every unary call with its status code
func UnaryLogger(log *logger.Logger) grpc.UnaryServerInterceptor {
	log = log.WithComponent("grpc")

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		event := log.Info()
		if code != codes.OK {
			event = log.Warn().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("rpc completed")

		return resp, err
	}
}
