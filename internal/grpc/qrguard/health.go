package qrguard

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger reports whether a backing dependency is reachable.
// *cache.RedisCache satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealthServer registers the gRPC health check service.
// When pinger is non-nil its status is re-checked every interval until ctx is done.
func RegisterHealthServer(ctx context.Context, grpcServer *grpc.Server, pinger Pinger, interval time.Duration) *health.Server {
	healthServer := health.NewServer()
	setServing(healthServer, true)

	if pinger != nil {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				setServing(healthServer, pinger.Ping(checkCtx) == nil)
				cancel()

				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	}

	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	return healthServer
}

func setServing(hs *health.Server, ok bool) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !ok {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(ServiceName, status)
}
