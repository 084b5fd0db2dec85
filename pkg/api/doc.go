// Package api boots the SNS HTTP endpoint of the node log automation.
//
// It is a thin layer over pkg/server: it configures logging, loads the
// node log settings from the environment, connects to AWS and hands a
// nodelog.Router to the server as its notification handler.
//
// # Usage
//
//	func main() {
//	    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	    defer stop()
//	    if err := api.Serve(ctx); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Endpoints
//
//   - POST /sns    - SNS subscription confirmation and alert notifications
//   - GET /health  - Liveness probe
//   - GET /ready   - Readiness probe
//   - GET /metrics - Prometheus metrics
//
// # Configuration
//
// Besides the node log settings (CLUSTER_ID, CLUSTER_REGION,
// LOG_COLLECTION_BUCKET, SSM_AUTOMATION_EXECUTION_ROLE_ARN, ...), the server
// reads:
//   - PORT: listen port (default: 8080)
//   - SHUTDOWN_TIMEOUT_SECONDS: graceful shutdown budget
//   - NODELOG_TOPIC_ARN: the only topic accepted, when set
//   - LOG_LEVEL: logging level (debug, info, warn, error)
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/eks-patterns/eksops/pkg/api.version=1.0.0'"
package api
