// Package buildinfo exposes version information injected at build time:
//
//	go build -ldflags "-X github.com/yndnr/sessionlab-go/internal/infra/buildinfo.Version=v0.3.0 \
//	  -X github.com/yndnr/sessionlab-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// GoVersion falls back to the runtime version when not injected.
package buildinfo
