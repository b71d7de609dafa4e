// Package version holds build metadata reported by the health endpoint.
package version

// Version is overridden at build time with -ldflags "-X .../version.Version=..."
var Version = "1.0.0"

// Service is the name reported by the health endpoint
const Service = "product-categorization"
