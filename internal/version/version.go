// ABOUTME: Version and product identification constants
// ABOUTME: Reported in the control protocol handshake and -version output
package version

// Version is overridden at build time with -ldflags "-X .../internal/version.Version=..."
var Version = "0.1.0"

const (
	// Product is the product name sent in device info
	Product = "stepseq"

	// Manufacturer is the manufacturer sent in device info
	Manufacturer = "Resonate Protocol"
)

// String returns "product version"
func String() string {
	return Product + " " + Version
}
