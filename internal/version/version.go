// ABOUTME: Version constants
// ABOUTME: Component identity reported to the host and in CLI output
package version

const (
	Product      = "AMR input"
	Version      = "1.1.2"
	Manufacturer = "foo-input-amr"
)
