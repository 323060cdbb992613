// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// UserAgent is sent with every upstream request
const UserAgent = "mesonet-exporter/" + Version
