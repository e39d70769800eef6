// Package internal holds build information shared by the executables.
package internal

// Version is the release of the certree tools.
const Version = "0.1.0"
