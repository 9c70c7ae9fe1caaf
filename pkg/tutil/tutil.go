package tutil

import (
	"os"
	"strings"
)

// IsIntegrationTest reports whether tests needing external services (MySQL)
// should run.
func IsIntegrationTest() bool {
	testType := os.Getenv("EBFTPD_TEST")
	return strings.ToLower(testType) == "integration"
}
