// Command healthcheck queries the local server for container health checks.
// It checks /healthz, or /ready when called with the "ready" argument, and
// exits 0 only on a 200 response.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/garyellow/course-eligibility-go/internal/config"
)

const requestTimeout = 8 * time.Second

func main() {
	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = "10000"
	}
	os.Exit(check(&http.Client{Timeout: requestTimeout}, endpoint(port, os.Args[1:])))
}

// endpoint returns the URL to check for the given arguments.
func endpoint(port string, args []string) string {
	path := "/healthz"
	if len(args) > 0 && args[0] == "ready" {
		path = "/ready"
	}
	return fmt.Sprintf("http://localhost:%s%s", port, path)
}

// check returns the process exit status for a GET of url.
func check(client *http.Client, url string) int {
	resp, err := client.Get(url)
	if err != nil {
		return 1
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}
