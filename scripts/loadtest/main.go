// Loadtest is a concurrent HTTP traffic generator for the gateway and its
// echo fixtures. It reports throughput, latency percentiles, and how
// requests were distributed across the backends by reading the "backend"
// field of the echo responses.
//
// Usage:
//
//	go run ./scripts/loadtest -url http://127.0.0.1:8080/submit -concurrency 10 -requests 1000
//	go run ./scripts/loadtest -url http://127.0.0.1:8080/status -method GET -requests 5000
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type echoResponse struct {
	Backend string `json:"backend"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

func main() {
	var (
		url         = flag.String("url", "http://127.0.0.1:8080/submit", "Target URL")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 100, "Total number of requests to send")
		method      = flag.String("method", "POST", "HTTP method (GET or POST)")
		body        = flag.String("body", "hello", "Request body for POST")
		timeoutSec  = flag.Int("timeout", 10, "Per-request timeout in seconds")
	)
	flag.Parse()

	client := &http.Client{Timeout: time.Duration(*timeoutSec) * time.Second}

	var (
		success int32
		failure int32

		mu         sync.Mutex
		latencies  []time.Duration
		perBackend = make(map[string]int)
		perStatus  = make(map[int]int)
	)

	jobs := make(chan int)
	var wg sync.WaitGroup

	start := time.Now()

	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				var reqBody io.Reader
				if *method == http.MethodPost {
					reqBody = bytes.NewReader([]byte(*body))
				}

				req, err := http.NewRequest(*method, *url, reqBody)
				if err != nil {
					atomic.AddInt32(&failure, 1)
					continue
				}

				reqStart := time.Now()
				resp, err := client.Do(req)
				elapsed := time.Since(reqStart)
				if err != nil {
					atomic.AddInt32(&failure, 1)
					continue
				}

				respBody, _ := io.ReadAll(resp.Body)
				resp.Body.Close()

				var echo echoResponse
				backendName := "unknown"
				if json.Unmarshal(respBody, &echo) == nil && echo.Backend != "" {
					backendName = echo.Backend
				}

				mu.Lock()
				latencies = append(latencies, elapsed)
				perBackend[backendName]++
				perStatus[resp.StatusCode]++
				mu.Unlock()

				if resp.StatusCode == http.StatusOK {
					atomic.AddInt32(&success, 1)
				} else {
					atomic.AddInt32(&failure, 1)
				}
			}
		}()
	}

	for i := 0; i < *requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	total := time.Since(start)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Printf("requests:    %d (ok=%d fail=%d)\n", *requests, success, failure)
	fmt.Printf("duration:    %s (%.1f req/s)\n", total.Round(time.Millisecond), float64(*requests)/total.Seconds())
	if len(latencies) > 0 {
		fmt.Printf("latency:     p50=%s p90=%s p99=%s\n",
			percentile(latencies, 0.50), percentile(latencies, 0.90), percentile(latencies, 0.99))
	}

	fmt.Println("status codes:")
	for code, count := range perStatus {
		fmt.Printf("  %d: %d\n", code, count)
	}

	fmt.Println("distribution:")
	for name, count := range perBackend {
		fmt.Printf("  %-10s %d (%.1f%%)\n", name, count, 100*float64(count)/float64(*requests))
	}

	if failure > 0 {
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
