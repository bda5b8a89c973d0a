package handler_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/echo-gateway/internal/backend"
	"github.com/angeloszaimis/echo-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/echo-gateway/internal/handler"
	"github.com/angeloszaimis/echo-gateway/internal/loadbalancer"
	"github.com/angeloszaimis/echo-gateway/internal/ratelimit"
	"github.com/angeloszaimis/echo-gateway/internal/strategy"
)

func TestHandler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Handler Suite")
}

var _ = Describe("GatewayHandler", func() {
	var (
		gw        *handler.GatewayHandler
		lb        *loadbalancer.LoadBalancer
		upstreams []*backend.Backend
		mock      *httptest.Server
		log       *slog.Logger
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))

		mock = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("backend1"))
		}))

		upstreams = []*backend.Backend{
			backend.New(mustParseURL(mock.URL)),
		}

		lb = loadbalancer.New(strategy.NewRoundRobin())
		gw = handler.New(log, lb, upstreams, nil, nil, nil, 2)
	})

	AfterEach(func() {
		mock.Close()
	})

	Describe("ServeHTTP", func() {
		It("should proxy the request to an upstream", func() {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			gw.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("backend1"))
		})

		It("should tag the response with the chosen upstream", func() {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			gw.ServeHTTP(w, req)

			Expect(w.Header().Get("X-Backend-Server")).To(Equal(mock.URL))
		})

		It("should release the upstream after the request", func() {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			gw.ServeHTTP(w, req)

			Expect(upstreams[0].ActiveConnections()).To(Equal(0))
		})

		Context("with no healthy upstreams", func() {
			BeforeEach(func() {
				upstreams[0].SetHealthy(false)
			})

			It("should return 503 Service Unavailable", func() {
				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				w := httptest.NewRecorder()

				gw.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			})
		})

		Context("with a rate limiter", func() {
			BeforeEach(func() {
				limiter := ratelimit.NewPerClient(1, time.Minute)
				gw = handler.New(log, lb, upstreams, limiter, nil, nil, 2)
			})

			It("should reject clients over budget with 429", func() {
				first := httptest.NewRecorder()
				gw.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
				Expect(first.Code).To(Equal(http.StatusOK))

				second := httptest.NewRecorder()
				gw.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
				Expect(second.Code).To(Equal(http.StatusTooManyRequests))
			})

			It("should limit clients independently", func() {
				req1 := httptest.NewRequest(http.MethodGet, "/", nil)
				req1.Header.Set("X-Forwarded-For", "10.0.0.1")
				req2 := httptest.NewRequest(http.MethodGet, "/", nil)
				req2.Header.Set("X-Forwarded-For", "10.0.0.2")

				w1 := httptest.NewRecorder()
				gw.ServeHTTP(w1, req1)
				Expect(w1.Code).To(Equal(http.StatusOK))

				w2 := httptest.NewRecorder()
				gw.ServeHTTP(w2, req2)
				Expect(w2.Code).To(Equal(http.StatusOK))
			})
		})

		Context("with circuit breakers", func() {
			var breakers *circuitbreaker.Registry

			BeforeEach(func() {
				breakers = circuitbreaker.NewRegistry(1, time.Minute)
				gw = handler.New(log, lb, upstreams, nil, breakers, nil, 2)
			})

			It("should skip an upstream whose breaker is open", func() {
				breakers.Get(mock.URL).RecordFailure()
				Expect(breakers.Get(mock.URL).State()).To(Equal(circuitbreaker.StateOpen))

				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				w := httptest.NewRecorder()

				gw.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			})

			It("should close the breaker after a successful request", func() {
				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				w := httptest.NewRecorder()

				gw.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusOK))
				Expect(breakers.Get(mock.URL).State()).To(Equal(circuitbreaker.StateClosed))
			})
		})
	})
})

func mustParseURL(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return u
}
