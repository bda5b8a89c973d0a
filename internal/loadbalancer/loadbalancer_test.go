package loadbalancer_test

import (
	"net/url"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/echo-gateway/internal/backend"
	"github.com/angeloszaimis/echo-gateway/internal/loadbalancer"
	"github.com/angeloszaimis/echo-gateway/internal/strategy"
)

func TestLoadBalancer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LoadBalancer Suite")
}

var _ = Describe("LoadBalancer", func() {
	var (
		lb       *loadbalancer.LoadBalancer
		backends []*backend.Backend
	)

	BeforeEach(func() {
		lb = loadbalancer.New(strategy.NewRoundRobin())

		backends = []*backend.Backend{
			backend.New(mustParseURL("http://127.0.0.1:8000")),
			backend.New(mustParseURL("http://127.0.0.1:8001")),
		}
	})

	Describe("Acquire", func() {
		Context("with all healthy backends", func() {
			It("should return a backend", func() {
				server, err := lb.Acquire(backends)
				Expect(err).NotTo(HaveOccurred())
				Expect(server).NotTo(BeNil())
			})

			It("should increment the connection count", func() {
				server, err := lb.Acquire(backends)
				Expect(err).NotTo(HaveOccurred())
				Expect(server.ActiveConnections()).To(Equal(1))
			})

			It("should alternate between the two backends", func() {
				first, _ := lb.Acquire(backends)
				second, _ := lb.Acquire(backends)
				Expect(first).NotTo(Equal(second))
			})
		})

		Context("with one unhealthy backend", func() {
			BeforeEach(func() {
				backends[0].SetHealthy(false)
			})

			It("should only select the healthy one", func() {
				for i := 0; i < 5; i++ {
					server, err := lb.Acquire(backends)
					Expect(err).NotTo(HaveOccurred())
					Expect(server).To(Equal(backends[1]))
				}
			})
		})

		Context("with no healthy backends", func() {
			BeforeEach(func() {
				for _, b := range backends {
					b.SetHealthy(false)
				}
			})

			It("should return an error", func() {
				server, err := lb.Acquire(backends)
				Expect(err).To(HaveOccurred())
				Expect(server).To(BeNil())
			})
		})
	})

	Describe("Strategy", func() {
		It("should expose the configured strategy", func() {
			Expect(lb.Strategy()).NotTo(BeNil())
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
