package main

import (
	"context"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/echo-gateway/config"
)

func TestGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gateway Suite")
}

var _ = Describe("initializeUpstreams", func() {
	var (
		log    *slog.Logger
		ctx    context.Context
		cancel context.CancelFunc
		cfg    *config.Config
	)

	BeforeEach(func() {
		log = slog.Default()
		ctx, cancel = context.WithCancel(context.Background())
		cfg = &config.Config{
			HealthCheck: config.HealthCheckConfig{
				Interval: "5s",
			},
			Upstreams: []config.UpstreamConfig{},
		}
	})

	AfterEach(func() {
		if cancel != nil {
			cancel()
		}
	})

	Context("valid upstream URLs", func() {
		It("should initialize a single upstream", func() {
			cfg.Upstreams = []config.UpstreamConfig{{URL: "http://127.0.0.1:8000"}}
			upstreams, err := initializeUpstreams(ctx, cfg, log, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(upstreams).To(HaveLen(1))
			Expect(upstreams[0]).NotTo(BeNil())
		})

		It("should initialize both reference upstreams", func() {
			cfg.Upstreams = []config.UpstreamConfig{
				{URL: "http://127.0.0.1:8000"},
				{URL: "http://127.0.0.1:8001"},
			}
			upstreams, err := initializeUpstreams(ctx, cfg, log, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(upstreams).To(HaveLen(2))
		})
	})

	Context("invalid configurations", func() {
		It("should return an error for an invalid health check interval", func() {
			cfg.HealthCheck.Interval = "invalid"
			cfg.Upstreams = []config.UpstreamConfig{{URL: "http://127.0.0.1:8000"}}
			upstreams, err := initializeUpstreams(ctx, cfg, log, nil)
			Expect(err).To(HaveOccurred())
			Expect(upstreams).To(BeNil())
		})

		It("should return an error when no upstreams are configured", func() {
			upstreams, err := initializeUpstreams(ctx, cfg, log, nil)
			Expect(err).To(MatchError(ContainSubstring("no valid upstreams")))
			Expect(upstreams).To(BeNil())
		})

		It("should return an error when all URLs are invalid", func() {
			cfg.Upstreams = []config.UpstreamConfig{{URL: "://invalid"}}
			upstreams, err := initializeUpstreams(ctx, cfg, log, nil)
			Expect(err).To(HaveOccurred())
			Expect(upstreams).To(BeNil())
		})
	})
})

var _ = Describe("createStrategy", func() {
	log := slog.Default()

	It("should create round-robin", func() {
		Expect(createStrategy(log, config.StrategyRoundRobin)).NotTo(BeNil())
	})

	It("should create random", func() {
		Expect(createStrategy(log, config.StrategyRandom)).NotTo(BeNil())
	})

	It("should default unknown strategies to round-robin", func() {
		Expect(createStrategy(log, "least-latency")).NotTo(BeNil())
	})
})
