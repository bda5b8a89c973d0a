package ratelimit_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/echo-gateway/internal/ratelimit"
)

func TestRatelimit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ratelimit Suite")
}

var _ = Describe("PerClient", func() {
	Describe("Allow", func() {
		It("should allow requests within the budget", func() {
			limiter := ratelimit.NewPerClient(5, time.Second)

			for i := 0; i < 5; i++ {
				Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
			}
		})

		It("should reject requests over the budget", func() {
			limiter := ratelimit.NewPerClient(3, time.Minute)

			for i := 0; i < 3; i++ {
				Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
			}
			Expect(limiter.Allow("10.0.0.1")).To(BeFalse())
		})

		It("should track clients independently", func() {
			limiter := ratelimit.NewPerClient(1, time.Minute)

			Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
			Expect(limiter.Allow("10.0.0.1")).To(BeFalse())
			Expect(limiter.Allow("10.0.0.2")).To(BeTrue())
		})

		It("should refill over time", func() {
			limiter := ratelimit.NewPerClient(10, 100*time.Millisecond)

			for i := 0; i < 10; i++ {
				limiter.Allow("10.0.0.1")
			}
			Expect(limiter.Allow("10.0.0.1")).To(BeFalse())

			time.Sleep(150 * time.Millisecond)
			Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
		})
	})

	Describe("Clients", func() {
		It("should count distinct clients", func() {
			limiter := ratelimit.NewPerClient(1, time.Second)

			limiter.Allow("10.0.0.1")
			limiter.Allow("10.0.0.2")
			limiter.Allow("10.0.0.1")

			Expect(limiter.Clients()).To(Equal(2))
		})
	})

	Describe("Sweep", func() {
		It("should evict idle clients", func() {
			limiter := ratelimit.NewPerClient(5, time.Second)

			limiter.Allow("10.0.0.1")
			time.Sleep(30 * time.Millisecond)

			Expect(limiter.Sweep(10 * time.Millisecond)).To(Equal(1))
			Expect(limiter.Clients()).To(Equal(0))
		})

		It("should keep recently seen clients", func() {
			limiter := ratelimit.NewPerClient(5, time.Second)

			limiter.Allow("10.0.0.1")
			time.Sleep(30 * time.Millisecond)
			limiter.Allow("10.0.0.2")

			Expect(limiter.Sweep(10 * time.Millisecond)).To(Equal(1))
			Expect(limiter.Clients()).To(Equal(1))
		})

		It("should hand a swept client a fresh bucket", func() {
			limiter := ratelimit.NewPerClient(1, time.Minute)

			Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
			Expect(limiter.Allow("10.0.0.1")).To(BeFalse())

			limiter.Sweep(0)

			Expect(limiter.Allow("10.0.0.1")).To(BeTrue())
		})
	})

	Describe("Run", func() {
		It("should sweep periodically until cancelled", func() {
			limiter := ratelimit.NewPerClient(5, 20*time.Millisecond)
			limiter.Allow("10.0.0.1")

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go limiter.Run(ctx)

			Eventually(limiter.Clients, "1s", "10ms").Should(Equal(0))
		})
	})
})
