package memory_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novelforge/continuity/pkg/cache/memory"
)

func TestMemoryCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Memory Cache Suite")
}

var _ = Describe("Cache", func() {
	var (
		ctx context.Context
		c   *memory.Cache
	)

	BeforeEach(func() {
		ctx = context.Background()
		c = memory.NewCache()
		DeferCleanup(c.Close)
	})

	It("misses on an absent key", func() {
		_, ok, err := c.Get(ctx, "nope")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("round-trips a value", func() {
		Expect(c.Set(ctx, "k", "v", time.Hour)).To(Succeed())

		val, ok, err := c.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(val).To(Equal("v"))
	})

	It("expires entries past their ttl", func() {
		Expect(c.Set(ctx, "k", "v", 10*time.Millisecond)).To(Succeed())

		Eventually(func() bool {
			_, ok, _ := c.Get(ctx, "k")
			return ok
		}).Should(BeFalse())
	})

	It("treats zero ttl as no expiry", func() {
		Expect(c.Set(ctx, "k", "v", 0)).To(Succeed())

		_, ok, err := c.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("deletes entries", func() {
		Expect(c.Set(ctx, "k", "v", time.Hour)).To(Succeed())
		Expect(c.Delete(ctx, "k")).To(Succeed())

		_, ok, _ := c.Get(ctx, "k")
		Expect(ok).To(BeFalse())
	})
})
