package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novelforge/continuity/pkg/config"
)

var _ = Describe("config keys", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("recognizes every ordered key", func() {
		for _, k := range config.ValidConfigKeys() {
			Expect(config.IsValidConfigKey(k)).To(BeTrue(), "key %q", k)
		}
		Expect(config.IsValidConfigKey("no.such.key")).To(BeFalse())
	})

	It("round-trips a string value through set and get", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("inference.model", "llama3.1:8b")).To(Succeed())

		value, err := cfger.GetConfigValue("inference.model")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("llama3.1:8b"))
	})

	It("parses integer values and rejects garbage", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("assembler.max_context_units", "8000")).To(Succeed())
		value, err := cfger.GetConfigValue("assembler.max_context_units")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("8000"))

		Expect(cfger.SetConfigValue("assembler.max_context_units", "lots")).NotTo(Succeed())
	})

	It("splits broker lists on commas", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("event_stream.brokers", "k1:9092, k2:9092")).To(Succeed())

		value, err := cfger.GetConfigValue("event_stream.brokers")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("k1:9092,k2:9092"))
	})

	It("rejects unknown keys", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("bogus", "x")).NotTo(Succeed())
		_, err = cfger.GetConfigValue("bogus")
		Expect(err).To(HaveOccurred())
	})
})
