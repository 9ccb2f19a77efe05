package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novelforge/continuity/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Configer", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("returns defaults when no config file exists", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Provider).To(Equal("sqlite"))
		Expect(cfg.Assembler.MaxContextUnits).To(Equal(4000))
		Expect(cfg.Assembler.ShortTermCapacity).To(Equal(10))
	})

	It("round-trips a saved config", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.NewDefaultConfig()
		cfg.API.Listen = ":9999"
		cfg.Embedding.Model = "all-minilm"
		Expect(cfger.SaveConfig(cfg)).To(Succeed())

		loaded, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.API.Listen).To(Equal(":9999"))
		Expect(loaded.Embedding.Model).To(Equal("all-minilm"))
	})

	It("fills unset fields from defaults", func() {
		path := filepath.Join(dir, "config.toml")
		Expect(os.WriteFile(path, []byte("[api]\nlisten = \":7000\"\n"), 0o600)).To(Succeed())

		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.Listen).To(Equal(":7000"))
		Expect(cfg.Summarizer.MaxDepth).To(Equal(3))
		Expect(cfg.VectorStore.Provider).To(Equal("sqlite"))
	})

	It("rejects unknown config versions", func() {
		_, err := config.ParseConfigTOML([]byte("version = 42\n"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported config version"))
	})
})

var _ = Describe("InitViper", func() {
	It("honors CONTINUITY_ environment overrides", func() {
		GinkgoT().Setenv("CONTINUITY_API_LISTEN", ":6000")

		v, err := config.InitViper(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.API.Listen).To(Equal(":6000"))
		Expect(cfg.Embedding.Dimensions).To(Equal(uint(768)))
	})
})
