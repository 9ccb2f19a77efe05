package logger_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novelforge/continuity/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("NewLoggerWithWriters", func() {
	It("writes info messages to the given writer", func() {
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &buf)
		l.Info("hello")
		Expect(l.Sync()).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("hello"))
	})

	It("filters debug messages when debug is disabled", func() {
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &buf)
		l.Debug("hidden")
		Expect(l.Sync()).To(Succeed())

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
	})

	It("emits debug messages when debug is enabled", func() {
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(true, &buf)
		l.Debug("visible")
		Expect(l.Sync()).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("visible"))
	})

	It("fans out to multiple writers", func() {
		var a, b bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &a, &b)
		l.Info("both")
		Expect(l.Sync()).To(Succeed())

		Expect(a.String()).To(ContainSubstring("both"))
		Expect(b.String()).To(ContainSubstring("both"))
	})
})
