package tokens_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novelforge/continuity/pkg/tokens"
)

func TestTokens(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tokens Suite")
}

var _ = Describe("Heuristic", func() {
	var est tokens.Heuristic

	BeforeEach(func() {
		est = tokens.NewHeuristic()
	})

	It("returns zero for empty text", func() {
		Expect(est.Estimate("")).To(Equal(0))
	})

	It("charges narrow text about one unit per four characters", func() {
		Expect(est.Estimate("abcd")).To(Equal(1))
		Expect(est.Estimate(strings.Repeat("a", 40))).To(Equal(10))
	})

	It("rounds partial units up", func() {
		Expect(est.Estimate("abcde")).To(Equal(2))
	})

	It("charges wide-script text about one unit per 1.5 characters", func() {
		// 3 Han characters / 1.5 = 2 units
		Expect(est.Estimate("记忆系")).To(Equal(2))
	})

	It("mixes the two character classes", func() {
		// 3 Han / 1.5 + 4 ASCII / 4 = 3
		Expect(est.Estimate("记忆系abcd")).To(Equal(3))
	})

	It("is monotone under concatenation", func() {
		samples := []string{"", "a", "hello world", "张三 met 李四", strings.Repeat("xyz ", 50)}
		suffixes := []string{"b", " more text", "北京"}

		for _, a := range samples {
			for _, b := range suffixes {
				Expect(est.Estimate(a)).To(BeNumerically("<=", est.Estimate(a+b)),
					"estimate(%q) must not exceed estimate(%q)", a, a+b)
			}
		}
	})

	It("never returns a negative count", func() {
		for _, s := range []string{"", " ", "\n\n", "é", "🚀"} {
			Expect(est.Estimate(s)).To(BeNumerically(">=", 0))
		}
	})
})

var _ = Describe("Precise", func() {
	It("counts tokens with the exact encoder when available", func() {
		est, err := tokens.NewPrecise()
		if err != nil {
			Skip("cl100k_base encoding unavailable")
		}

		Expect(est.Estimate("")).To(Equal(0))
		Expect(est.Estimate("hello world")).To(BeNumerically(">", 0))
	})
})
