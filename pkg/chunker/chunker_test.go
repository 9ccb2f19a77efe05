package chunker_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novelforge/continuity/pkg/chunker"
	"github.com/novelforge/continuity/pkg/tokens"
)

func TestChunker(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Chunker Suite")
}

var _ = Describe("Chunker", func() {
	var c *chunker.Chunker

	BeforeEach(func() {
		c = chunker.New(tokens.NewHeuristic())
	})

	It("returns nil for empty input", func() {
		Expect(c.Split("", 100, 10)).To(BeNil())
		Expect(c.Split("   \n\n  ", 100, 10)).To(BeNil())
	})

	It("keeps short text as a single chunk", func() {
		text := "A short paragraph.\n\nAnother short one."
		chunks := c.Split(text, 1000, 10)
		Expect(chunks).To(HaveLen(1))
		Expect(chunks[0]).To(ContainSubstring("A short paragraph."))
		Expect(chunks[0]).To(ContainSubstring("Another short one."))
	})

	It("splits on paragraph boundaries before sentence boundaries", func() {
		para := strings.Repeat("word ", 40)
		text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)

		chunks := c.Split(text, 60, 0)
		Expect(len(chunks)).To(BeNumerically(">", 1))
		for _, ch := range chunks {
			Expect(strings.TrimSpace(ch)).NotTo(BeEmpty())
		}
	})

	It("rejoined chunks preserve every paragraph in order", func() {
		paras := []string{
			"The caravan left the city at dawn.",
			"By noon the desert had swallowed the road behind them.",
			"Nobody spoke of the map, though everyone knew it was wrong.",
			"That night the guide vanished along with two of the horses.",
		}
		text := strings.Join(paras, "\n\n")

		chunks := c.Split(text, 20, 0)
		joined := strings.Join(chunks, "\n")

		lastIdx := -1
		for _, p := range paras {
			idx := strings.Index(joined, p)
			Expect(idx).To(BeNumerically(">", lastIdx), "paragraph %q out of order", p)
			lastIdx = idx
		}
	})

	It("carries word overlap from the previous chunk", func() {
		paras := make([]string, 0, 6)
		for range 6 {
			paras = append(paras, strings.TrimSpace(strings.Repeat("alpha beta gamma delta ", 8)))
		}
		text := strings.Join(paras, "\n\n")

		chunks := c.Split(text, 40, 4)
		Expect(len(chunks)).To(BeNumerically(">", 1))

		for i := 1; i < len(chunks); i++ {
			prevWords := strings.Fields(chunks[i-1])
			tail := strings.Join(prevWords[len(prevWords)-4:], " ")
			Expect(chunks[i]).To(HavePrefix(tail))
		}
	})

	It("falls back to sentence splitting for an oversized paragraph", func() {
		var b strings.Builder
		for range 30 {
			b.WriteString("This sentence pads the paragraph well past the budget. ")
		}
		chunks := c.Split(strings.TrimSpace(b.String()), 50, 0)

		Expect(len(chunks)).To(BeNumerically(">", 1))
		for _, ch := range chunks {
			Expect(strings.Contains(ch, "This sentence pads")).To(BeTrue())
		}
	})

	It("splits CJK sentences on full-width terminators", func() {
		sentences := chunker.SplitSentences("主角离开了村庄。她再也没有回头！前路漫漫？")
		Expect(sentences).To(Equal([]string{
			"主角离开了村庄。",
			"她再也没有回头！",
			"前路漫漫？",
		}))
	})

	It("keeps trailing text without a terminator as the final sentence", func() {
		sentences := chunker.SplitSentences("First part. And a trailing fragment")
		Expect(sentences).To(HaveLen(2))
		Expect(sentences[1]).To(Equal("And a trailing fragment"))
	})
})
