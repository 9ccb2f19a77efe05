package memory_test

import (
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novelforge/continuity/pkg/memory"
)

func TestMemory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Memory Suite")
}

var _ = Describe("ShortTermMemory", func() {
	It("returns nothing for an unknown project", func() {
		s := memory.NewShortTermMemory(10)
		Expect(s.Get("ghost", 0)).To(BeNil())
	})

	It("returns entries oldest first", func() {
		s := memory.NewShortTermMemory(10)
		s.Add("p", memory.Entry{Content: "first"})
		s.Add("p", memory.Entry{Content: "second"})
		s.Add("p", memory.Entry{Content: "third"})

		window := s.Get("p", 0)
		Expect(window).To(HaveLen(3))
		Expect(window[0].Content).To(Equal("first"))
		Expect(window[2].Content).To(Equal("third"))
	})

	It("evicts the oldest entries past capacity", func() {
		s := memory.NewShortTermMemory(10)
		for i := 1; i <= 15; i++ {
			s.Add("p", memory.Entry{Content: fmt.Sprintf("e%d", i)})
		}

		window := s.Get("p", 0)
		Expect(window).To(HaveLen(10))
		Expect(window[0].Content).To(Equal("e6"))
		Expect(window[9].Content).To(Equal("e15"))
	})

	It("limits to the most recent entries when asked", func() {
		s := memory.NewShortTermMemory(10)
		s.Add("p", memory.Entry{Content: "first"})
		s.Add("p", memory.Entry{Content: "second"})
		s.Add("p", memory.Entry{Content: "third"})

		window := s.Get("p", 2)
		Expect(window).To(HaveLen(2))
		Expect(window[0].Content).To(Equal("second"))
		Expect(window[1].Content).To(Equal("third"))

		Expect(s.Get("p", 5)).To(HaveLen(3))
	})

	It("keeps projects isolated", func() {
		s := memory.NewShortTermMemory(10)
		s.Add("a", memory.Entry{Content: "for a"})
		s.Add("b", memory.Entry{Content: "for b"})

		Expect(s.Get("a", 0)).To(HaveLen(1))
		Expect(s.Get("a", 0)[0].Content).To(Equal("for a"))
		Expect(s.Get("b", 0)[0].Content).To(Equal("for b"))
	})

	It("clears a single project's window", func() {
		s := memory.NewShortTermMemory(10)
		s.Add("a", memory.Entry{Content: "keep"})
		s.Add("b", memory.Entry{Content: "drop"})

		s.Clear("b")
		Expect(s.Get("b", 0)).To(BeNil())
		Expect(s.Get("a", 0)).To(HaveLen(1))
	})

	It("returns a copy that does not alias the window", func() {
		s := memory.NewShortTermMemory(10)
		s.Add("p", memory.Entry{Content: "original"})

		window := s.Get("p", 0)
		window[0].Content = "mutated"

		Expect(s.Get("p", 0)[0].Content).To(Equal("original"))
	})

	It("falls back to the default capacity", func() {
		s := memory.NewShortTermMemory(0)
		for i := range 20 {
			s.Add("p", memory.Entry{Content: fmt.Sprintf("e%d", i)})
		}
		Expect(s.Get("p", 0)).To(HaveLen(memory.DefaultShortTermCapacity))
	})
})
