package memory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/memory"
	testutils "github.com/novelforge/continuity/pkg/utils/test"
	"github.com/novelforge/continuity/pkg/vector"
)

var _ = Describe("LongTermMemory", func() {
	var (
		ctx      context.Context
		store    *testutils.MockStore
		embedder *testutils.MockEmbedder
		vectors  *testutils.MockVectorDriver
		ltm      *memory.LongTermMemory
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockStore()
		embedder = testutils.NewMockEmbedder()
		vectors = testutils.NewMockVectorDriver()
		ltm = memory.NewLongTermMemory(store, embedder, vectors, zap.NewNop())
	})

	Describe("Add", func() {
		It("assigns an ID and timestamp, persists, and indexes", func() {
			e, err := ltm.Add(ctx, memory.Entry{
				ProjectID: "p",
				Type:      memory.EntryTypeInput,
				Content:   "the hero crossed the river",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.ID).NotTo(BeEmpty())
			Expect(e.CreatedAt).NotTo(BeZero())

			rec, err := store.GetMemoryEntry(ctx, e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Content).To(Equal("the hero crossed the river"))

			Expect(vectors.Documents).To(HaveLen(1))
			Expect(vectors.Documents[0].ID).To(Equal(e.ID))
			Expect(vectors.Documents[0].ProjectID).To(Equal("p"))
		})

		It("stores the entry even when embedding fails", func() {
			embedder.FailAlways = true

			e, err := ltm.Add(ctx, memory.Entry{
				ProjectID: "p",
				Type:      memory.EntryTypeSummary,
				Content:   "chapter one summary",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = store.GetMemoryEntry(ctx, e.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(vectors.Documents).To(BeEmpty())
		})

		It("fails when the store rejects the entry", func() {
			store.InsertErr = context.DeadlineExceeded

			_, err := ltm.Add(ctx, memory.Entry{ProjectID: "p", Content: "x"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Get", func() {
		It("returns entries newest first with a type filter", func() {
			base := time.Now().UTC()
			for i, spec := range []struct {
				id, content string
				entryType   memory.EntryType
			}{
				{"a", "old input", memory.EntryTypeInput},
				{"b", "summary", memory.EntryTypeSummary},
				{"c", "new input", memory.EntryTypeInput},
			} {
				_, err := ltm.Add(ctx, memory.Entry{
					ID:        spec.id,
					ProjectID: "p",
					Type:      spec.entryType,
					Content:   spec.content,
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				})
				Expect(err).NotTo(HaveOccurred())
			}

			all, err := ltm.Get(ctx, "p", "", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].ID).To(Equal("c"))

			inputs, err := ltm.Get(ctx, "p", memory.EntryTypeInput, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(inputs).To(HaveLen(2))
		})
	})

	Describe("Search", func() {
		addAt := func(id, content string, at time.Time) {
			_, err := ltm.Add(ctx, memory.Entry{
				ID: id, ProjectID: "p", Type: memory.EntryTypeInput,
				Content: content, CreatedAt: at,
			})
			Expect(err).NotTo(HaveOccurred())
		}

		It("ranks results by score, then recency", func() {
			now := time.Now().UTC()
			addAt("low-old", "a distant memory", now.Add(-2*time.Hour))
			addAt("high", "the exact scene", now.Add(-time.Hour))
			addAt("low-new", "another distant memory", now)

			vectors.Results = []vector.QueryResult{
				{Document: vector.Document{ID: "low-old", ProjectID: "p"}, Score: 0.4},
				{Document: vector.Document{ID: "high", ProjectID: "p"}, Score: 0.9},
				{Document: vector.Document{ID: "low-new", ProjectID: "p"}, Score: 0.4},
			}

			results, err := ltm.Search(ctx, "p", "the scene", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].ID).To(Equal("high"))
			Expect(results[1].ID).To(Equal("low-new"))
			Expect(results[2].ID).To(Equal("low-old"))
		})

		It("returns empty when the embedder is unavailable", func() {
			addAt("a", "content", time.Now().UTC())
			embedder.FailAlways = true

			results, err := ltm.Search(ctx, "p", "anything", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("skips vector hits whose entries are gone from the store", func() {
			addAt("kept", "still here", time.Now().UTC())
			vectors.Results = []vector.QueryResult{
				{Document: vector.Document{ID: "kept", ProjectID: "p"}, Score: 0.8},
				{Document: vector.Document{ID: "orphan", ProjectID: "p"}, Score: 0.9},
			}

			results, err := ltm.Search(ctx, "p", "here", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("kept"))
		})
	})
})
