package sqlite_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novelforge/continuity/pkg/storage"
	"github.com/novelforge/continuity/pkg/storage/sqlite"
)

func TestSQLiteStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLite Storage Suite")
}

var _ = Describe("SQLiteDriver", func() {
	var (
		ctx    context.Context
		driver *sqlite.SQLiteDriver
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewSQLiteDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	entry := func(id, project, entryType, content string, at time.Time) storage.MemoryEntryRecord {
		return storage.MemoryEntryRecord{
			ID:        id,
			ProjectID: project,
			Type:      entryType,
			Content:   content,
			CreatedAt: at,
		}
	}

	Describe("memory entries", func() {
		It("round-trips an entry with metadata", func() {
			rec := storage.MemoryEntryRecord{
				ID:        "e1",
				ProjectID: "p1",
				Type:      "input",
				Content:   "the user asked about the map",
				Metadata:  map[string]any{"role": "user"},
				CreatedAt: time.Now().UTC(),
			}
			Expect(driver.InsertMemoryEntry(ctx, rec)).To(Succeed())

			got, err := driver.GetMemoryEntry(ctx, "e1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Content).To(Equal(rec.Content))
			Expect(got.Type).To(Equal("input"))
			Expect(got.Metadata).To(HaveKeyWithValue("role", "user"))
		})

		It("round-trips non-string metadata values", func() {
			rec := storage.MemoryEntryRecord{
				ID:        "e2",
				ProjectID: "p1",
				Type:      "summary",
				Content:   "chapter three summary",
				Metadata: map[string]any{
					"chapter":      3,
					"title":        "The Duel",
					"participants": []string{"Alice", "Bob"},
				},
				CreatedAt: time.Now().UTC(),
			}
			Expect(driver.InsertMemoryEntry(ctx, rec)).To(Succeed())

			got, err := driver.GetMemoryEntry(ctx, "e2")
			Expect(err).NotTo(HaveOccurred())
			// Numbers and arrays come back as their JSON decodings.
			Expect(got.Metadata).To(HaveKeyWithValue("chapter", float64(3)))
			Expect(got.Metadata).To(HaveKeyWithValue("title", "The Duel"))
			Expect(got.Metadata).To(HaveKeyWithValue("participants", []any{"Alice", "Bob"}))
		})

		It("returns ErrNotFound for a missing entry", func() {
			_, err := driver.GetMemoryEntry(ctx, "missing")
			Expect(err).To(MatchError(storage.ErrNotFound{ID: "missing"}))
		})

		It("fetches entries by IDs in the requested order", func() {
			now := time.Now().UTC()
			Expect(driver.InsertMemoryEntry(ctx, entry("a", "p", "summary", "A", now))).To(Succeed())
			Expect(driver.InsertMemoryEntry(ctx, entry("b", "p", "summary", "B", now))).To(Succeed())

			recs, err := driver.GetMemoryEntries(ctx, []string{"b", "missing", "a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(2))
			Expect(recs[0].ID).To(Equal("b"))
			Expect(recs[1].ID).To(Equal("a"))
		})

		It("lists a project's entries newest first with type filter", func() {
			base := time.Now().UTC()
			Expect(driver.InsertMemoryEntry(ctx, entry("old", "p", "input", "old", base.Add(-2*time.Hour)))).To(Succeed())
			Expect(driver.InsertMemoryEntry(ctx, entry("mid", "p", "summary", "mid", base.Add(-time.Hour)))).To(Succeed())
			Expect(driver.InsertMemoryEntry(ctx, entry("new", "p", "input", "new", base))).To(Succeed())
			Expect(driver.InsertMemoryEntry(ctx, entry("other", "q", "input", "other project", base))).To(Succeed())

			recs, err := driver.ListMemoryEntries(ctx, "p", "", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(3))
			Expect(recs[0].ID).To(Equal("new"))
			Expect(recs[2].ID).To(Equal("old"))

			inputs, err := driver.ListMemoryEntries(ctx, "p", "input", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(inputs).To(HaveLen(2))

			limited, err := driver.ListMemoryEntries(ctx, "p", "", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(limited).To(HaveLen(1))
			Expect(limited[0].ID).To(Equal("new"))
		})
	})

	Describe("graph docs", func() {
		It("returns ErrNotFound before any save", func() {
			_, err := driver.LoadGraphDoc(ctx, "p")
			Expect(err).To(MatchError(storage.ErrNotFound{ID: "p"}))
		})

		It("saves and reloads a document", func() {
			doc := []byte(`{"entities":{}}`)
			Expect(driver.SaveGraphDoc(ctx, "p", doc)).To(Succeed())

			got, err := driver.LoadGraphDoc(ctx, "p")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(doc))
		})

		It("replaces the document on re-save", func() {
			Expect(driver.SaveGraphDoc(ctx, "p", []byte("v1"))).To(Succeed())
			Expect(driver.SaveGraphDoc(ctx, "p", []byte("v2"))).To(Succeed())

			got, err := driver.LoadGraphDoc(ctx, "p")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal([]byte("v2")))
		})
	})
})
