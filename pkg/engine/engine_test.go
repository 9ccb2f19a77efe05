package engine_test

import (
	"context"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	cachememory "github.com/novelforge/continuity/pkg/cache/memory"
	"github.com/novelforge/continuity/pkg/engine"
	"github.com/novelforge/continuity/pkg/graph"
	"github.com/novelforge/continuity/pkg/memory"
	"github.com/novelforge/continuity/pkg/summarizer"
	"github.com/novelforge/continuity/pkg/tokens"
	testutils "github.com/novelforge/continuity/pkg/utils/test"
	"github.com/novelforge/continuity/pkg/vector"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine Suite")
}

var _ = Describe("Engine", func() {
	var (
		ctx        context.Context
		store      *testutils.MockStore
		embedder   *testutils.MockEmbedder
		vectors    *testutils.MockVectorDriver
		inferencer *testutils.MockInferencer
		publisher  *testutils.MockPublisher
		short      *memory.ShortTermMemory
		long       *memory.LongTermMemory
		kg         *graph.KnowledgeGraph
		e          *engine.Engine
		cfg        engine.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockStore()
		embedder = testutils.NewMockEmbedder()
		vectors = testutils.NewMockVectorDriver()
		inferencer = testutils.NewMockInferencer("a compact summary.")
		publisher = testutils.NewMockPublisher()

		logger := zap.NewNop()
		short = memory.NewShortTermMemory(10)
		long = memory.NewLongTermMemory(store, embedder, vectors, logger)
		kg = graph.NewKnowledgeGraph(store, graph.NewKeywordChecker(), logger)

		c := cachememory.NewCache()
		DeferCleanup(c.Close)
		sum := summarizer.NewSummarizer(inferencer, tokens.NewHeuristic(), c, summarizer.Config{}, logger)

		cfg = engine.Config{MaxContextUnits: 200, ReservedUnits: 20, SearchLimit: 5}
		e = engine.New(short, long, kg, sum, tokens.NewHeuristic(), publisher, cfg, logger)
	})

	Describe("AssembleContext", func() {
		It("returns the query unchanged when it exhausts the budget", func() {
			query := strings.Repeat("an enormous question ", 60)

			result, err := e.AssembleContext(ctx, "p", query, engine.DefaultAssembleOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(query))
		})

		It("returns the query alone for an empty project", func() {
			result, err := e.AssembleContext(ctx, "p", "what happens next?", engine.DefaultAssembleOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("what happens next?"))
		})

		It("orders blocks: recent, memories, graph, query", func() {
			short.Add("p", memory.Entry{Type: memory.EntryTypeInput, Content: "recently said"})

			entry, err := long.Add(ctx, memory.Entry{
				ProjectID: "p", Type: memory.EntryTypeSummary, Content: "Alice fought a dragon",
			})
			Expect(err).NotTo(HaveOccurred())
			vectors.Results = []vector.QueryResult{
				{Document: vector.Document{ID: entry.ID, ProjectID: "p"}, Score: 0.9},
			}

			_, err = kg.AddCharacter(ctx, "p", "Alice", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = kg.AddLocation(ctx, "p", "The Tower", nil)
			Expect(err).NotTo(HaveOccurred())
			ok, err := kg.AddRelation(ctx, "p", "character_1", "LIVES_IN", "location_1", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			result, err := e.AssembleContext(ctx, "p", "tell me about Alice", engine.DefaultAssembleOptions())
			Expect(err).NotTo(HaveOccurred())

			recent := strings.Index(result, "=== Recent Context ===")
			memories := strings.Index(result, "=== Relevant Memories ===")
			graphIdx := strings.Index(result, "=== Knowledge Graph ===")
			queryIdx := strings.LastIndex(result, "tell me about Alice")

			Expect(recent).To(BeNumerically(">=", 0))
			Expect(memories).To(BeNumerically(">", recent))
			Expect(graphIdx).To(BeNumerically(">", memories))
			Expect(queryIdx).To(BeNumerically(">", graphIdx))

			Expect(result).To(ContainSubstring("recently said"))
			Expect(result).To(ContainSubstring("Alice fought a dragon"))
			Expect(result).To(ContainSubstring("Alice -[LIVES_IN]-> The Tower"))
		})

		It("omits blocks that were not requested", func() {
			short.Add("p", memory.Entry{Type: memory.EntryTypeInput, Content: "recently said"})

			result, err := e.AssembleContext(ctx, "p", "question", engine.AssembleOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("question"))
		})

		It("summarizes long-term matches that exceed the budget", func() {
			entry, err := long.Add(ctx, memory.Entry{
				ProjectID: "p", Type: memory.EntryTypeSummary,
				Content: strings.Repeat("a very long memory of past events ", 40),
			})
			Expect(err).NotTo(HaveOccurred())
			vectors.Results = []vector.QueryResult{
				{Document: vector.Document{ID: entry.ID, ProjectID: "p"}, Score: 0.9},
			}

			result, err := e.AssembleContext(ctx, "p", "what happened?", engine.AssembleOptions{IncludeLongTerm: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(ContainSubstring("a compact summary."))
			Expect(len(inferencer.Calls)).To(BeNumerically(">", 0))
		})
	})

	Describe("RecordExchange", func() {
		It("writes both tiers, updates mentions, and publishes", func() {
			_, err := kg.AddCharacter(ctx, "p", "Alice", nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(e.RecordExchange(ctx, "p", "what does Alice do?", "Alice climbs the tower.")).To(Succeed())

			window := short.Get("p", 0)
			Expect(window).To(HaveLen(2))
			Expect(window[0].Content).To(Equal("what does Alice do?"))
			Expect(window[0].Type).To(Equal(memory.EntryTypeInput))
			Expect(window[0].Metadata).To(HaveKeyWithValue("role", "user"))
			Expect(window[1].Type).To(Equal(memory.EntryTypeOutput))
			Expect(window[1].Metadata).To(HaveKeyWithValue("role", "assistant"))

			inputs, err := long.Get(ctx, "p", memory.EntryTypeInput, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(inputs).To(HaveLen(1))
			outputs, err := long.Get(ctx, "p", memory.EntryTypeOutput, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(outputs).To(HaveLen(1))

			alice, ok, err := kg.GetEntity(ctx, "p", "character_1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(alice.Mentions).To(HaveLen(1))

			Expect(publisher.Events).To(HaveLen(1))
			Expect(publisher.Events[0].Source.ProjectID).To(Equal("p"))
			Expect(publisher.Events[0].Knowledge.MentionCount).To(Equal(1))
		})

		It("fails when persistence fails", func() {
			store.InsertErr = context.DeadlineExceeded
			Expect(e.RecordExchange(ctx, "p", "q", "r")).To(HaveOccurred())
			Expect(publisher.Events).To(BeEmpty())
		})
	})

	Describe("facade", func() {
		It("mirrors added characters into long-term memory", func() {
			entity, err := e.AddCharacter(ctx, "p", "Alice", "a brave knight", map[string]any{"trait": "brave"})
			Expect(err).NotTo(HaveOccurred())
			Expect(entity.ID).To(Equal("character_1"))

			entries, err := long.Get(ctx, "p", memory.EntryTypeCharacterState, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Content).To(Equal("Alice: a brave knight"))
			Expect(entries[0].Metadata).To(HaveKeyWithValue("entity_id", "character_1"))
		})

		It("mirrors locations and rules as worldbuilding entries", func() {
			_, err := e.AddLocation(ctx, "p", "The Tower", "a crumbling keep", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddRule(ctx, "p", "No Magic Indoors", "", nil)
			Expect(err).NotTo(HaveOccurred())

			entries, err := long.Get(ctx, "p", memory.EntryTypeWorldbuilding, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
		})

		It("stores chapter summaries with chapter metadata", func() {
			entry, err := e.AddChapterSummary(ctx, "p", 3, "The Duel", "Alice wins the duel.")
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Type).To(Equal(memory.EntryTypeSummary))
			Expect(entry.Metadata).To(HaveKeyWithValue("chapter", 3))
			Expect(entry.Metadata).To(HaveKeyWithValue("title", "The Duel"))
		})

		It("wires event participants through the graph", func() {
			_, err := e.AddCharacter(ctx, "p", "Alice", "", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddLocation(ctx, "p", "The Tower", "", nil)
			Expect(err).NotTo(HaveOccurred())

			event, err := e.AddEvent(ctx, "p", "The Duel", "a fierce duel", nil, []string{"Alice"}, "The Tower")
			Expect(err).NotTo(HaveOccurred())

			snap, err := e.GraphSnapshot(ctx, "p")
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Nodes).To(HaveLen(3))
			Expect(snap.Edges).To(HaveLen(2))
			Expect(event.ID).To(Equal("event_1"))

			entries, err := long.Get(ctx, "p", memory.EntryTypePlotPoint, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Metadata).To(HaveKeyWithValue("entity_id", "event_1"))
			Expect(entries[0].Metadata).To(HaveKeyWithValue("participants", []string{"Alice"}))
			Expect(entries[0].Metadata).To(HaveKeyWithValue("location", "The Tower"))
		})

		It("stores every mirrored entry under a schema entry type", func() {
			allowed := map[memory.EntryType]bool{
				memory.EntryTypeInput:          true,
				memory.EntryTypeOutput:         true,
				memory.EntryTypeSummary:        true,
				memory.EntryTypeEvent:          true,
				memory.EntryTypeCharacterState: true,
				memory.EntryTypePlotPoint:      true,
				memory.EntryTypeWorldbuilding:  true,
			}

			_, err := e.AddCharacter(ctx, "p", "Alice", "", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddLocation(ctx, "p", "The Tower", "", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddItem(ctx, "p", "The Amulet", "", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddRule(ctx, "p", "No Magic Indoors", "", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddEvent(ctx, "p", "The Duel", "", nil, []string{"Alice"}, "The Tower")
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddChapterSummary(ctx, "p", 1, "Opening", "It begins.")
			Expect(err).NotTo(HaveOccurred())
			Expect(e.RecordExchange(ctx, "p", "what now?", "Alice rests.")).To(Succeed())

			entries, err := long.Get(ctx, "p", "", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).NotTo(BeEmpty())
			for _, entry := range entries {
				Expect(allowed).To(HaveKey(entry.Type), "entry %s has type %q", entry.ID, entry.Type)
			}
		})

		It("searches long-term memory through the facade", func() {
			a, err := long.Add(ctx, memory.Entry{ProjectID: "p", Type: memory.EntryTypeInput, Content: "A is brave"})
			Expect(err).NotTo(HaveOccurred())
			b, err := long.Add(ctx, memory.Entry{ProjectID: "p", Type: memory.EntryTypeInput, Content: "B is a coward"})
			Expect(err).NotTo(HaveOccurred())

			vectors.Results = []vector.QueryResult{
				{Document: vector.Document{ID: a.ID, ProjectID: "p"}, Score: 0.9},
				{Document: vector.Document{ID: b.ID, ProjectID: "p"}, Score: 0.2},
			}

			results, err := e.SearchMemory(ctx, "p", "tell me about A", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].Content).To(Equal("A is brave"))
		})
	})
})
