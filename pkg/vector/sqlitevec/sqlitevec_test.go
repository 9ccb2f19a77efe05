package sqlitevec_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/vector"
	"github.com/novelforge/continuity/pkg/vector/sqlitevec"
)

func TestSQLiteVec(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLiteVec Suite")
}

var _ = Describe("SQLiteVecDriver", func() {
	var logger *zap.Logger

	BeforeEach(func() {
		logger = zap.NewNop()
	})

	Describe("NewSQLiteVecDriver", func() {
		It("should return an error when DBPath is empty", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{DBPath: ""}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database path is required"))
		})

		It("should create a driver with an in-memory database", func() {
			driver, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
			Expect(driver.Close()).To(Succeed())
		})

		It("should error when dimension not specified", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath: ":memory:",
			}, logger)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("with an in-memory driver", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should do nothing when given empty docs", func() {
			Expect(driver.Add(context.Background(), []vector.Document{})).To(Succeed())
		})

		It("should add and query a document", func() {
			docs := []vector.Document{
				{
					ID:        "doc-1",
					ProjectID: "proj-1",
					Embedding: []float32{0.1, 0.2, 0.3, 0.4},
				},
			}
			Expect(driver.Add(context.Background(), docs)).To(Succeed())

			results, err := driver.Query(context.Background(), "proj-1", []float32{0.1, 0.2, 0.3, 0.4}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("doc-1"))
			Expect(results[0].Score).To(BeNumerically(">", 0.9))
		})

		It("should update a document added twice with the same ID", func() {
			Expect(driver.Add(context.Background(), []vector.Document{
				{ID: "doc-1", ProjectID: "proj-1", Embedding: []float32{1, 0, 0, 0}},
			})).To(Succeed())
			Expect(driver.Add(context.Background(), []vector.Document{
				{ID: "doc-1", ProjectID: "proj-1", Embedding: []float32{0, 1, 0, 0}},
			})).To(Succeed())

			results, err := driver.Query(context.Background(), "proj-1", []float32{0, 1, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Score).To(BeNumerically(">", 0.9))
		})

		It("should not leak documents across projects", func() {
			Expect(driver.Add(context.Background(), []vector.Document{
				{ID: "doc-a", ProjectID: "proj-a", Embedding: []float32{1, 0, 0, 0}},
				{ID: "doc-b", ProjectID: "proj-b", Embedding: []float32{1, 0, 0, 0}},
			})).To(Succeed())

			results, err := driver.Query(context.Background(), "proj-a", []float32{1, 0, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("doc-a"))
		})

		It("should rank closer documents higher", func() {
			Expect(driver.Add(context.Background(), []vector.Document{
				{ID: "near", ProjectID: "p", Embedding: []float32{1, 0, 0, 0}},
				{ID: "far", ProjectID: "p", Embedding: []float32{0, 0, 0, 1}},
			})).To(Succeed())

			results, err := driver.Query(context.Background(), "p", []float32{0.9, 0.1, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("near"))
			Expect(results[0].Score).To(BeNumerically(">", results[1].Score))
		})

		It("should delete documents by ID", func() {
			Expect(driver.Add(context.Background(), []vector.Document{
				{ID: "doc-1", ProjectID: "p", Embedding: []float32{1, 0, 0, 0}},
			})).To(Succeed())
			Expect(driver.Delete(context.Background(), []string{"doc-1"})).To(Succeed())

			results, err := driver.Query(context.Background(), "p", []float32{1, 0, 0, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})
	})
})
