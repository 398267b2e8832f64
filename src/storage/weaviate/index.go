package weaviate

import (
	"context"
	"strings"

	"github.com/weaviate/weaviate/entities/models"

	"pdfchat/src/core/docchat"
)

// Index stores chunk collections on a remote Weaviate instance. Each
// collection gets its own class, so dropping a session removes the class
// together with all of its objects.
type Index struct {
	sdk *SDK
}

func NewIndex(sdk *SDK) *Index {
	return &Index{sdk: sdk}
}

var chunkProperties = []*models.Property{
	{Name: "content", DataType: []string{"text"}},
	{Name: "filename", DataType: []string{"text"}},
	{Name: "page", DataType: []string{"int"}},
	{Name: "chunkId", DataType: []string{"text"}},
	{Name: "chunkNumber", DataType: []string{"int"}},
	{Name: "totalChunksForPage", DataType: []string{"int"}},
	{Name: "pageHasTables", DataType: []string{"boolean"}},
	{Name: "charCount", DataType: []string{"int"}},
	{Name: "wordCount", DataType: []string{"int"}},
}

func (i *Index) EnsureCollection(ctx context.Context, collection string) error {
	return i.sdk.EnsureClass(ctx, className(collection), chunkProperties)
}

func (i *Index) DeleteCollection(ctx context.Context, collection string) error {
	return i.sdk.DeleteClass(ctx, className(collection))
}

func (i *Index) AddChunks(ctx context.Context, collection string, chunks []docchat.IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]VectorObject, 0, len(chunks))
	for _, chunk := range chunks {
		objects = append(objects, VectorObject{
			Vector: chunk.Embedding,
			Properties: map[string]interface{}{
				"content":            chunk.Text,
				"filename":           chunk.Filename,
				"page":               chunk.Page,
				"chunkId":            chunk.ID,
				"chunkNumber":        chunk.ChunkNumber,
				"totalChunksForPage": chunk.TotalChunks,
				"pageHasTables":      chunk.HasTables,
				"charCount":          chunk.CharCount,
				"wordCount":          chunk.WordCount,
			},
		})
	}

	return i.sdk.BatchAddVectors(ctx, className(collection), objects)
}

func (i *Index) Query(ctx context.Context, collection string, embedding []float32, limit int) ([]docchat.RetrievedChunk, error) {
	results, err := i.sdk.QueryVectors(ctx, className(collection), embedding, QueryConfig{
		Fields: []string{"content", "filename", "page", "chunkId"},
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	chunks := make([]docchat.RetrievedChunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, docchat.RetrievedChunk{
			Content:  asString(res.Properties["content"]),
			Filename: asString(res.Properties["filename"]),
			Page:     asInt(res.Properties["page"]),
			ChunkID:  asString(res.Properties["chunkId"]),
			Score:    1 - res.Distance,
		})
	}
	return chunks, nil
}

func (i *Index) Count(ctx context.Context, collection string) (int, error) {
	return i.sdk.CountObjects(ctx, className(collection))
}

func (i *Index) Ping(ctx context.Context) error {
	return i.sdk.Ready(ctx)
}

// className converts a collection name into a valid Weaviate class name.
// Class names must start with an uppercase letter and may only contain
// letters, digits and underscores, so the dashes in session IDs are dropped.
func className(collection string) string {
	var b strings.Builder
	b.WriteString("Chunks_")
	for _, r := range collection {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}
