package docchat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"pdfchat/src/log"
	"pdfchat/src/pdfutil"
)

const embedBatchSize = 64

// Ingestor runs the parse, clean, chunk, embed, index pipeline for a
// single document against a vector-store collection.
type Ingestor struct {
	chunker  *Chunker
	embedder Embedder
	index    VectorIndex
}

// NewIngestor creates an Ingestor
func NewIngestor(chunker *Chunker, embedder Embedder, index VectorIndex) *Ingestor {
	return &Ingestor{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
	}
}

// IngestFile processes one PDF and writes its chunks to the collection
func (ing *Ingestor) IngestFile(ctx context.Context, collection string, file UploadFile) (*DocumentInfo, error) {
	pages, err := pdfutil.ExtractPages(file.Data)
	if err != nil {
		return nil, err
	}

	chunks, err := ing.chunkPages(file.Name, pages)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document contains no indexable text")
	}

	if err := ing.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	if err := ing.index.AddChunks(ctx, collection, chunks); err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}

	return &DocumentInfo{
		Filename:  file.Name,
		Pages:     len(pages),
		Chunks:    len(chunks),
		IndexedAt: time.Now().UTC(),
	}, nil
}

// chunkPages cleans each page and splits it into chunks. Chunk IDs follow
// {filename}_page{page}_chunk{n} with 1-based counters; pages that clean
// to empty are skipped.
func (ing *Ingestor) chunkPages(filename string, pages []pdfutil.Page) ([]IndexedChunk, error) {
	var chunks []IndexedChunk
	for _, page := range pages {
		cleaned := CleanText(page.Text)
		if cleaned == "" {
			continue
		}

		parts, err := ing.chunker.Split(cleaned)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk page %d: %w", page.Number, err)
		}

		for i, part := range parts {
			chunks = append(chunks, IndexedChunk{
				ID:          fmt.Sprintf("%s_page%d_chunk%d", filename, page.Number, i+1),
				Text:        part,
				Filename:    filename,
				Page:        page.Number,
				ChunkNumber: i + 1,
				TotalChunks: len(parts),
				HasTables:   page.HasTables,
				CharCount:   utf8.RuneCountInString(part),
				WordCount:   len(strings.Fields(part)),
			})
		}
	}
	return chunks, nil
}

// embedChunks fills in chunk embeddings in batches and verifies they share
// one dimensionality
func (ing *Ingestor) embedChunks(ctx context.Context, chunks []IndexedChunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		vectors, err := ing.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
		}

		for i, vec := range vectors {
			if len(vec) == 0 {
				return fmt.Errorf("empty embedding for chunk %s", chunks[start+i].ID)
			}
			chunks[start+i].Embedding = vec
		}
	}

	dims := len(chunks[0].Embedding)
	for _, c := range chunks {
		if len(c.Embedding) != dims {
			return fmt.Errorf("embedding dimension mismatch: chunk %s has %d, expected %d", c.ID, len(c.Embedding), dims)
		}
	}

	return nil
}

type ingestService struct {
	mgr      *Manager
	ingestor *Ingestor
	recorder Recorder
}

// NewIngestService creates the session-scoped ingestion service. recorder
// may be nil when archiving is disabled.
func NewIngestService(mgr *Manager, ingestor *Ingestor, recorder Recorder) IngestService {
	return &ingestService{
		mgr:      mgr,
		ingestor: ingestor,
		recorder: recorder,
	}
}

func (s *ingestService) IngestFiles(ctx context.Context, sessionID string, files []UploadFile) (*IngestReport, error) {
	if len(files) == 0 {
		return nil, ErrNoFilesUploaded
	}

	var report *IngestReport
	err := s.mgr.withSession(sessionID, func(sess *session) error {
		report = s.ingestBatch(ctx, sess, files)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (s *ingestService) ingestBatch(ctx context.Context, sess *session, files []UploadFile) *IngestReport {
	report := &IngestReport{}
	collection := sessionCollection(sess.id)

	var processed []string
	for _, file := range files {
		info, err := s.ingestor.IngestFile(ctx, collection, file)
		if err != nil {
			log.Error(err, "failed to ingest file", "session_id", sess.id, "filename", file.Name)
			report.Files = append(report.Files, FileResult{Filename: file.Name, Error: err.Error()})
			continue
		}

		sess.documents = append(sess.documents, *info)
		processed = append(processed, file.Name)
		report.Files = append(report.Files, FileResult{Filename: file.Name, Pages: info.Pages, Chunks: info.Chunks})
		log.Info("indexed document", "session_id", sess.id, "filename", file.Name, "pages", info.Pages, "chunks", info.Chunks)

		if s.recorder != nil {
			if err := s.recorder.RecordDocument(context.WithoutCancel(ctx), sess.id, file, *info); err != nil {
				log.Error(err, "failed to record document", "session_id", sess.id, "filename", file.Name)
			}
		}
	}

	report.Status = UploadStatus(processed)
	return report
}

// UploadStatus formats the user-facing status line for an upload batch
func UploadStatus(processed []string) string {
	if len(processed) == 0 {
		return "❌ Failed to process the uploaded files. Please check the file format."
	}
	return fmt.Sprintf("✅ Successfully processed and indexed: %s. The documents are now available for questions!", strings.Join(processed, ", "))
}
