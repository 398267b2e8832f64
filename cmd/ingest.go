package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pdfchat/src/core/docchat"
	"pdfchat/src/fsutil"
	"pdfchat/src/infrastructure/integrations/ollama"
	"pdfchat/src/storage/chromemdb"
)

// libraryCollection is the shared collection used by the ingest and ask
// commands, as opposed to the per-session collections of the server.
const libraryCollection = "library"

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [path ...]",
	Short: "Index PDF files into the local library",
	Long: `The ingest command extracts, chunks and embeds PDF files and stores them
in the persistent library where the ask command can query them. Each path
may be a PDF file or a directory that is searched recursively.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	settingDefaultConfig()
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := chromemdb.NewPersistentStore(viper.GetString("library.path"))
	if err != nil {
		return err
	}

	embedder, err := ollama.NewClient(viper.GetString("ollama.url"), viper.GetString("embedding.model"))
	if err != nil {
		return fmt.Errorf("failed to create ollama client: %w", err)
	}

	chunker := docchat.NewChunker(viper.GetInt("chunk.size"), viper.GetInt("chunk.overlap"))
	ingestor := docchat.NewIngestor(chunker, embedder, store)

	// Collect PDF paths from the arguments
	fileStore := fsutil.NewLocalFileStore()
	var files []string
	for _, arg := range args {
		found, err := fileStore.ListFilesByExt(arg, ".pdf")
		if err != nil {
			return fmt.Errorf("failed to list %s: %v", arg, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files found")
	}

	bar := progressbar.Default(int64(len(files)))

	var processed []string
	for _, path := range files {
		data, err := fileStore.ReadFile(path)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", path, err)
			bar.Add(1)
			continue
		}

		info, err := ingestor.IngestFile(ctx, libraryCollection, docchat.UploadFile{
			Name: filepath.Base(path),
			Data: data,
		})
		if err != nil {
			fmt.Printf("Error processing %s: %v\n", path, err)
			bar.Add(1)
			continue
		}

		fmt.Printf("%s: %d pages, %d chunks\n", info.Filename, info.Pages, info.Chunks)
		processed = append(processed, info.Filename)
		bar.Add(1)
	}

	fmt.Println(docchat.UploadStatus(processed))
	return nil
}
