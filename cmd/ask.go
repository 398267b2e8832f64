package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pdfchat/src/core/docchat"
	"pdfchat/src/infrastructure/integrations/groq"
	"pdfchat/src/infrastructure/integrations/ollama"
	"pdfchat/src/storage/chromemdb"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the local library",
	Long: `The ask command embeds the question, retrieves the most relevant chunks
from the persistent library and streams the model answer to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	settingDefaultConfig()
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := strings.Join(args, " ")

	apiKey := viper.GetString("groq.api_key")
	if apiKey == "" {
		return fmt.Errorf("GROQ_API_KEY is not set")
	}

	groqClient := groq.NewClient(groq.Config{
		BaseURL:     viper.GetString("groq.url"),
		APIKey:      apiKey,
		Model:       viper.GetString("groq.model"),
		Temperature: viper.GetFloat64("groq.temperature"),
		TopP:        viper.GetFloat64("groq.top_p"),
	}, nil)

	embedder, err := ollama.NewClient(viper.GetString("ollama.url"), viper.GetString("embedding.model"))
	if err != nil {
		return fmt.Errorf("failed to create ollama client: %w", err)
	}

	store, err := chromemdb.NewPersistentStore(viper.GetString("library.path"))
	if err != nil {
		return err
	}

	searcher := docchat.NewSearcher(embedder, store)
	chunks, err := searcher.QueryCollection(ctx, libraryCollection, question, viper.GetInt("retrieval.top_k"))
	if err != nil {
		return fmt.Errorf("failed to search library: %v", err)
	}

	messages := docchat.AssembleMessages(nil, question, chunks)
	if _, err := groqClient.StreamChat(ctx, messages, func(delta string) error {
		fmt.Print(delta)
		return nil
	}); err != nil {
		return err
	}
	fmt.Println()

	if len(chunks) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		fmt.Println("-------------------")
		for _, chunk := range chunks {
			fmt.Printf("%s, page %d (score %.3f)\n", chunk.Filename, chunk.Page, chunk.Score)
		}
		fmt.Println("-------------------")
	}

	return nil
}
