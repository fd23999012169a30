package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AI2HU/promptpulse/internal/config"
	"github.com/AI2HU/promptpulse/internal/services"
)

var (
	promptBrand       string
	promptCompetitors []string
	promptJSON        bool

	generateTopic    string
	generateLanguage string
	generateCount    int
	generateWith     string
	generateOutput   string
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Test and discover prompts",
	Long:  `Test a single prompt against the evaluation backend, or generate new prompts with the LLM panel.`,
}

var promptTestCmd = &cobra.Command{
	Use:   "test [prompt]",
	Short: "Test one prompt across the provider panel",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptTest,
}

var promptGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate prompts about a topic using an LLM of the panel",
	Long: `Ask one LLM of the panel for questions people put to AI assistants about a
topic. Missing flags are asked interactively. Prompts already in --output are
not generated again and new ones are appended to it.`,
	RunE: runPromptGenerate,
}

func init() {
	promptCmd.AddCommand(promptTestCmd)
	promptCmd.AddCommand(promptGenerateCmd)

	promptTestCmd.Flags().StringVarP(&promptBrand, "brand", "b", "", "Brand to evaluate (default from config)")
	promptTestCmd.Flags().StringSliceVar(&promptCompetitors, "competitors", nil, "Competitors to compare against (default from config)")
	promptTestCmd.Flags().BoolVar(&promptJSON, "json", false, "Print the outcome as JSON")

	promptGenerateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "Topic of the prompts, e.g. 'electric cars'")
	promptGenerateCmd.Flags().StringVarP(&generateLanguage, "language", "l", "", "Language code, e.g. EN, FR")
	promptGenerateCmd.Flags().IntVarP(&generateCount, "count", "n", 0, "Number of prompts to generate (1-100)")
	promptGenerateCmd.Flags().StringVar(&generateWith, "llm", "", "Panel member generating the prompts (default: first enabled)")
	promptGenerateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Prompts file to deduplicate against and append to")
}

func runPromptTest(cmd *cobra.Command, args []string) error {
	outcome, err := newBackendClient().TestPrompt(context.Background(), args[0], promptBrand, promptCompetitors)
	if err != nil {
		return fmt.Errorf("failed to test prompt: %w", err)
	}

	if promptJSON {
		return printJSON(cmd.OutOrStdout(), outcome)
	}
	printOutcome(cmd.OutOrStdout(), outcome)
	return nil
}

func runPromptGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("%s🤖 Generate Prompts Using LLM%s\n", FormatHeader(""), Reset)
	fmt.Printf("%s==============================%s\n", DimStyle, Reset)

	registry, err := buildPanel()
	if err != nil {
		return err
	}
	if registry.Len() == 0 {
		fmt.Printf("%s❌ No LLM provider enabled in the panel.%s\n", ErrorStyle, Reset)
		fmt.Printf("Add one to the %s section of %s\n", FormatSecondary("panel"), FormatSecondary(cfgFile))
		return nil
	}

	languageCode, err := resolveLanguage(reader, generateLanguage)
	if err != nil {
		return err
	}
	languageName := services.GetLanguageName(languageCode)

	topic := generateTopic
	if topic == "" {
		topic, err = promptWithRetry(reader, fmt.Sprintf("\n%sDescribe what kind of prompts you need in %s (e.g., 'questions about electric cars'): %s", LabelStyle, FormatValue(languageName), Reset), func(input string) (string, error) {
			if input == "" {
				return "", fmt.Errorf("description is required")
			}
			return input, nil
		})
		if err != nil {
			return err
		}
	}

	count := generateCount
	if count == 0 {
		answer, err := promptWithRetry(reader, fmt.Sprintf("\n%sHow many prompts? (1-100) [1]: %s", LabelStyle, Reset), func(input string) (string, error) {
			n, err := validateNumber(input, 1, 100)
			return fmt.Sprint(n), err
		})
		if err != nil {
			return err
		}
		count, _ = validateNumber(answer, 1, 100)
	}

	var existing []string
	if generateOutput != "" && config.Exists(generateOutput) {
		existing, err = readPromptsFile(generateOutput)
		if err != nil {
			return err
		}
		fmt.Printf("Found %d existing prompts.\n", len(existing))
	}

	fmt.Printf("\n%s🔍 Generating prompts...%s\n", InfoStyle, Reset)

	generator := services.NewPromptGenerationService(registry)
	prompts, err := generator.GeneratePrompts(ctx, &services.GenerationConfig{
		Generator:       generateWith,
		LanguageCode:    languageCode,
		Topic:           topic,
		BrandName:       cfg.Backend.DefaultBrand,
		PromptCount:     count,
		ExistingPrompts: existing,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n%s✅ Generated %s prompt(s):%s\n", SuccessStyle, FormatCount(len(prompts)), Reset)
	for i, prompt := range prompts {
		fmt.Printf("  %s%d.%s %s\n", CountStyle, i+1, Reset, prompt)
	}

	if generateOutput != "" {
		if err := appendLines(generateOutput, prompts); err != nil {
			return err
		}
		fmt.Printf("\n%s💾 Appended to %s%s\n", InfoStyle, generateOutput, Reset)
	}
	return nil
}

func appendLines(path string, lines []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// resolveLanguage validates the --language value, or asks for one when it is empty
func resolveLanguage(reader *bufio.Reader, flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		return promptWithRetry(reader, fmt.Sprintf("\n%sEnter language code (e.g., FR, EN, IT, ES, DE, etc.): %s", LabelStyle, Reset), validateLanguageCode)
	}
	code, err := validateLanguageCode(flagValue)
	if err != nil {
		return "", fmt.Errorf("invalid --language: %w", err)
	}
	return code, nil
}
