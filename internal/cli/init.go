package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AI2HU/promptpulse/internal/backend"
	"github.com/AI2HU/promptpulse/internal/config"
	"github.com/AI2HU/promptpulse/internal/models"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize promptpulse configuration",
	Long:  `Interactive wizard to set up the evaluation backend, the tracked brand, the LLM panel and an optional schedule.`,
	RunE:  runInit,
}

// panelChoice is a panel member the wizard can add
type panelChoice struct {
	label    string
	provider string
	model    string
	envKey   string
}

var panelChoices = []panelChoice{
	{"CHATGPT", "openai", "gpt-4o-mini", "OPENAI_API_KEY"},
	{"CLAUDE", "anthropic", "claude-3-5-sonnet-20241022", "ANTHROPIC_API_KEY"},
	{"GEMINI", "google", "gemini-1.5-flash", "GOOGLE_API_KEY"},
	{"PERPLEXITY", "perplexity", "sonar", "PPLX_API_KEY"},
	{"OLLAMA", "ollama", "llama3", ""},
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("🚀 Welcome to PromptPulse Setup")
	fmt.Println("===============================")
	fmt.Println()

	configPath := cfgFile
	if configPath == "" {
		configPath = config.GetConfigPath()
	}
	if config.Exists(configPath) {
		fmt.Printf("Configuration file already exists at: %s\n", configPath)
		confirmed, err := promptYesNo(reader, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	// Evaluation backend
	fmt.Println("\n🔌 Evaluation Backend")
	fmt.Println("---------------------")

	baseURL, err := promptWithRetry(reader, fmt.Sprintf("Backend URL [%s]: ", config.DefaultBaseURL), func(input string) (string, error) {
		return validateBaseURL(input, config.DefaultBaseURL)
	})
	if err != nil {
		return err
	}
	cfg.Backend.BaseURL = baseURL

	fmt.Println("\n🔎 Testing backend connection...")
	if backend.New(cfg.Backend).Ping(context.Background()) {
		fmt.Println("✅ Backend is reachable!")
	} else {
		fmt.Println("⚠️  Backend is not reachable yet. Start it with 'promptpulse serve' or check the URL.")
	}

	// Brand
	fmt.Println("\n🏷️  Brand")
	fmt.Println("--------")

	brand, err := promptOptional(reader, fmt.Sprintf("Brand to track [%s]: ", config.DefaultBrand), config.DefaultBrand)
	if err != nil {
		return err
	}
	cfg.Backend.DefaultBrand = brand

	competitors, err := promptList(reader, fmt.Sprintf("Competitors, comma separated [%s]: ", strings.Join(config.DefaultCompetitors, ",")), config.DefaultCompetitors)
	if err != nil {
		return err
	}
	cfg.Backend.DefaultCompetitors = competitors

	// Panel
	fmt.Println("\n🤖 LLM Panel (used by 'promptpulse serve')")
	fmt.Println("-----------------------------------------")
	for i, choice := range panelChoices {
		fmt.Printf("  %s%d.%s %s (%s, %s)\n", CountStyle, i+1, Reset, FormatValue(choice.label), choice.provider, FormatMeta(choice.model))
	}

	selectionInput, err := promptOptional(reader, "Select providers (e.g. 1,2,3 or 'all') [1,2,3]: ", "1,2,3")
	if err != nil {
		return err
	}
	selections, err := validateSelection(selectionInput, len(panelChoices))
	if err != nil {
		return err
	}

	cfg.Panel = nil
	for _, n := range selections {
		member, err := promptPanelMember(reader, panelChoices[n-1])
		if err != nil {
			return err
		}
		cfg.Panel = append(cfg.Panel, member)
	}

	// Schedule
	fmt.Println("\n📅 Schedule")
	fmt.Println("-----------")
	addSchedule, err := promptYesNo(reader, "Add a daily analysis schedule? (y/N): ")
	if err != nil {
		return err
	}
	if addSchedule {
		schedule, err := promptSchedule(reader, brand)
		if err != nil {
			return err
		}
		cfg.Schedules = append(cfg.Schedules, schedule)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Println("\n💾 Saving configuration...")
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("✅ Configuration saved to: %s\n", configPath)

	fmt.Println("\n📋 Configuration Summary")
	fmt.Println("========================")
	fmt.Printf("Backend: %s\n", cfg.Backend.BaseURL)
	fmt.Printf("Brand: %s\n", cfg.Backend.DefaultBrand)
	fmt.Printf("Competitors: %s\n", strings.Join(cfg.Backend.DefaultCompetitors, ", "))
	for _, member := range cfg.Panel {
		fmt.Printf("Panel: %s (%s/%s) key %s\n", member.Name, member.Provider, member.Model, maskSensitiveData(member.APIKey))
	}
	fmt.Printf("Schedules: %d\n", len(cfg.Schedules))
	fmt.Println()
	fmt.Println("🎉 Setup complete!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Start the evaluation backend: promptpulse serve")
	fmt.Println("  2. Test a prompt: promptpulse prompt test \"best EV charging network\"")
	fmt.Println("  3. Run an analysis: promptpulse analyze --file prompts.txt")
	fmt.Println("  4. Start the scheduler: promptpulse scheduler start")

	return nil
}

func promptPanelMember(reader *bufio.Reader, choice panelChoice) (models.LLMConfig, error) {
	member := models.LLMConfig{
		Name:     choice.label,
		Provider: choice.provider,
		Model:    choice.model,
		Enabled:  true,
	}

	fmt.Printf("\n%s%s%s\n", HeaderStyle, choice.label, Reset)

	model, err := promptOptional(reader, fmt.Sprintf("Model [%s]: ", choice.model), choice.model)
	if err != nil {
		return member, err
	}
	member.Model = model

	if choice.envKey == "" {
		baseURL, err := promptWithRetry(reader, "Ollama URL [http://localhost:11434]: ", func(input string) (string, error) {
			return validateBaseURL(input, "http://localhost:11434")
		})
		if err != nil {
			return member, err
		}
		member.BaseURL = baseURL
		return member, nil
	}

	envRef := "${" + choice.envKey + "}"
	apiKey, err := promptWithRetry(reader, fmt.Sprintf("API key, or Enter to read %s at startup: ", choice.envKey), func(input string) (string, error) {
		if input == "" {
			return envRef, nil
		}
		return validateAPIKey(input, choice.provider)
	})
	if err != nil {
		return member, err
	}
	member.APIKey = apiKey
	return member, nil
}

func promptSchedule(reader *bufio.Reader, brand string) (models.Schedule, error) {
	schedule := models.Schedule{Name: "daily", BrandName: brand, Enabled: true}

	cronExpr, err := promptWithRetry(reader, "Cron expression [0 9 * * *]: ", func(input string) (string, error) {
		if input == "" {
			input = "0 9 * * *"
		}
		return validateCronExpression(input)
	})
	if err != nil {
		return schedule, err
	}
	schedule.CronExpr = cronExpr

	prompts, err := promptWithRetry(reader, "Prompts to watch, separated by '|': ", func(input string) (string, error) {
		if strings.TrimSpace(input) == "" {
			return "", fmt.Errorf("at least one prompt is required")
		}
		return input, nil
	})
	if err != nil {
		return schedule, err
	}
	for _, p := range strings.Split(prompts, "|") {
		if p = strings.TrimSpace(p); p != "" {
			schedule.Prompts = append(schedule.Prompts, p)
		}
	}
	return schedule, nil
}
