package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AI2HU/promptpulse/internal/services"
)

// validateSelection validates comma-separated selection input
func validateSelection(input string, maxCount int) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("selection is required")
	}

	if strings.ToLower(input) == "all" {
		var all []int
		for i := 1; i <= maxCount; i++ {
			all = append(all, i)
		}
		return all, nil
	}

	var selections []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		num, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid selection: %s (must be numbers 1-%d or 'all')", part, maxCount)
		}
		if num < 1 || num > maxCount {
			return nil, fmt.Errorf("invalid selection: %d (must be between 1 and %d)", num, maxCount)
		}
		if !seen[num] {
			seen[num] = true
			selections = append(selections, num)
		}
	}

	return selections, nil
}

// validateLanguageCode validates language code input
func validateLanguageCode(input string) (string, error) {
	input = strings.ToUpper(strings.TrimSpace(input))
	if err := services.ValidateLanguageCode(input); err != nil {
		return "", err
	}
	return input, nil
}

// validateCronExpression checks a standard 5-field cron expression
func validateCronExpression(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("cron expression is required")
	}

	if len(strings.Fields(input)) != 5 {
		return "", fmt.Errorf("invalid cron expression: %s (must have 5 parts)", input)
	}
	if _, err := cron.ParseStandard(input); err != nil {
		return "", fmt.Errorf("invalid cron expression: %s (%v)", input, err)
	}

	return input, nil
}

// validateAPIKey accepts a key or a ${ENV_VAR} reference
func validateAPIKey(input string, provider string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("API key is required for %s", provider)
	}
	if strings.HasPrefix(input, "${") && strings.HasSuffix(input, "}") {
		return input, nil
	}
	if len(input) < 10 {
		return "", fmt.Errorf("API key seems too short")
	}
	return input, nil
}

// validateBaseURL validates base URL input, defaulting to defaultURL
func validateBaseURL(input, defaultURL string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultURL, nil
	}
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return "", fmt.Errorf("base URL must start with http:// or https://")
	}
	return strings.TrimRight(input, "/"), nil
}

// validateNumber validates numeric input within a range
func validateNumber(input string, min, max int) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return min, nil
	}

	num, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s (enter a positive integer)", input)
	}

	if num < min || num > max {
		return 0, fmt.Errorf("number must be between %d and %d, got: %d", min, max, num)
	}

	return num, nil
}

// maskSensitiveData masks sensitive data for display
func maskSensitiveData(data string) string {
	if data == "" {
		return "(not set)"
	}
	if strings.HasPrefix(data, "${") {
		return data
	}
	if len(data) <= 8 {
		return "***"
	}
	return data[:4] + "..." + data[len(data)-4:]
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
