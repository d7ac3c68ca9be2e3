package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowflow/internal/llm"
	"github.com/abhisek/knowflow/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the LLM provider settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved provider settings (API key masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		c := settings.New(st.SettingsRepo(), cfg.LLMDefaults(), nil).Load(cmd.Context()).Masked()
		printConfig(c)
		if err := c.Ready(); err != nil {
			fmt.Println()
			fmt.Println("Not ready:", err)
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change provider settings",
	Example: `  knowflow settings set --provider ollama --model llama3:8b
  knowflow settings set --provider openai --api-key sk-... --temperature 0.4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		cs := settings.New(st.SettingsRepo(), cfg.LLMDefaults(), nil)
		c := cs.Load(cmd.Context())

		flags := cmd.Flags()
		if flags.Changed("provider") {
			v, _ := flags.GetString("provider")
			kind, err := llm.ParseProviderKind(v)
			if err != nil {
				return err
			}
			c = c.WithProvider(kind)
		}
		if flags.Changed("model") {
			c.Model, _ = flags.GetString("model")
		}
		if flags.Changed("base-url") {
			c.BaseURL, _ = flags.GetString("base-url")
		}
		if flags.Changed("api-key") {
			c.APIKey, _ = flags.GetString("api-key")
		}
		if flags.Changed("temperature") {
			c.Temperature, _ = flags.GetFloat64("temperature")
		}

		if err := cs.Save(cmd.Context(), c); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		printConfig(c.Masked())
		return nil
	},
}

func printConfig(c llm.Config) {
	baseURL := c.EffectiveBaseURL()
	if baseURL == "" {
		baseURL = "(native client)"
	}
	key := c.APIKey
	if key == "" {
		key = "(none)"
	}
	fmt.Printf("Provider:     %s\n", c.Provider.DisplayName())
	fmt.Printf("Model:        %s\n", c.Model)
	fmt.Printf("Base URL:     %s\n", baseURL)
	fmt.Printf("API key:      %s\n", key)
	fmt.Printf("Temperature:  %.1f\n", c.Temperature)
}

func init() {
	settingsSetCmd.Flags().String("provider", "", "gemini, openai, deepseek, ollama or lmstudio")
	settingsSetCmd.Flags().String("model", "", "Model name")
	settingsSetCmd.Flags().String("base-url", "", "OpenAI-compatible endpoint")
	settingsSetCmd.Flags().String("api-key", "", "API key")
	settingsSetCmd.Flags().Float64("temperature", llm.DefaultTemperature, "Sampling temperature (0.0-2.0)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
