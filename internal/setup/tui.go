package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/portsure/config"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes the resulting
// engine configuration to config.gen.yaml.
func RunTUI() error {
	var (
		listen     string
		walDir     string
		classesStr string
		tiersStr   string
		confirm    bool
	)

	// defaults mirror the stock deployment
	listen = ":8087"
	walDir = "./wal/evaluations"
	classesStr = "Equity,Bond,Derivative"
	tiersStr = "High:critical:75, Medium:elevated:50, Low:normal:0"

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PORTSURE CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set up your risk scoring engine.\n"))

	fmt.Println(stepStyle.Render("STEP 1: SERVICE"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Value(&listen),
			huh.NewInput().
				Title("Evaluation journal directory").
				Value(&walDir),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PORTSURE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: ASSET CLASSES"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Asset classes").
				Description("Comma-separated, order fixes breach reporting order").
				Value(&classesStr).
				Validate(func(s string) error {
					if len(splitList(s)) == 0 {
						return fmt.Errorf("at least one asset class is required")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	classes := splitList(classesStr)
	limits := make(map[string]string, len(classes))
	weights := make(map[string]string, len(classes))

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PORTSURE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: LIMITS AND WEIGHTS"))
	fields := make([]huh.Field, 0, len(classes)*2)
	limitValues := make([]string, len(classes))
	weightValues := make([]string, len(classes))
	for i, class := range classes {
		limitValues[i] = "100"
		weightValues[i] = "1"
		fields = append(fields,
			huh.NewInput().
				Title(fmt.Sprintf("%s exposure limit %%", class)).
				Value(&limitValues[i]).
				Validate(validateDecimal),
			huh.NewInput().
				Title(fmt.Sprintf("%s score weight", class)).
				Value(&weightValues[i]).
				Validate(validateDecimal),
		)
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}
	for i, class := range classes {
		limits[class] = limitValues[i]
		weights[class] = weightValues[i]
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PORTSURE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: RISK TIERS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tier boundaries").
				Description("label:severity:min_score, descending, e.g. High:critical:75, Low:normal:0").
				Value(&tiersStr).
				Validate(func(s string) error {
					_, err := parseTiers(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	tiers, err := parseTiers(tiersStr)
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PORTSURE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Listen: %s\nJournal: %s\nClasses: %s\nTiers: %s\n",
		listen, walDir, strings.Join(classes, ", "), tiersStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	cfgTmp := config.ConfigTmp{
		Listen:       listen,
		WalDir:       walDir,
		AssetClasses: classes,
		Limits:       limits,
		Weights:      weights,
		Tiers:        tiers,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("Configuration saved to " + filename))
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func validateDecimal(s string) error {
	if _, err := decimal.NewFromString(s); err != nil {
		return fmt.Errorf("must be a decimal number")
	}
	return nil
}

func parseTiers(s string) ([]config.TierTmp, error) {
	var tiers []config.TierTmp
	for _, part := range splitList(s) {
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid tier %q, expected label:severity:min_score", part)
		}
		minScore, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("invalid tier min_score in %q", part)
		}
		tiers = append(tiers, config.TierTmp{
			Label:    strings.TrimSpace(fields[0]),
			Severity: strings.TrimSpace(fields[1]),
			MinScore: minScore,
		})
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("at least one tier is required")
	}
	return tiers, nil
}
