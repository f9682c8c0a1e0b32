package wizard

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/tessro/jukebox/internal/config"
)

// RunSetup walks through the settings most installs change and applies the
// answers to cfg.
func RunSetup(cfg *config.Config) error {
	driver := cfg.Catalog.Driver
	path := cfg.Catalog.Path
	listen := cfg.Bridge.Listen
	theme := cfg.TUI.Theme
	tick := strconv.Itoa(cfg.Engine.DeviceTickMs)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Catalog store").
				Description("Where uploaded tracks are recorded").
				Options(
					huh.NewOption("JSON file", "json"),
					huh.NewOption("SQLite database", "sqlite"),
				).
				Value(&driver),
			huh.NewInput().
				Title("Catalog path").
				Description("Leave empty for the default in the data directory").
				Value(&path),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Bridge listen address").
				Description("Game hosts connect here").
				Value(&listen),
			huh.NewInput().
				Title("Device tick (ms)").
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number of milliseconds")
					}
					return nil
				}).
				Value(&tick),
			huh.NewSelect[string]().
				Title("Dashboard theme").
				Options(
					huh.NewOption("Match terminal", "auto"),
					huh.NewOption("Mocha", "mocha"),
					huh.NewOption("Macchiato", "macchiato"),
					huh.NewOption("Frappé", "frappe"),
					huh.NewOption("Latte", "latte"),
				).
				Value(&theme),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	n, _ := strconv.Atoi(tick)
	cfg.Catalog.Driver = driver
	cfg.Catalog.Path = path
	cfg.Bridge.Listen = listen
	cfg.TUI.Theme = theme
	cfg.Engine.DeviceTickMs = n
	return cfg.Validate()
}
