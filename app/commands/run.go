package commands

import (
	"log/slog"

	"github.com/lysyi3m/wiki-api-connector/app/tasks"
)

type RunCommand struct {
	app *App

	Unit      string `short:"u" long:"unit" required:"true" description:"Name of the unit to use"`
	SearchURL string `short:"s" long:"search" required:"true" description:"First search results page"`
	Base      string `short:"b" long:"base" default:"wacfile" description:"Base name of the intermediate files"`
	Config    string `short:"c" long:"config" default:"config.yml" description:"Unit configuration file (YAML)"`
	MaxPages  int    `long:"max-pages" default:"25" description:"Maximum number of result pages to fetch (0 for no limit)"`
}

func (c *RunCommand) Execute(_ []string) error {
	u, err := loadUnit(c.Config, c.Unit)
	if err != nil {
		return err
	}

	idsFile := c.Base + ".txt"
	csvFile := c.Base + ".csv"

	if err := c.app.search(c.SearchURL, idsFile, c.MaxPages); err != nil {
		return err
	}

	ids, err := readIdentifiers(nil, idsFile)
	if err != nil {
		return err
	}
	slog.Info("Identifiers collected", "file", idsFile, "count", len(ids))

	if err := c.app.generate(u, ids, csvFile, tasks.GenerateOptions{Format: tasks.FormatCSV}); err != nil {
		return err
	}
	slog.Info("Records generated", "file", csvFile)

	return c.app.upload(csvFile)
}
