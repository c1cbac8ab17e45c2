package commands

import (
	"fmt"
	"log/slog"

	"github.com/lysyi3m/wiki-api-connector/app/tasks"
	"github.com/lysyi3m/wiki-api-connector/app/upload"
)

type UploadCommand struct {
	app *App

	Input string `short:"i" long:"input" description:"CSV file to read (default: stdin)"`

	Args struct {
		CSV string `positional-arg-name:"CSV" description:"CSV file to read"`
	} `positional-args:"yes"`
}

func (c *UploadCommand) Execute(_ []string) error {
	input := c.Input
	if c.Args.CSV != "" {
		input = c.Args.CSV
	}
	return c.app.upload(input)
}

func (a *App) upload(input string) error {
	fetcher := a.directFetcher()
	client := a.commonsClient(fetcher)

	site, err := client.CheckSite(a.ctx)
	if err != nil {
		return fmt.Errorf("destination unreachable: %w", err)
	}
	slog.Info("Destination reachable", "site", site, "api", a.cfg.CommonsAPI)

	in, err := openInput(input)
	if err != nil {
		return err
	}
	defer in.Close()

	uploader := upload.New(client, fetcher, a.cfg.WorkDir)
	return tasks.Run(a.ctx, tasks.NewUploadTask(in, uploader))
}
