package commands

import (
	"github.com/lysyi3m/wiki-api-connector/app/mapper"
	"github.com/lysyi3m/wiki-api-connector/app/tasks"
)

type ClaimsCommand struct {
	app *App

	Config  string `short:"c" long:"config" required:"true" description:"Unit configuration file (YAML)"`
	Unit    string `short:"u" long:"unit" required:"true" description:"Name of the unit to use"`
	Input   string `short:"i" long:"input" description:"Identifier file to read when no identifiers are given (default: stdin)"`
	Output  string `short:"o" long:"output" description:"File to write (default: stdout)"`
	MediaID string `long:"media-id" description:"Commons media entity to attach claims to, such as M12345"`
	Submit  bool   `long:"submit" description:"Submit the claims to the destination (needs --media-id and one identifier)"`

	Args struct {
		Identifiers []string `positional-arg-name:"ID"`
	} `positional-args:"yes"`
}

func (c *ClaimsCommand) Execute(_ []string) error {
	u, err := loadUnit(c.Config, c.Unit)
	if err != nil {
		return err
	}

	ids, err := readIdentifiers(c.Args.Identifiers, c.Input)
	if err != nil {
		return err
	}

	client, err := c.app.catalogClient()
	if err != nil {
		return err
	}

	out, err := createOutput(c.Output, c.app.stdout)
	if err != nil {
		return err
	}
	defer out.Close()

	opts := tasks.ClaimsOptions{MediaID: c.MediaID}
	if c.Submit {
		opts.Submitter = c.app.commonsClient(c.app.directFetcher())
	}

	return tasks.Run(c.app.ctx, tasks.NewClaimsTask(u, ids, mapper.New(client), out, opts))
}
