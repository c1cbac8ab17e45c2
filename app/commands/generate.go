package commands

import (
	"github.com/lysyi3m/wiki-api-connector/app/mapper"
	"github.com/lysyi3m/wiki-api-connector/app/tasks"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

type GenerateCommand struct {
	app *App

	Config  string `short:"c" long:"config" required:"true" description:"Unit configuration file (YAML)"`
	Unit    string `short:"u" long:"unit" required:"true" description:"Name of the unit to use"`
	Input   string `short:"i" long:"input" description:"Identifier file to read when no identifiers are given (default: stdin)"`
	Output  string `short:"o" long:"output" description:"File to write (default: stdout)"`
	Format  string `long:"format" choice:"csv" choice:"url2commons" default:"csv" description:"Output format"`
	AutoRun bool   `long:"autorun" description:"Add run=1 to url2commons links"`

	Args struct {
		Identifiers []string `positional-arg-name:"ID"`
	} `positional-args:"yes"`
}

func (c *GenerateCommand) Execute(_ []string) error {
	u, err := loadUnit(c.Config, c.Unit)
	if err != nil {
		return err
	}

	ids, err := readIdentifiers(c.Args.Identifiers, c.Input)
	if err != nil {
		return err
	}

	return c.app.generate(u, ids, c.Output, tasks.GenerateOptions{
		Format:  tasks.OutputFormat(c.Format),
		AutoRun: c.AutoRun,
	})
}

func (a *App) generate(u *unit.Unit, ids []string, output string, opts tasks.GenerateOptions) error {
	client, err := a.catalogClient()
	if err != nil {
		return err
	}

	out, err := createOutput(output, a.stdout)
	if err != nil {
		return err
	}
	defer out.Close()

	return tasks.Run(a.ctx, tasks.NewGenerateTask(u, ids, mapper.New(client), out, opts))
}
