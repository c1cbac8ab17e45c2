package commands

import (
	"github.com/lysyi3m/wiki-api-connector/app/search"
	"github.com/lysyi3m/wiki-api-connector/app/tasks"
)

type SearchCommand struct {
	app *App

	Output   string `short:"o" long:"output" description:"Identifier file to write (default: stdout)"`
	MaxPages int    `long:"max-pages" default:"25" description:"Maximum number of result pages to fetch (0 for no limit)"`

	Args struct {
		URL string `positional-arg-name:"URL" description:"First search results page" required:"yes"`
	} `positional-args:"yes"`
}

func (c *SearchCommand) Execute(_ []string) error {
	return c.app.search(c.Args.URL, c.Output, c.MaxPages)
}

func (a *App) search(seedURL, output string, maxPages int) error {
	fetcher, err := a.cachedFetcher()
	if err != nil {
		return err
	}

	out, err := createOutput(output, a.stdout)
	if err != nil {
		return err
	}
	defer out.Close()

	walker := search.NewWalker(fetcher)
	walker.MaxPages = maxPages

	return tasks.Run(a.ctx, tasks.NewSearchTask(seedURL, walker, out))
}
