// Builds a poem workflow node by node, saves it and then updates it in place.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/avi3tal/noxus-go/pkg/catalogstore"
	"github.com/avi3tal/noxus-go/pkg/client"
	"github.com/avi3tal/noxus-go/pkg/workflow"
)

const poemName = "Noxus Poem"

func main() {
	ctx := context.Background()
	logger := client.NewLogger("info", "text", os.Stderr)

	cache, err := catalogstore.OpenSQLite(ctx, "file:noxus-catalog.db")
	if err != nil {
		log.Fatal(err)
	}
	defer cache.Close()

	c, err := client.NewFromEnv(ctx,
		client.WithLogger(logger),
		client.WithCatalogStore(cache, 24*time.Hour),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	existing, err := c.Workflows.List(ctx, 1, 50)
	if err != nil {
		log.Fatal(err)
	}
	var saved *workflow.Definition
	for _, w := range existing {
		if w.Name == poemName {
			saved = w
			break
		}
	}

	d := c.Workflows.New("🧀 Poem")

	input, err := d.AddNode("InputNode")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := input.Configure(map[string]any{"fixed_value": true, "value": "cheese"}); err != nil {
		log.Fatal(err)
	}

	ai, err := d.AddNode("TextGenerationNode")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := ai.Configure(map[string]any{"template": "Write a poem about ((Input 1))"}); err != nil {
		log.Fatal(err)
	}

	output, err := d.AddNode("OutputNode")
	if err != nil {
		log.Fatal(err)
	}

	from, err := input.Output("", "")
	if err != nil {
		log.Fatal(err)
	}
	to, err := ai.Input("variables", "Input 1")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := d.Link(from, to); err != nil {
		log.Fatal(err)
	}
	if err := d.LinkChain(ai, output); err != nil {
		log.Fatal(err)
	}

	if saved == nil {
		if saved, err = c.Workflows.Save(ctx, d); err != nil {
			log.Fatal(err)
		}
	}

	// saving rebuilds the nodes of d
	input = d.NodeByID(input.ID)
	d.ID = saved.ID
	if _, err := input.Configure(map[string]any{"fixed_value": true, "value": "Noxus AI"}); err != nil {
		log.Fatal(err)
	}
	d.Name = poemName

	if _, err := c.Workflows.Update(ctx, d, true); err != nil {
		log.Fatal(err)
	}
	d.Print(os.Stdout)
}
