// Creates a text composition workflow, runs it, then extends the saved copy
// with a third input and runs it again.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/avi3tal/noxus-go/pkg/client"
	"github.com/avi3tal/noxus-go/pkg/runs"
	"github.com/avi3tal/noxus-go/pkg/workflow"
)

const workflowName = "CombineText Testing"

func main() {
	ctx := context.Background()
	c, err := client.NewFromEnv(ctx, client.WithLogger(client.NewLogger("debug", "text", os.Stderr)))
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	d := c.Workflows.New(workflowName)
	in1 := mustAdd(d, "InputNode")
	in2 := mustAdd(d, "InputNode")
	compose := mustAdd(d, "ComposeTextNode")
	if _, err := compose.Configure(map[string]any{"template": "((Input 1))\n\n((Input 2))"}); err != nil {
		log.Fatal(err)
	}
	out := mustAdd(d, "OutputNode")

	mustLink(d, in1, compose, "Input 1")
	mustLink(d, in2, compose, "Input 2")
	if err := d.LinkChain(compose, out); err != nil {
		log.Fatal(err)
	}

	saved, err := c.Workflows.Save(ctx, d)
	if err != nil {
		log.Fatal(err)
	}
	text := run(ctx, c, saved, out, map[string]any{inputKey(in1): "test1", inputKey(in2): "test2"})
	fmt.Println(strings.Contains(text, "test1"), strings.Contains(text, "test2"))

	// extend the stored copy
	list, err := c.Workflows.List(ctx, 1, 50)
	if err != nil {
		log.Fatal(err)
	}
	var stored *workflow.Definition
	for _, w := range list {
		if w.ID == saved.ID {
			stored = w
		}
	}
	if stored == nil {
		log.Fatalf("workflow %s not listed", saved.ID)
	}

	in3 := mustAdd(stored, "InputNode")
	var storedCompose *workflow.Node
	for _, n := range stored.Nodes() {
		if n.Type == "ComposeTextNode" {
			storedCompose = n
		}
	}
	if _, err := storedCompose.Configure(map[string]any{"template": "((Input 1))\n\n((Input 2))\n\n((Input 3))"}); err != nil {
		log.Fatal(err)
	}
	mustLink(stored, in3, storedCompose, "Input 3")

	updated, err := c.Workflows.Update(ctx, stored, false)
	if err != nil {
		log.Fatal(err)
	}
	text = run(ctx, c, updated, out, map[string]any{
		inputKey(in1): "test1",
		inputKey(in2): "test2",
		inputKey(in3): "test3",
	})
	fmt.Println(strings.Contains(text, "test3"))
}

func mustAdd(d *workflow.Definition, typeName string) *workflow.Node {
	n, err := d.AddNode(typeName)
	if err != nil {
		log.Fatal(err)
	}
	return n
}

func mustLink(d *workflow.Definition, from, to *workflow.Node, key string) {
	out, err := from.Output("output", "")
	if err != nil {
		log.Fatal(err)
	}
	in, err := to.Input("variables", key)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := d.Link(out, in); err != nil {
		log.Fatal(err)
	}
}

// inputKey names the run input fed to an input node
func inputKey(n *workflow.Node) string {
	if ins := n.Inputs(); len(ins) > 0 {
		return ins[0].ID()
	}
	return n.ID
}

func run(ctx context.Context, c *client.Client, d *workflow.Definition, out *workflow.Node, input map[string]any) string {
	r, err := c.Workflows.Run(ctx, d, input)
	if err != nil {
		log.Fatal(err)
	}
	r, err = c.Runs.Wait(ctx, r, runs.DefaultPollInterval)
	if err != nil {
		log.Fatal(err)
	}
	result, _ := r.Output[out.Outputs()[0].ID()].(map[string]any)
	text, _ := result["text"].(string)
	return text
}
