// Lists agents, creates one with web research enabled and chats with it.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/avi3tal/noxus-go/pkg/agents"
	"github.com/avi3tal/noxus-go/pkg/client"
	"github.com/avi3tal/noxus-go/pkg/conversations"
)

func main() {
	ctx := context.Background()
	c, err := client.NewFromEnv(ctx, client.WithoutNodeCatalog())
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	list, err := c.Agents.List(ctx)
	if err != nil {
		log.Fatal(err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tMODEL\tTOOLS")
	for i, a := range list {
		model := ""
		if len(a.Settings.ModelSelection) > 0 {
			model = a.Settings.ModelSelection[0]
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", i+1, a.ID, a.Name, model, len(a.EnabledTools()))
	}
	_ = tw.Flush()

	agent, err := c.Agents.Create(ctx, "Researcher", agents.Settings{
		ModelSelection:    []string{"gpt-4o-mini"},
		Temperature:       0.2,
		MaxTokens:         800,
		ExtraInstructions: "Cite your sources.",
		Tools: []agents.Tool{{
			Name:        "Web Research",
			Description: "Search the web for information",
			Definition:  map[string]any{},
			Enabled:     true,
			Type:        conversations.ToolWebResearch,
		}},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := c.Agents.Delete(ctx, agent.ID); err != nil {
			log.Println(err)
		}
	}()

	conv, err := c.Conversations.Create(ctx, "research chat", nil, agent.ID)
	if err != nil {
		log.Fatal(err)
	}
	reply, err := c.Conversations.AddMessage(ctx, conv, conversations.MessageRequest{
		Content: "What is new in Go this year?",
		Tool:    conversations.ToolWebResearch,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.Text())

	transcript, err := conv.Transcript()
	if err != nil {
		log.Fatal(err)
	}
	for _, m := range transcript {
		fmt.Printf("%s: %d parts\n", m.Role, len(m.Parts))
	}
}
