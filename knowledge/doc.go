// Package knowledge builds request-scoped knowledge graphs around stored
// cards and lays them out for display.
//
// A Builder reads cards through storage.CardStore, extracts entities from
// the central card and scans every other card for mentions of those
// entities or shared tags. The scan runs on an ants worker pool; results are
// merged in store order so the graph is the same for the same inputs.
//
//	builder, err := knowledge.NewBuilder(cards, extractor, manager)
//	if err != nil {
//	    return err
//	}
//	defer builder.Release()
//
//	graph, err := builder.BuildGraph(ctx, cardID)
//	positions, err := knowledge.Layout(graph, knowledge.LayoutOptions{Width: 1200, Height: 800})
//
// FindConnections compares two cards directly. When they share neither
// entities nor tags it asks the model for semantic links.
//
// Graphs are never persisted.
package knowledge
