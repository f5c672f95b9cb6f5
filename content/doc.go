// Package content tailors summarization to what a piece of text is.
//
// A Detector classifies text into a core.ContentCategory, the prompt
// functions add category-specific guidance on top of the summary shape, and
// an EntityExtractor pulls out up to core.MaxEntities named entities. The
// Summarizer ties them together around a SummaryService (normally a
// *service.Manager):
//
//	det, _ := content.NewDetector(mgr)
//	ext, _ := content.NewEntityExtractor(mgr)
//	sum, _ := content.NewSummarizer(mgr, det, ext)
//	res, err := sum.Summarize(ctx, text, core.SummarizationOptions{Type: core.SummaryKeyFacts}, "")
//
// Short text (under ShortContentThreshold characters) is handled by local
// heuristics. Longer text goes to the model, and when that call or its
// answer fails the heuristic result is used instead and the failure is
// logged.
package content
