// Package service is the task-level façade over the AI providers.
//
// A Manager combines model selection, provider prompt formatting (done by each
// client), provider dispatch and retry:
//
//	clients, err := service.NewClients(cfg, logger)
//	selector, err := selection.New(ai.DefaultCatalog(), cfg.CostPreference)
//	mgr, err := service.NewManager(selector, clients,
//	    service.WithRetryPolicy(retry.FromConfig(cfg.Retry)))
//
//	summary, err := mgr.Summarize(ctx, text, core.SummarizationOptions{Type: core.SummaryBulletPoints}, service.Hints{})
//	if errors.Is(err, ai.ErrPaymentRequired) {
//	    // prompt for billing instead of retrying
//	}
//
// Every method blocks until the provider answers, the retry budget is spent
// or ctx is done.
package service
