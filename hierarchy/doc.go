// Package hierarchy rebuilds a component tree from a flat list of domain
// managers.
//
// Every manager is given a dotted path, either the virtual path it declares
// or one inferred from the directory of its source file. Managers are then
// linked under the manager owning the longest proper prefix of their path:
//
//	app                    -> root
//	app.health             -> registered under app
//	app.health.indicators  -> registered under app.health
//	app.billing.invoices   -> registered under app (no app.billing manager)
//
// Inference from source files only works while the build keeps the source
// layout, so declaring paths with domain.WithVirtualPath is preferred.
package hierarchy
