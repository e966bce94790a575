// Package app is the composition root for listfeed.
//
// # Startup
//
//	Run()
//	 ├─> LoadConfig()         config file, .env, LISTFEED_* and flag overrides
//	 ├─> logging.New()        zap JSON logger on the log file
//	 ├─> prefs.Load()         theme and last tab
//	 ├─> New()                one fetch.Controller per resource, shared client and metrics
//	 ├─> ServeMetrics()       only when metrics_addr is set
//	 ├─> StartPoller()        only when refresh_every is set
//	 └─> ui.Run()             blocks until quit
//
// Nothing is fetched before the UI starts; the UI issues the first Load for
// each tab.
//
// # Auto-refresh
//
// The poller reloads resources whose phase is Loaded. It never reloads a
// Failed resource, so recovering from a failure is always a user action, and
// it skips resources that are already Loading.
//
// # One-shot fetch
//
// App.Fetch refreshes any subset of resources concurrently with an errgroup
// and reports a Result per resource. The CLI fetch command uses it.
//
// # Shutdown
//
// Close closes both controllers, which cancels in-flight requests and ends
// subscriptions, then stops the metrics server. Errors are combined with
// multierr.
package app
