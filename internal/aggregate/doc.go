// Package aggregate derives metrics from the completion ledger.
//
// Every view is recomputed from the ledger on each call. The engine holds
// no mutable state and caches nothing across calls, so answers always
// reflect the latest writes. At personal-scale row counts the recompute
// cost is negligible.
//
// Views:
//   - History: per-task completed counts per day over a rolling window,
//     sparse (days without rows are omitted).
//   - Streak: consecutive days with at least one completion, walking
//     backward from today with an early stop and a bounded lookback.
//   - TotalCompletions: one aggregate count over a rolling window.
//
// "Today" is resolved through the civil clock at the moment of each call.
// Two calls straddling midnight in the configured zone may see different
// windows.
package aggregate
