// package tasks contains the long-lived background work: the sync
// scheduler that mirrors the remote library into the local cache with
// retry and abort policy, and the thumbnail prefetcher that fills the
// on-disk thumbnail cache with bounded concurrency.
package tasks
