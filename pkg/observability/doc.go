/*
Package observability provides hooks for monitoring bridge operations.

It includes Prometheus metrics for attach/detach traffic and the number of
live nodes, structured logging hooks, and a helper to combine several
LifecycleHooks into one.
*/
package observability
