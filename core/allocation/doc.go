// Package allocation implements the vehicle-to-warehouse assignment core.
// The Engine plans assignments against an immutable snapshot without side
// effects, the Coordinator applies a plan as a two-step registry update with
// compensation on failure, and the ReleaseManager frees vehicles and
// warehouses. The Service ties them together behind the entry points the
// HTTP layer consumes. Warehouse load updates are serialized per warehouse so
// concurrent operations cannot oversell capacity.
package allocation
