// Package services provides the business logic layer of the form builder.
//
// This package contains the service implementations that handle:
//   - Form and field CRUD with ordering and cascade on removal (FormService)
//   - Derived field configuration gated by cycle detection (DerivedFieldService)
//   - Preview sessions with live recompute and validation (PreviewService)
//   - Background expiry and scheduled recompute of previews (SchedulerService)
//   - Event publishing and subscription (EventBus)
//
// Services are wired by ServiceManager and depend on the ports of
// internal/domain so storage and evaluation can be swapped in tests.
package services
