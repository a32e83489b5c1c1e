// Package platform contains the delivery-platform integration bounded
// context: everything needed to keep a store's menu, inventory and order
// state consistent with external delivery marketplaces.
//
// Key concepts:
//   - DeliveryPlatform: Port interface for one marketplace (Uber Eats, foodpanda)
//   - Credential: Per-(tenant, platform) OAuth material with a lifecycle state machine
//   - StoreLink: Local store ↔ platform store mapping plus operational settings
//   - DedupStore: Processed-event ledger enforcing at-most-once webhook side effects
//   - DomainCommand: Pure translation of an inbound platform event
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package platform
