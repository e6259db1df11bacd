// Package billing provides the domain models for the customer-facing money
// documents of a job: contracts, change orders, and invoices.
//
// This package implements the billing bounded context, which is responsible for:
//   - The single contract per lead and its draft/signed/cancelled lifecycle
//   - Change orders with dual-signature approval and decline handling
//   - Invoices composed from the contract and approved change orders, with
//     payment recording against the balance due
//
// Key Aggregates:
//   - Contract: The signed scope of work and its total
//   - ChangeOrder: A scoped addition or reduction requiring both signatures
//   - Invoice: A billable document tracking payments and balance
//
// Status transitions publish domain events consumed by the commission
// context, which keys its payout gates off contract signing, change order
// approval, and invoice payments.
package billing
