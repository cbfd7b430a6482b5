// Package models defines the core domain records for the group ledger.
//
// # Records
//
//   - User: a registered account; the email doubles as the member
//     identifier inside groups
//   - Group: a named set of members with one designated owner
//   - Expense: an amount paid by one member and shared among members
//   - Payment: a settlement transfer between two members
//
// Expense and Payment rows are the ledger: append-only, never mutated
// after creation. Balances and simplified debts are always derived
// from them (see internal/ledger) and deliberately have no stored
// representation.
//
// # Design notes
//
//  1. Members are referenced by email strings, not foreign keys; the
//     engine treats them as opaque identifiers and never validates
//     their format.
//  2. Monetary fields use money.Amount (integer cents) so that split
//     and conservation invariants hold exactly.
//  3. Relationships use ID strings instead of struct pointers to avoid
//     circular references.
package models
