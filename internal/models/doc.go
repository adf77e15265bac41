// Package models defines the core domain models for moneyapp.
//
// An Account is the grouping unit: it owns Memberships (who may see or
// administer it), Events (cost-sharing occasions with an income pool and a
// savings target), Payees (parties entitled to a share) and Payments (one
// payee's weighted stake in one event).
//
// Monetary amounts (income, saving, extra) are int64 values in the smallest
// currency unit. The per-unit share ("portion") and per-payment amount owed
// ("total") are never stored; they are recomputed from income, saving,
// factor and extra so the stored rows can never drift from each other.
//
// Relationships use ID strings instead of pointers to avoid circular
// references.
package models
