// Package warehouse issues the partition-management statements against the
// analytical warehouse: an idempotent CREATE TABLE IF NOT EXISTS carrying the
// distribution and sort layout, and a DELETE of one partition.
//
// Connections go through database/sql with the pgx stdlib driver. Redshift
// speaks the PostgreSQL wire protocol, so the same driver serves Redshift and
// PostgreSQL targets.
package warehouse
